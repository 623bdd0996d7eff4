package router_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sam-requests/internal/ports/push"
	"sam-requests/internal/router"
)

// capturePush junta los pushes sin salir a la red.
type capturePush struct {
	mu   sync.Mutex
	sent []push.Message
}

func (c *capturePush) Send(ctx context.Context, msgs []push.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msgs...)
	return nil
}

func (c *capturePush) titles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, m := range c.sent {
		out = append(out, m.Title)
	}
	return out
}

func newTestServer(t *testing.T) (*httptest.Server, *capturePush) {
	t.Helper()
	pushes := &capturePush{}
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil, // modo dev con headers X-Debug-User-*
		SeedDemoData: true,
		PushSender:   pushes,
	}))
	t.Cleanup(ts.Close)
	return ts, pushes
}

func TestHTTP_EndToEnd_RequestLifecycle(t *testing.T) {
	ts, pushes := newTestServer(t)

	// Los agentes registran su push token (la app lo hace al iniciar sesión).
	{
		st, body := doReq(t, ts.URL, "PUT", "/me/push-token", "u-soporte", "soporte", map[string]any{
			"pushToken": "ExponentPushToken[sop]",
		})
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 push-token, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "PUT", "/me/push-token", "u-docente", "docente", map[string]any{
			"pushToken": "ExponentPushToken[doc]",
		})
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 push-token docente, got %d", st)
		}
	}

	// 1) Docente crea solicitud de soporte para su sala
	reqID := createRequest(t, ts.URL, "u-docente", map[string]any{
		"serviceId": "svc-soporte",
		"roomId":    "B-204",
		"comment":   "proyector no enciende",
	})

	// 2) El agente de soporte la ve pendiente
	{
		items := listRequests(t, ts.URL, "u-soporte", "soporte")
		if len(items) != 1 || items[0]["id"] != reqID || items[0]["estado"] != "pending" {
			t.Fatalf("unexpected agent view: %+v", items)
		}
	}

	// 3) El agente de salud no la ve y no la puede tomar
	{
		items := listRequests(t, ts.URL, "u-salud", "salud")
		if len(items) != 0 {
			t.Fatalf("salud must not see soporte requests, got %+v", items)
		}
		st, _ := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/take", "u-salud", "salud", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 take by wrong service, got %d", st)
		}
	}

	// 4) El docente tampoco puede tomarla
	{
		st, _ := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/take", "u-docente", "docente", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 take by docente, got %d", st)
		}
	}

	// 5) El agente de soporte la toma con observación
	{
		st, body := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/take", "u-soporte", "soporte", map[string]any{
			"note": "voy en camino",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 take, got %d body=%s", st, string(body))
		}
		var resp map[string]any
		_ = json.Unmarshal(body, &resp)
		if resp["estado"] != "taken" || resp["agentId"] != "u-soporte" {
			t.Fatalf("unexpected take response: %+v", resp)
		}
	}

	// 6) Tomar de nuevo es conflicto
	{
		st, _ := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/take", "u-soporte", "soporte", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 double take, got %d", st)
		}
	}

	// 7) Otro agente del mismo servicio no puede completarla
	{
		st, _ := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/complete", "u-seguridad", "seguridad", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 complete by other agent, got %d", st)
		}
	}

	// 8) El agente asignado la completa
	{
		st, body := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/complete", "u-soporte", "soporte", map[string]any{
			"finalNote": "cable HDMI cambiado",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
		var resp map[string]any
		_ = json.Unmarshal(body, &resp)
		if resp["estado"] != "done" || resp["finalNote"] != "cable HDMI cambiado" {
			t.Fatalf("unexpected complete response: %+v", resp)
		}
	}

	// 9) La done desaparece de la vista del agente pero no de la del docente
	{
		if items := listRequests(t, ts.URL, "u-soporte", "soporte"); len(items) != 0 {
			t.Fatalf("done request must leave the agent view, got %+v", items)
		}
		items := listRequests(t, ts.URL, "u-docente", "docente")
		if len(items) != 1 || items[0]["estado"] != "done" {
			t.Fatalf("docente must keep seeing the request, got %+v", items)
		}
	}

	// 10) El docente tiene su historial de avisos
	{
		st, body := doReq(t, ts.URL, "GET", "/me/notifications", "u-docente", "docente", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 notifications, got %d", st)
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 3 {
			t.Fatalf("expected 3 notifications, got %d: %+v", len(items), items)
		}
		// Más recientes primero.
		if items[0]["title"] != "Solicitud realizada" {
			t.Fatalf("expected newest first, got %+v", items[0])
		}
		// Los avisos previos de la solicitud quedaron leídos al completar.
		for _, n := range items {
			if n["title"] == "Solicitud tomada" && n["read"] != true {
				t.Fatalf("taken notice should be read after complete: %+v", n)
			}
		}
	}

	// 11) Los pushes salieron: fan-out a agentes + transiciones al docente
	{
		titles := strings.Join(pushes.titles(), ",")
		for _, want := range []string{"Nueva solicitud", "Solicitud enviada", "Solicitud tomada", "Solicitud realizada"} {
			if !strings.Contains(titles, want) {
				t.Fatalf("missing push %q in %s", want, titles)
			}
		}
	}

	// 12) Admin fuerza el estado de vuelta a pending, el docente no puede
	{
		st, _ := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/state", "u-docente", "docente", map[string]any{
			"estado": "pending",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 override by docente, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/state", "u-admin", "admin", map[string]any{
			"estado": "pending",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 override by admin, got %d body=%s", st, string(body))
		}
		var resp map[string]any
		_ = json.Unmarshal(body, &resp)
		if resp["estado"] != "pending" {
			t.Fatalf("unexpected override response: %+v", resp)
		}
	}

	// 13) Admin ve todo
	{
		items := listRequests(t, ts.URL, "u-admin", "admin")
		if len(items) != 1 {
			t.Fatalf("admin must see the full set, got %+v", items)
		}
	}
}

func TestHTTP_CreateRequest_RoleAndValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	// Rol de servicio no puede crear.
	st, _ := doReq(t, ts.URL, "POST", "/requests", "u-soporte", "soporte", map[string]any{
		"serviceId": "svc-soporte",
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 create by service role, got %d", st)
	}

	// Falta serviceId => 400.
	st, _ = doReq(t, ts.URL, "POST", "/requests", "u-docente", "docente", map[string]any{
		"roomId": "B-204",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 without serviceId, got %d", st)
	}

	// Sin identidad => 401.
	st, _ = doReq(t, ts.URL, "GET", "/requests", "", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}
}

func TestHTTP_GetRequestDetail_FollowsListVisibility(t *testing.T) {
	ts, _ := newTestServer(t)

	reqID := createRequest(t, ts.URL, "u-docente", map[string]any{
		"serviceId": "svc-soporte",
		"roomId":    "C-101",
	})

	// El agente del servicio ve la pendiente en el listado; el detalle
	// tiene que abrir igual.
	st, body := doReq(t, ts.URL, "GET", "/requests/"+reqID, "u-soporte", "soporte", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 detail for service agent, got %d body=%s", st, string(body))
	}
	var resp map[string]any
	_ = json.Unmarshal(body, &resp)
	if resp["estado"] != "pending" {
		t.Fatalf("detail estado = %v, want pending", resp["estado"])
	}

	// Un agente de otro servicio no la ve en el listado ni en el detalle.
	st, _ = doReq(t, ts.URL, "GET", "/requests/"+reqID, "u-salud", "salud", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 detail for other service, got %d", st)
	}

	// Tomada por u-soporte: sale del listado de u-seguridad pero el
	// asignado y el docente siguen viendo el detalle.
	st, _ = doReq(t, ts.URL, "POST", "/requests/"+reqID+"/take", "u-soporte", "soporte", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 take, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/requests/"+reqID, "u-soporte", "soporte", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 detail for assigned agent, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/requests/"+reqID, "u-docente", "docente", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 detail for requester, got %d", st)
	}
}

func TestHTTP_Sweep_ReportsPendingDigest(t *testing.T) {
	ts, _ := newTestServer(t)

	createRequest(t, ts.URL, "u-docente", map[string]any{
		"serviceId": "svc-soporte",
		"roomId":    "B-204",
	})
	createRequest(t, ts.URL, "u-docente", map[string]any{
		"serviceId": "svc-soporte",
		"roomId":    "C-101",
	})

	st, body := doReq(t, ts.URL, "POST", "/me/notifications/sweep", "u-soporte", "soporte", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 sweep, got %d body=%s", st, string(body))
	}
	var resp struct {
		Delivered    int `json:"delivered"`
		PendingCount int `json:"pendingCount"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.PendingCount != 2 {
		t.Fatalf("expected 2 pending in digest, got %+v", resp)
	}
}

func TestHTTP_Stream_SendsSnapshotOnConnectAndChange(t *testing.T) {
	ts, _ := newTestServer(t)

	reqID := createRequest(t, ts.URL, "u-docente", map[string]any{
		"serviceId": "svc-soporte",
		"roomId":    "B-204",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/requests/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Debug-User-ID", "u-soporte")
	req.Header.Set("X-Debug-User-Role", "soporte")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream, got %q", ct)
	}

	reader := bufio.NewReader(res.Body)

	// Snapshot inicial al conectar: la pendiente ya está.
	snap := readSnapshotEvent(t, reader)
	if len(snap) != 1 || snap[0]["id"] != reqID || snap[0]["estado"] != "pending" {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	// El agente la toma desde otra conexión: llega el set completo otra vez.
	st, _ := doReq(t, ts.URL, "POST", "/requests/"+reqID+"/take", "u-soporte", "soporte", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 take, got %d", st)
	}

	snap = readSnapshotEvent(t, reader)
	if len(snap) != 1 || snap[0]["estado"] != "taken" || snap[0]["agentId"] != "u-soporte" {
		t.Fatalf("unexpected snapshot after take: %+v", snap)
	}
}

// readSnapshotEvent lee eventos SSE hasta encontrar el próximo `snapshot`.
func readSnapshotEvent(t *testing.T, reader *bufio.Reader) []map[string]any {
	t.Helper()

	event := ""
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream read: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			if event != "snapshot" {
				continue
			}
			var snap []map[string]any
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snap); err != nil {
				t.Fatalf("invalid snapshot json: %v", err)
			}
			return snap
		}
	}
}

func createRequest(t *testing.T, baseURL, docenteID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/requests", docenteID, "docente", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create request, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create request: missing id body=%s", string(body))
	}
	return resp.ID
}

func listRequests(t *testing.T, baseURL, userID, role string) []map[string]any {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/requests", userID, role, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
	}
	var items []map[string]any
	_ = json.Unmarshal(body, &items)
	return items
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if debugRole != "" {
		req.Header.Set("X-Debug-User-Role", debugRole)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
