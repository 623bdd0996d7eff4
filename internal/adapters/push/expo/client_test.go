package expo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sam-requests/internal/ports/push"
)

func TestClient_Send_PostsBatchToGateway(t *testing.T) {
	var gotPath string
	var gotBody []map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = c.Send(context.Background(), []push.Message{
		{
			To:    "ExponentPushToken[abc]",
			Title: "Solicitud tomada",
			Body:  "voy en camino",
			Data:  map[string]string{"requestId": "req-1"},
		},
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if gotPath != "/--/api/v2/push/send" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(gotBody) != 1 {
		t.Fatalf("expected 1 message in batch, got %d", len(gotBody))
	}
	msg := gotBody[0]
	if msg["to"] != "ExponentPushToken[abc]" || msg["title"] != "Solicitud tomada" {
		t.Fatalf("unexpected wire message: %+v", msg)
	}
	data, _ := msg["data"].(map[string]any)
	if data["requestId"] != "req-1" {
		t.Fatalf("expected requestId in data, got %+v", msg["data"])
	}
}

func TestClient_Send_SkipsEmptyTokens(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body []map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 1 {
			t.Errorf("expected tokenless message dropped, got %d", len(body))
		}
		_, _ = w.Write([]byte(`{"data":[{"status":"ok"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = c.Send(context.Background(), []push.Message{
		{To: "", Title: "sin token"},
		{To: "ExponentPushToken[abc]", Title: "con token"},
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 request, got %d", calls)
	}

	// Lote enteramente sin tokens: ni siquiera llama al gateway.
	if err := c.Send(context.Background(), []push.Message{{To: " "}}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("tokenless batch must not hit the gateway")
	}
}

func TestClient_Send_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = c.Send(context.Background(), []push.Message{{To: "ExponentPushToken[abc]"}})
	if err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestClient_Send_TicketLevelErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[],"errors":[{"code":"PUSH_TOO_MANY_EXPERIENCE_IDS","message":"nope"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = c.Send(context.Background(), []push.Message{{To: "ExponentPushToken[abc]"}})
	if err == nil {
		t.Fatalf("expected error when the gateway reports errors")
	}
}
