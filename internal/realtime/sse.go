package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sam-requests/internal/domain/requests"
	"sam-requests/internal/domain/users"
	"sam-requests/internal/middleware"
)

// RequestSource entrega el set completo; la visibilidad la aplica el filtro.
type RequestSource interface {
	List(ctx context.Context) ([]requests.Request, error)
}

// Filter es la misma vista por rol que usa el listado REST.
type Filter interface {
	Visible(ctx context.Context, actorID string, role users.Role, all []requests.Request) []requests.Request
}

// eventRequest replica el contrato de campos del listado REST.
type eventRequest struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"serviceId"`
	RoomID      string          `json:"roomId,omitempty"`
	RequesterID string          `json:"requesterId"`
	CreatedAt   time.Time       `json:"createdAt"`
	Estado      requests.State  `json:"estado"`
	Comment     string          `json:"comment,omitempty"`
	Note        string          `json:"note,omitempty"`
	FinalNote   string          `json:"finalNote,omitempty"`
	AgentID     string          `json:"agentId,omitempty"`
	Source      requests.Source `json:"source,omitempty"`
}

// StreamHandler expone el canal de snapshots por Server-Sent Events.
// Cada evento `snapshot` trae el listado completo visible para el actor;
// un error de consulta emite `snapshot` vacío seguido de un evento `error`.
func StreamHandler(hub *Hub, source RequestSource, filter Filter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		actorID := claims.UserID
		role := users.Role(claims.Role)

		query := func(ctx context.Context) ([]requests.Request, error) {
			all, err := source.List(ctx)
			if err != nil {
				return nil, err
			}
			if filter == nil {
				return all, nil
			}
			return filter.Visible(ctx, actorID, role, all), nil
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		// El onError va por un canal propio para no escribir al
		// ResponseWriter desde la goroutine del hub.
		errs := make(chan string, 4)
		onError := func(err error) {
			select {
			case errs <- err.Error():
			default:
			}
		}

		snapshots, cancel := hub.Subscribe(r.Context(), query, onError)
		defer cancel()

		for {
			select {
			case <-r.Context().Done():
				return
			case msg := <-errs:
				writeEvent(w, "error", map[string]string{"message": msg})
				flusher.Flush()
			case items, open := <-snapshots:
				if !open {
					return
				}
				out := make([]eventRequest, 0, len(items))
				for _, req := range items {
					out = append(out, eventRequest{
						ID:          req.ID,
						ServiceID:   req.ServiceID,
						RoomID:      req.RoomID,
						RequesterID: req.RequesterID,
						CreatedAt:   req.CreatedAt,
						Estado:      req.State,
						Comment:     req.Comment,
						Note:        req.Note,
						FinalNote:   req.FinalNote,
						AgentID:     req.AgentID,
						Source:      req.Source,
					})
				}
				writeEvent(w, "snapshot", out)
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + name + "\ndata: " + string(data) + "\n\n"))
}
