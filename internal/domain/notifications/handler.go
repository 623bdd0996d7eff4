package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sam-requests/internal/domain/users"
	"sam-requests/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// PendingCounter calcula cuántas solicitudes pendientes tiene a la vista
// el agente. Interface local: lo implementa el módulo requests.
type PendingCounter interface {
	PendingCountForActor(ctx context.Context, actorID string, role users.Role) (int, error)
}

func RegisterRoutes(r chi.Router, d *Dispatcher, counter PendingCounter) {
	r.Get("/me/notifications", listMineHandler(d))
	r.Post("/me/notifications/sweep", sweepHandler(d, counter))
	r.Post("/notifications/{notificationID}/read", markReadHandler(d))
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	RequestID string    `json:"requestId,omitempty"`
	Read      bool      `json:"read"`
	Pushed    bool      `json:"pushed"`
}

type sweepResponse struct {
	Delivered    int `json:"delivered"`
	PendingCount int `json:"pendingCount"`
}

// listMineHandler godoc
// @Summary Avisos del usuario
// @Description Lista los avisos del usuario autenticado, más recientes primero.
// @Tags notifications
// @Produce json
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/notifications [get]
func listMineHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := d.ListForRecipient(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, notificationResponse{
				ID:        n.ID,
				Title:     n.Title,
				Body:      n.Body,
				CreatedAt: n.CreatedAt,
				RequestID: n.RequestID,
				Read:      n.Read,
				Pushed:    n.Pushed,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// sweepHandler reintenta la entrega de avisos rezagados del usuario y,
// si es un agente con pendientes, le manda el resumen. La app lo llama
// al reconectar.
func sweepHandler(d *Dispatcher, counter PendingCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		delivered, err := d.SweepUndelivered(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		pending := 0
		role := users.Role(claims.Role)
		if counter != nil && role.IsServiceRole() {
			if n, err := counter.PendingCountForActor(r.Context(), claims.UserID, role); err == nil {
				pending = n
				_ = d.PendingDigest(r.Context(), claims.UserID, n)
			}
		}

		writeJSON(w, http.StatusOK, sweepResponse{Delivered: delivered, PendingCount: pending})
	}
}

func markReadHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "notificationID")
		if err := d.MarkRead(r.Context(), id, claims.UserID); err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, err.Error(), http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
