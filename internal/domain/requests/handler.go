package requests

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"sam-requests/internal/domain/users"
	"sam-requests/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// VisibilityFilter reduce el set completo a lo que el actor puede ver.
// Interface local para no importar el paquete visibility (rompe ciclos).
type VisibilityFilter interface {
	Visible(ctx context.Context, actorID string, role users.Role, all []Request) []Request
}

func RegisterRoutes(r chi.Router, svc *Service, filter VisibilityFilter) {
	r.Route("/requests", func(rr chi.Router) {
		rr.Post("/", createRequestHandler(svc))
		rr.Get("/", listRequestsHandler(svc, filter))
		rr.Get("/{requestID}", getRequestHandler(svc, filter))
		rr.Post("/{requestID}/take", takeRequestHandler(svc))
		rr.Post("/{requestID}/complete", completeRequestHandler(svc))
		rr.Post("/{requestID}/state", overrideStateHandler(svc))
	})

	// Historial del docente
	r.Get("/me/requests", myRequestsHandler(svc))
}

type createRequestRequest struct {
	ServiceID string `json:"serviceId"`
	RoomID    string `json:"roomId"`
	Comment   string `json:"comment"`
	Source    string `json:"source"` // app|qr, opcional
}

type takeRequestRequest struct {
	Note string `json:"note"`
}

type completeRequestRequest struct {
	FinalNote string `json:"finalNote"`
}

type overrideStateRequest struct {
	Estado string `json:"estado"`
}

// requestResponse usa los nombres de campo del contrato con el Entity Store.
type requestResponse struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"serviceId"`
	RoomID      string    `json:"roomId,omitempty"`
	RequesterID string    `json:"requesterId"`
	CreatedAt   time.Time `json:"createdAt"`
	Estado      State     `json:"estado"`
	Comment     string    `json:"comment,omitempty"`
	Note        string    `json:"note,omitempty"`
	FinalNote   string    `json:"finalNote,omitempty"`
	AgentID     string    `json:"agentId,omitempty"`
	Source      Source    `json:"source,omitempty"`
}

// createRequestHandler godoc
// @Summary Crear solicitud
// @Description Crea una solicitud en estado pending para el servicio indicado. Solo docentes y admins. Deja un aviso "Solicitud enviada" para el docente y avisa por push a los agentes del servicio.
// @Tags requests
// @Accept json
// @Produce json
// @Param payload body createRequestRequest true "Datos de la solicitud"
// @Success 201 {object} requestResponse
// @Failure 400 {string} string "invalid json / serviceId required"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /requests [post]
func createRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.ServiceID) == "" {
			http.Error(w, "serviceId required", http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), claims.UserID, users.Role(claims.Role), CreateInput{
			ServiceID: req.ServiceID,
			RoomID:    req.RoomID,
			Comment:   req.Comment,
			Source:    Source(strings.TrimSpace(req.Source)),
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRequestResponse(created))
	}
}

// listRequestsHandler godoc
// @Summary Listar solicitudes visibles
// @Description Admin ve todo; docente sus solicitudes; rol de servicio las pendientes de su servicio más las tomadas por él. Siempre ordenadas por fecha descendente.
// @Tags requests
// @Produce json
// @Success 200 {array} requestResponse
// @Failure 401 {string} string "unauthorized"
// @Router /requests [get]
func listRequestsHandler(svc *Service, filter VisibilityFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		all, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		visible := all
		if filter != nil {
			visible = filter.Visible(r.Context(), claims.UserID, users.Role(claims.Role), all)
		}
		sortByCreatedAtDesc(visible)

		writeJSON(w, http.StatusOK, toRequestResponses(visible))
	}
}

func myRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByRequester(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		sortByCreatedAtDesc(items)

		writeJSON(w, http.StatusOK, toRequestResponses(items))
	}
}

func getRequestHandler(svc *Service, filter VisibilityFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		req, err := svc.GetByID(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		// El detalle sigue la misma regla que el listado: lo que el actor
		// ve en GET /requests lo puede abrir. Los involucrados directos
		// (docente y agente asignado) siempre pueden.
		role := users.Role(claims.Role)
		allowed := role.IsAdmin() || req.RequesterID == claims.UserID || req.AgentID == claims.UserID
		if !allowed {
			visible := filter.Visible(r.Context(), claims.UserID, role, []Request{req})
			allowed = len(visible) == 1
		}
		if !allowed {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

// takeRequestHandler godoc
// @Summary Tomar solicitud
// @Description Pasa la solicitud a taken y la asigna al agente autenticado, con mensaje opcional para el docente.
// @Tags requests
// @Accept json
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Param payload body takeRequestRequest true "Observación opcional"
// @Success 200 {object} requestResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "illegal transition"
// @Router /requests/{requestID}/take [post]
func takeRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req takeRequestRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // body opcional
		}

		taken, err := svc.Take(r.Context(), chi.URLParam(r, "requestID"), claims.UserID, users.Role(claims.Role), req.Note)
		if err != nil {
			writeGuardError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(taken))
	}
}

// completeRequestHandler godoc
// @Summary Completar solicitud
// @Description Pasa la solicitud a done. Solo el agente asignado. Marca leídos los avisos previos del docente y crea el aviso "Solicitud realizada".
// @Tags requests
// @Accept json
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Param payload body completeRequestRequest true "Mensaje final opcional"
// @Success 200 {object} requestResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "not assigned agent"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "illegal transition"
// @Router /requests/{requestID}/complete [post]
func completeRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req completeRequestRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // body opcional
		}

		done, err := svc.Complete(r.Context(), chi.URLParam(r, "requestID"), claims.UserID, req.FinalNote)
		if err != nil {
			writeGuardError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(done))
	}
}

// overrideStateHandler setea el estado directamente. Solo admin.
func overrideStateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !users.Role(claims.Role).IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req overrideStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.AdminOverride(r.Context(), chi.URLParam(r, "requestID"), State(strings.TrimSpace(req.Estado)))
		if err != nil {
			writeGuardError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(updated))
	}
}

func writeGuardError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrNotAssignedAgent:
		http.Error(w, "not assigned agent", http.StatusForbidden)
	case ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	case ErrIllegalTransition:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func sortByCreatedAtDesc(items []Request) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func toRequestResponse(req Request) requestResponse {
	return requestResponse{
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
	}
}

func toRequestResponses(items []Request) []requestResponse {
	out := make([]requestResponse, 0, len(items))
	for _, req := range items {
		out = append(out, toRequestResponse(req))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
