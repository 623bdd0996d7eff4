package users

import (
	"encoding/json"
	"net/http"
	"strings"

	"sam-requests/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Put("/me/push-token", registerPushTokenHandler(svc))
	r.Get("/me", meHandler(svc))
}

type pushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// registerPushTokenHandler godoc
// @Summary Registrar push token
// @Description Guarda el token de entrega push del usuario autenticado. El token lo obtiene la app (colaborador externo); acá solo se persiste.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body pushTokenRequest true "Token de entrega push"
// @Success 204 {string} string "sin contenido"
// @Failure 400 {string} string "invalid json / pushToken required"
// @Failure 401 {string} string "unauthorized"
// @Router /me/push-token [put]
func registerPushTokenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req pushTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.PushToken) == "" {
			http.Error(w, "pushToken required", http.StatusBadRequest)
			return
		}

		if err := svc.RegisterPushToken(r.Context(), claims.UserID, req.PushToken); err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			// El usuario puede no existir aún en el store (identidad externa):
			// devolvemos lo que dicen los claims.
			u = User{ID: claims.UserID, Email: claims.Email, Role: Role(claims.Role)}
		}

		writeJSON(w, http.StatusOK, userResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  u.Role,
		})
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
