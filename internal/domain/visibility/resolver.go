package visibility

import (
	"context"
	"strings"
	"sync"

	"sam-requests/internal/domain/requests"
	"sam-requests/internal/domain/services"
	"sam-requests/internal/domain/users"
)

// serviceNameByRole es la tabla fija rol→nombre canónico de servicio
// (etapa de match exacto, case-insensitive).
var serviceNameByRole = map[users.Role]string{
	users.RoleServiciosGenerales: "SERVICIOS GENERALES",
	users.RoleSalud:              "ENFERMERIA",
	users.RoleSoporte:            "SOPORTE CETECOM",
	users.RoleSeguridad:          "SEGURIDAD",
}

// keywordsByRole es el fallback por substring cuando el nombre exacto
// no aparece en el catálogo. Heurística frágil heredada del sistema
// original; está anotada en DESIGN.md, no extenderla sin revisar.
var keywordsByRole = map[users.Role][]string{
	users.RoleSeguridad:          {"seguridad"},
	users.RoleSoporte:            {"soporte"},
	users.RoleServiciosGenerales: {"servicios", "generales", "general"},
	users.RoleSalud:              {"enfer", "salud"},
}

// ServiceCatalog es la vista de solo lectura del catálogo que necesita
// el resolver (lo implementa services.Service).
type ServiceCatalog interface {
	List(ctx context.Context) ([]services.ServiceDef, error)
}

// Resolver calcula qué solicitudes ve cada actor. Es puro: se re-evalúa
// en cada cambio del set o del catálogo. El único estado es la memoización
// del último serviceId resuelto por actor, que sirve de respaldo cuando
// el catálogo no responde.
type Resolver struct {
	catalog ServiceCatalog

	mu           sync.Mutex
	lastResolved map[string]string // actorID -> serviceID
}

func NewResolver(catalog ServiceCatalog) *Resolver {
	return &Resolver{
		catalog:      catalog,
		lastResolved: make(map[string]string),
	}
}

// ResolveServiceID mapea un actor con rol de servicio a su serviceId.
// ok=false significa "sin filtro": la visibilidad por servicio no aplica
// (ambigüedad heredada y documentada; el filtro por estado sigue vigente).
func (r *Resolver) ResolveServiceID(ctx context.Context, actorID string, role users.Role) (string, bool) {
	if !role.IsServiceRole() {
		return "", false
	}

	catalog, err := r.catalog.List(ctx)
	if err != nil {
		// Catálogo caído: usar lo último resuelto si existe.
		r.mu.Lock()
		sid, ok := r.lastResolved[actorID]
		r.mu.Unlock()
		return sid, ok
	}

	sid, ok := resolveAgainstCatalog(role, catalog)
	if ok {
		r.mu.Lock()
		r.lastResolved[actorID] = sid
		r.mu.Unlock()
	}
	return sid, ok
}

func resolveAgainstCatalog(role users.Role, catalog []services.ServiceDef) (string, bool) {
	// 1) Match exacto por nombre canónico
	if canonical, hasName := serviceNameByRole[role]; hasName {
		for _, s := range catalog {
			if strings.EqualFold(strings.TrimSpace(s.Name), canonical) {
				return s.ID, true
			}
		}
	}

	// 2) Fallback por palabras clave
	for _, kw := range keywordsByRole[role] {
		for _, s := range catalog {
			if strings.Contains(strings.ToLower(s.Name), kw) {
				return s.ID, true
			}
		}
	}

	return "", false
}

// RoleForServiceName es el mapeo inverso: dado el nombre de un servicio,
// qué rol de agente lo atiende. Se usa para el fan-out push al crear
// una solicitud.
func RoleForServiceName(name string) (users.Role, bool) {
	n := strings.ToUpper(name)
	switch {
	case strings.Contains(n, "SERVICIOS GENERALES"):
		return users.RoleServiciosGenerales, true
	case strings.Contains(n, "ENFERMERIA"), strings.Contains(n, "ENFERMERÍA"), strings.Contains(n, "SALUD"):
		return users.RoleSalud, true
	case strings.Contains(n, "SOPORTE"), strings.Contains(n, "CETECOM"):
		return users.RoleSoporte, true
	case strings.Contains(n, "SEGURIDAD"):
		return users.RoleSeguridad, true
	default:
		return "", false
	}
}

// Visible filtra el set completo según el rol del actor:
// - admin: todo, sin filtro
// - docente (y roles desconocidos): solo sus propias solicitudes
// - rol de servicio: pendientes de su servicio + tomadas por él mismo;
//   las done no se muestran en esta vista (siguen visibles para el
//   docente y el admin).
func (r *Resolver) Visible(ctx context.Context, actorID string, role users.Role, all []requests.Request) []requests.Request {
	if role.IsAdmin() {
		return all
	}

	out := make([]requests.Request, 0, len(all))

	if role.IsServiceRole() {
		sid, hasFilter := r.ResolveServiceID(ctx, actorID, role)
		for _, req := range all {
			if hasFilter && req.ServiceID != sid {
				continue
			}
			switch {
			case req.State == requests.StatePending:
				out = append(out, req)
			case req.State == requests.StateTaken && req.AgentID == actorID:
				out = append(out, req)
			}
		}
		return out
	}

	for _, req := range all {
		if req.RequesterID == actorID {
			out = append(out, req)
		}
	}
	return out
}
