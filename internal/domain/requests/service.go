package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sam-requests/internal/domain/users"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrNotAssignedAgent  = errors.New("not assigned agent")
)

// Dispatcher crea notificaciones en las transiciones.
// Interface local para no importar el paquete notifications (rompe ciclos,
// mismo truco que OwnerOf en otros módulos).
type Dispatcher interface {
	NotifyOnTransition(ctx context.Context, requestID, recipientUserID, title, body string) error
	MarkReadForRequest(ctx context.Context, requestID, recipientUserID string) error
	BroadcastNewRequest(ctx context.Context, requestID, serviceID, roomID string) error
}

// ServiceResolver resuelve el servicio de un actor con rol de servicio.
// ok=false significa "sin filtro": el rol no se pudo mapear a un servicio
// y se deja pasar (ambigüedad heredada, ver DESIGN.md).
type ServiceResolver interface {
	ResolveServiceID(ctx context.Context, actorID string, role users.Role) (string, bool)
}

// Broadcaster avisa al canal realtime que el set de solicitudes cambió.
type Broadcaster interface {
	RequestsChanged()
}

type Service struct {
	repo       Repository
	dispatcher Dispatcher
	resolver   ServiceResolver
	hub        Broadcaster
	now        func() time.Time
}

func NewService(repo Repository, dispatcher Dispatcher, resolver ServiceResolver, hub Broadcaster) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		resolver:   resolver,
		hub:        hub,
		now:        time.Now,
	}
}

type CreateInput struct {
	ServiceID string
	RoomID    string
	Comment   string
	Source    Source
}

// Create registra una solicitud pendiente, deja constancia para el docente
// ("Solicitud enviada") y avisa por push a los agentes del servicio.
func (s *Service) Create(ctx context.Context, requesterID string, requesterRole users.Role, in CreateInput) (Request, error) {
	requesterID = strings.TrimSpace(requesterID)
	serviceID := strings.TrimSpace(in.ServiceID)

	if requesterID == "" || serviceID == "" {
		return Request{}, ErrInvalidInput
	}
	// Solo docentes y admins levantan solicitudes.
	if !requesterRole.IsRequester() && !requesterRole.IsAdmin() {
		return Request{}, ErrForbidden
	}

	src := in.Source
	if src == "" {
		src = SourceApp
	}

	req := Request{
		ID:          uuid.NewString(),
		ServiceID:   serviceID,
		RoomID:      strings.TrimSpace(in.RoomID),
		RequesterID: requesterID,
		CreatedAt:   s.now(),
		State:       StatePending,
		Comment:     strings.TrimSpace(in.Comment),
		Source:      src,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return Request{}, err
	}

	if s.dispatcher != nil {
		body := fmt.Sprintf("Sala %s asociada. Enviada a administración.", req.RoomID)
		_ = s.dispatcher.NotifyOnTransition(ctx, req.ID, requesterID, "Solicitud enviada", body)
		// Push a los agentes del servicio (sin registro de notificación: solo aviso).
		_ = s.dispatcher.BroadcastNewRequest(ctx, req.ID, req.ServiceID, req.RoomID)
	}

	s.broadcast()
	return req, nil
}

// Take pasa la solicitud de pending a taken y la asigna al actor.
// Lectura-modificación-escritura sin CAS: dos agentes concurrentes pueden
// pasar ambos la precondición sobre lecturas viejas y el último write gana,
// sin error para el perdedor. Es comportamiento conocido y aceptado; los
// tests lo reproducen tal cual en vez de taparlo.
func (s *Service) Take(ctx context.Context, id, actorID string, actorRole users.Role, note string) (Request, error) {
	id = strings.TrimSpace(id)
	actorID = strings.TrimSpace(actorID)
	if id == "" || actorID == "" {
		return Request{}, ErrInvalidInput
	}
	if !actorRole.IsServiceRole() {
		return Request{}, ErrForbidden
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, ErrNotFound
	}

	if req.State != StatePending {
		return Request{}, ErrIllegalTransition
	}

	// Autorización por servicio: si el rol resuelve a un servicio concreto,
	// debe coincidir. Si no resuelve, se deja pasar (sin filtro).
	if s.resolver != nil {
		if sid, ok := s.resolver.ResolveServiceID(ctx, actorID, actorRole); ok && sid != req.ServiceID {
			return Request{}, ErrForbidden
		}
	}

	req.State = StateTaken
	req.AgentID = actorID
	req.Note = strings.TrimSpace(note)

	if err := s.repo.Update(ctx, req); err != nil {
		return Request{}, err
	}

	if s.dispatcher != nil {
		body := req.Note
		if body == "" {
			body = "Tu solicitud fue tomada."
		}
		_ = s.dispatcher.NotifyOnTransition(ctx, req.ID, req.RequesterID, "Solicitud tomada", body)
	}

	s.broadcast()
	return req, nil
}

// Complete pasa la solicitud de taken a done. Solo el agente asignado puede.
// Antes de crear el aviso "Solicitud realizada" marca leídas las
// notificaciones previas de esta solicitud para el docente.
func (s *Service) Complete(ctx context.Context, id, actorID, finalNote string) (Request, error) {
	id = strings.TrimSpace(id)
	actorID = strings.TrimSpace(actorID)
	if id == "" || actorID == "" {
		return Request{}, ErrInvalidInput
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, ErrNotFound
	}

	if req.State != StateTaken {
		return Request{}, ErrIllegalTransition
	}
	if req.AgentID != actorID {
		return Request{}, ErrNotAssignedAgent
	}

	finalNote = strings.TrimSpace(finalNote)
	if finalNote == "" {
		// fallback al mensaje del take, igual que el flujo original
		finalNote = req.Note
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.MarkReadForRequest(ctx, req.ID, req.RequesterID)
	}

	req.State = StateDone
	req.FinalNote = finalNote

	if err := s.repo.Update(ctx, req); err != nil {
		return Request{}, err
	}

	if s.dispatcher != nil {
		body := req.FinalNote
		if body == "" {
			body = "Tu solicitud fue realizada."
		}
		_ = s.dispatcher.NotifyOnTransition(ctx, req.ID, req.RequesterID, "Solicitud realizada", body)
	}

	s.broadcast()
	return req, nil
}

// AdminOverride setea el estado directamente, sin validar transición y sin
// notificar. Que no notifique viene del comportamiento original; está
// anotado como pregunta abierta en DESIGN.md, no lo "arreglamos" acá.
func (s *Service) AdminOverride(ctx context.Context, id string, newState State) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" || !newState.Valid() {
		return Request{}, ErrInvalidInput
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, ErrNotFound
	}

	req.State = newState

	if err := s.repo.Update(ctx, req); err != nil {
		return Request{}, err
	}

	s.broadcast()
	return req, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrInvalidInput
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (s *Service) List(ctx context.Context) ([]Request, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByRequester(ctx context.Context, requesterID string) ([]Request, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRequester(ctx, requesterID)
}

// IsPending responde si la solicitud sigue pendiente.
// Lo usa el sweep de notificaciones para saltar avisos ya superados.
func (s *Service) IsPending(ctx context.Context, id string) (bool, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return req.State == StatePending, nil
}

// PendingCountForActor cuenta las pendientes del servicio del actor.
// Si el rol no resuelve servicio, devuelve 0 (no hay digest que mandar).
func (s *Service) PendingCountForActor(ctx context.Context, actorID string, role users.Role) (int, error) {
	if !role.IsServiceRole() || s.resolver == nil {
		return 0, nil
	}
	sid, ok := s.resolver.ResolveServiceID(ctx, actorID, role)
	if !ok {
		return 0, nil
	}
	items, err := s.repo.ListByService(ctx, sid)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, req := range items {
		if req.State == StatePending {
			n++
		}
	}
	return n, nil
}

func (s *Service) broadcast() {
	if s.hub != nil {
		s.hub.RequestsChanged()
	}
}
