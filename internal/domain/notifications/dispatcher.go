package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"sam-requests/internal/domain/users"
	"sam-requests/internal/domain/visibility"
	"sam-requests/internal/platform/logger"
	"sam-requests/internal/ports/push"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

// UserDirectory es la vista de usuarios que necesita el dispatcher
// (lo implementa users.Service).
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
	ListByRole(ctx context.Context, role users.Role) ([]users.User, error)
}

// ServiceLookup resuelve el nombre de un servicio para armar el aviso
// de nueva solicitud.
type ServiceLookup interface {
	ServiceName(ctx context.Context, serviceID string) (string, error)
}

// PendingCheck responde si una solicitud sigue pendiente. Interface local
// para no importar el paquete requests (rompe ciclos).
type PendingCheck interface {
	IsPending(ctx context.Context, requestID string) (bool, error)
}

// Dispatcher crea los registros de notificación y hace los intentos de
// entrega push. La creación del registro es la frontera de idempotencia:
// ocurre una vez por transición, no una vez por intento de entrega.
// El push es best-effort: cualquier falla se traga y queda reflejada
// solo en pushed=false.
type Dispatcher struct {
	repo    Repository
	users   UserDirectory
	lookup  ServiceLookup
	pending PendingCheck
	sender  push.Sender
	log     logger.Logger
	now     func() time.Time
}

func NewDispatcher(repo Repository, dir UserDirectory, lookup ServiceLookup, pending PendingCheck, sender push.Sender, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		repo:    repo,
		users:   dir,
		lookup:  lookup,
		pending: pending,
		sender:  sender,
		log:     log,
		now:     time.Now,
	}
}

// NotifyOnTransition crea exactamente un registro (read=false, pushed=false)
// y hace un único intento de entrega push si el destinatario tiene token.
// El error de creación sí se propaga; el de entrega no.
func (d *Dispatcher) NotifyOnTransition(ctx context.Context, requestID, recipientUserID, title, body string) error {
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" || strings.TrimSpace(title) == "" {
		return ErrInvalidInput
	}

	n := Notification{
		ID:              uuid.NewString(),
		Title:           title,
		Body:            body,
		CreatedAt:       d.now(),
		RequestID:       strings.TrimSpace(requestID),
		RecipientUserID: recipientUserID,
		Read:            false,
		Pushed:          false,
	}

	if err := d.repo.Create(ctx, n); err != nil {
		return err
	}

	d.tryPush(ctx, n)
	return nil
}

// tryPush hace un intento de entrega y marca pushed=true si salió bien.
// Sin token, sin sender o con error de red: pushed queda en false y un
// sweep posterior lo reintenta.
func (d *Dispatcher) tryPush(ctx context.Context, n Notification) bool {
	if d.sender == nil || d.users == nil {
		return false
	}

	u, err := d.users.GetByID(ctx, n.RecipientUserID)
	if err != nil || strings.TrimSpace(u.PushToken) == "" {
		return false
	}

	msg := push.Message{
		To:    u.PushToken,
		Title: n.Title,
		Body:  n.Body,
	}
	if n.RequestID != "" {
		msg.Data = map[string]string{"requestId": n.RequestID}
	}

	if err := d.sender.Send(ctx, []push.Message{msg}); err != nil {
		d.log.Debug("push delivery failed", map[string]any{
			"notificationId": n.ID,
			"err":            err.Error(),
		})
		return false
	}

	n.Pushed = true
	if err := d.repo.Update(ctx, n); err != nil {
		d.log.Warn("could not persist pushed flag", map[string]any{
			"notificationId": n.ID,
			"err":            err.Error(),
		})
	}
	return true
}

// SweepUndelivered recorre los avisos no leídos y no pusheados del
// destinatario y reintenta la entrega. Antes de cada reintento verifica
// que la solicitud asociada siga pendiente: si ya avanzó, el aviso quedó
// obsoleto y se salta. Best-effort: sin backoff ni tope de intentos,
// llamadas repetidas siguen reintentando hasta que un envío salga o la
// solicitud deje de estar pendiente.
func (d *Dispatcher) SweepUndelivered(ctx context.Context, recipientUserID string) (int, error) {
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return 0, ErrInvalidInput
	}

	items, err := d.repo.ListUnreadUnpushed(ctx, recipientUserID)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, n := range items {
		if n.Pushed {
			continue
		}
		if n.RequestID != "" && d.pending != nil {
			isPending, err := d.pending.IsPending(ctx, n.RequestID)
			if err != nil || !isPending {
				continue
			}
		}
		if d.tryPush(ctx, n) {
			delivered++
		}
	}
	return delivered, nil
}

// MarkReadForRequest marca leídos todos los avisos no leídos de una
// solicitud para un destinatario. Lo usa complete para limpiar los
// avisos "tomada" cuando la solicitud ya está realizada.
func (d *Dispatcher) MarkReadForRequest(ctx context.Context, requestID, recipientUserID string) error {
	requestID = strings.TrimSpace(requestID)
	recipientUserID = strings.TrimSpace(recipientUserID)
	if requestID == "" || recipientUserID == "" {
		return ErrInvalidInput
	}

	items, err := d.repo.ListUnreadByRequest(ctx, requestID, recipientUserID)
	if err != nil {
		return err
	}
	for _, n := range items {
		if n.Read {
			continue
		}
		n.Read = true
		if err := d.repo.Update(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// MarkRead marca leído un aviso puntual del destinatario.
func (d *Dispatcher) MarkRead(ctx context.Context, id, recipientUserID string) error {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(recipientUserID) == "" {
		return ErrInvalidInput
	}

	n, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if n.RecipientUserID != recipientUserID {
		return ErrForbidden
	}
	if n.Read {
		return nil // idempotente
	}

	n.Read = true
	return d.repo.Update(ctx, n)
}

// ListForRecipient devuelve los avisos del usuario, más recientes primero.
func (d *Dispatcher) ListForRecipient(ctx context.Context, recipientUserID string) ([]Notification, error) {
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return nil, ErrInvalidInput
	}

	items, err := d.repo.ListByRecipient(ctx, recipientUserID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// BroadcastNewRequest avisa por push a todos los agentes del rol que
// atiende el servicio de la solicitud recién creada. No deja registro
// de notificación: es solo el aviso, igual que el flujo original.
func (d *Dispatcher) BroadcastNewRequest(ctx context.Context, requestID, serviceID, roomID string) error {
	if d.sender == nil || d.users == nil || d.lookup == nil {
		return nil
	}

	name, err := d.lookup.ServiceName(ctx, serviceID)
	if err != nil {
		return nil
	}
	role, ok := visibility.RoleForServiceName(name)
	if !ok {
		return nil
	}

	agents, err := d.users.ListByRole(ctx, role)
	if err != nil {
		return nil
	}

	msgs := make([]push.Message, 0, len(agents))
	for _, a := range agents {
		if strings.TrimSpace(a.PushToken) == "" {
			continue
		}
		msgs = append(msgs, push.Message{
			To:    a.PushToken,
			Title: "Nueva solicitud",
			Body:  fmt.Sprintf("Sala %s • %s", roomID, name),
			Data:  map[string]string{"requestId": requestID},
		})
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := d.sender.Send(ctx, msgs); err != nil {
		d.log.Debug("new-request broadcast failed", map[string]any{
			"requestId": requestID,
			"err":       err.Error(),
		})
	}
	return nil
}

// PendingDigest manda al agente un resumen de pendientes de su servicio.
// count lo calcula el módulo requests; acá solo se arma y entrega el push.
func (d *Dispatcher) PendingDigest(ctx context.Context, actorID string, count int) error {
	if count <= 0 || d.sender == nil || d.users == nil {
		return nil
	}

	u, err := d.users.GetByID(ctx, actorID)
	if err != nil || strings.TrimSpace(u.PushToken) == "" {
		return nil
	}

	msg := push.Message{
		To:    u.PushToken,
		Title: "Solicitudes pendientes",
		Body:  fmt.Sprintf("Tienes %d solicitudes pendientes", count),
	}
	if err := d.sender.Send(ctx, []push.Message{msg}); err != nil {
		d.log.Debug("pending digest failed", map[string]any{
			"actorId": actorID,
			"err":     err.Error(),
		})
	}
	return nil
}
