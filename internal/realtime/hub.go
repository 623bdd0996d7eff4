// Package realtime implementa el canal de sincronización de solicitudes:
// cada suscriptor recibe el estado completo de su consulta (snapshot),
// nunca deltas, cada vez que algo cambia.
package realtime

import (
	"context"
	"sort"
	"sync"

	"sam-requests/internal/domain/requests"
	"sam-requests/internal/platform/logger"
)

// QueryFunc produce el snapshot de un suscriptor. Se evalúa al suscribirse
// y después de cada cambio; la visibilidad por rol va dentro de la query.
type QueryFunc func(ctx context.Context) ([]requests.Request, error)

// ErrorFunc recibe los errores de query de un suscriptor. El canal no se
// cae por un error: se emite un snapshot vacío y se sigue escuchando.
type ErrorFunc func(err error)

type subscriber struct {
	query   QueryFunc
	onError ErrorFunc
	out     chan []requests.Request
	trigger chan struct{}
	done    chan struct{}
}

// Hub reparte los avisos de cambio a los suscriptores. Broadcast nunca
// bloquea: cada suscriptor tiene un trigger con coalescing, así que una
// ráfaga de cambios puede colapsar en un solo snapshot.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
	log  logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		subs: make(map[*subscriber]struct{}),
		log:  log,
	}
}

// RequestsChanged avisa que el conjunto de solicitudes cambió.
// Implementa el Broadcaster que espera el módulo requests.
func (h *Hub) RequestsChanged() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.trigger <- struct{}{}:
		default:
			// ya hay un refresh encolado, se coalesce
		}
	}
}

// Subscribe registra un suscriptor y devuelve el canal de snapshots y la
// función de cancelación. El primer snapshot sale apenas arranca la
// goroutine del suscriptor, sin esperar un cambio.
func (h *Hub) Subscribe(ctx context.Context, query QueryFunc, onError ErrorFunc) (<-chan []requests.Request, func()) {
	s := &subscriber{
		query:   query,
		onError: onError,
		out:     make(chan []requests.Request, 1),
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go h.run(ctx, s)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
			close(s.done)
		})
	}
	return s.out, cancel
}

func (h *Hub) run(ctx context.Context, s *subscriber) {
	defer close(s.out)

	// snapshot inicial
	if !h.emit(ctx, s) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.trigger:
			if !h.emit(ctx, s) {
				return
			}
		}
	}
}

// emit evalúa la query y entrega el snapshot. Un error de query degrada
// a snapshot vacío y se informa por onError; el suscriptor sigue vivo.
func (h *Hub) emit(ctx context.Context, s *subscriber) bool {
	items, err := s.query(ctx)
	if err != nil {
		h.log.Warn("snapshot query failed", map[string]any{"err": err.Error()})
		if s.onError != nil {
			s.onError(err)
		}
		items = []requests.Request{}
	}
	if items == nil {
		items = []requests.Request{}
	}
	sortByCreatedAtDesc(items)

	select {
	case s.out <- items:
		return true
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	}
}

func sortByCreatedAtDesc(items []requests.Request) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
