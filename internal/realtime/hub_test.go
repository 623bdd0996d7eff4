package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sam-requests/internal/domain/requests"
)

// querySource simula el backing store del canal; los tests mutan el set
// y disparan RequestsChanged igual que lo hace el módulo requests.
type querySource struct {
	mu    sync.Mutex
	items []requests.Request
	err   error
}

func (s *querySource) set(items []requests.Request, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.err = err
}

func (s *querySource) query(ctx context.Context) ([]requests.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]requests.Request, len(s.items))
	copy(out, s.items)
	return out, nil
}

func recv(t *testing.T, ch <-chan []requests.Request) []requests.Request {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return nil
	}
}

func reqAt(id string, created time.Time) requests.Request {
	return requests.Request{ID: id, CreatedAt: created, State: requests.StatePending}
}

func TestHub_Subscribe_EmitsInitialSnapshot(t *testing.T) {
	hub := NewHub(nil)
	src := &querySource{}
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	src.set([]requests.Request{reqAt("r-1", base)}, nil)

	ch, cancel := hub.Subscribe(context.Background(), src.query, nil)
	defer cancel()

	snap := recv(t, ch)
	if len(snap) != 1 || snap[0].ID != "r-1" {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
}

func TestHub_Broadcast_DeliversFullSnapshotNewestFirst(t *testing.T) {
	hub := NewHub(nil)
	src := &querySource{}
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	src.set([]requests.Request{reqAt("r-1", base)}, nil)

	ch, cancel := hub.Subscribe(context.Background(), src.query, nil)
	defer cancel()
	recv(t, ch) // snapshot inicial

	// Llega una solicitud nueva: el snapshot es el set completo, no un delta.
	src.set([]requests.Request{
		reqAt("r-1", base),
		reqAt("r-2", base.Add(time.Minute)),
	}, nil)
	hub.RequestsChanged()

	snap := recv(t, ch)
	if len(snap) != 2 {
		t.Fatalf("expected full snapshot of 2, got %d", len(snap))
	}
	if snap[0].ID != "r-2" || snap[1].ID != "r-1" {
		t.Fatalf("expected newest first, got %s then %s", snap[0].ID, snap[1].ID)
	}
}

func TestHub_QueryError_EmptySnapshotAndCallback(t *testing.T) {
	hub := NewHub(nil)
	src := &querySource{}
	src.set(nil, nil)

	errs := make(chan error, 1)
	onError := func(err error) {
		select {
		case errs <- err:
		default:
		}
	}

	ch, cancel := hub.Subscribe(context.Background(), src.query, onError)
	defer cancel()
	recv(t, ch)

	src.set(nil, errors.New("store down"))
	hub.RequestsChanged()

	snap := recv(t, ch)
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot on query error, got %d items", len(snap))
	}
	select {
	case err := <-errs:
		if err == nil || err.Error() != "store down" {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected error callback")
	}

	// El canal sigue vivo: al recuperarse el store vuelven snapshots reales.
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	src.set([]requests.Request{reqAt("r-1", base)}, nil)
	hub.RequestsChanged()

	snap = recv(t, ch)
	if len(snap) != 1 {
		t.Fatalf("expected recovery snapshot, got %d items", len(snap))
	}
}

func TestHub_Cancel_ClosesChannelAndStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	src := &querySource{}
	src.set(nil, nil)

	ch, cancel := hub.Subscribe(context.Background(), src.query, nil)
	recv(t, ch)
	cancel()

	// Tras cancelar, el canal se cierra (eventualmente) y broadcast no entrega.
	hub.RequestsChanged()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected channel close after cancel")
	}

	// Cancel repetido no debe entrar en pánico.
	cancel()
}

func TestHub_MultipleSubscribers_EachGetsOwnQuery(t *testing.T) {
	hub := NewHub(nil)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	srcA := &querySource{}
	srcA.set([]requests.Request{reqAt("a-1", base)}, nil)
	srcB := &querySource{}
	srcB.set([]requests.Request{reqAt("b-1", base), reqAt("b-2", base.Add(time.Minute))}, nil)

	chA, cancelA := hub.Subscribe(context.Background(), srcA.query, nil)
	defer cancelA()
	chB, cancelB := hub.Subscribe(context.Background(), srcB.query, nil)
	defer cancelB()

	if snap := recv(t, chA); len(snap) != 1 || snap[0].ID != "a-1" {
		t.Fatalf("unexpected snapshot for A: %+v", snap)
	}
	if snap := recv(t, chB); len(snap) != 2 {
		t.Fatalf("unexpected snapshot for B: %+v", snap)
	}

	hub.RequestsChanged()

	if snap := recv(t, chA); len(snap) != 1 {
		t.Fatalf("A should still see its own query, got %d", len(snap))
	}
	if snap := recv(t, chB); len(snap) != 2 {
		t.Fatalf("B should still see its own query, got %d", len(snap))
	}
}
