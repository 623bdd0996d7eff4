// Package memory implementa los repositorios en memoria para desarrollo
// local y tests. Sin persistencia: cada arranque parte limpio (o con el
// seed de demo si está habilitado).
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"sam-requests/internal/domain/requests"
)

var (
	ErrNotFound = errors.New("not found")
)

type requestRepo struct {
	mu   sync.RWMutex
	byID map[string]requests.Request
}

func NewRequestRepo() requests.Repository {
	return &requestRepo{
		byID: make(map[string]requests.Request),
	}
}

func (r *requestRepo) Create(ctx context.Context, req requests.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.byID[req.ID]; exists {
		return errors.New("request already exists")
	}
	r.byID[req.ID] = req
	return nil
}

// Update es un write completo: pisa el registro sin comparar versiones,
// igual que el backend real.
func (r *requestRepo) Update(ctx context.Context, req requests.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.byID[req.ID]; !exists {
		return ErrNotFound
	}
	r.byID[req.ID] = req
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (requests.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return requests.Request{}, ErrNotFound
	}
	return req, nil
}

func (r *requestRepo) List(ctx context.Context) ([]requests.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]requests.Request, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	sortRequests(out)
	return out, nil
}

func (r *requestRepo) ListByRequester(ctx context.Context, requesterID string) ([]requests.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]requests.Request, 0)
	for _, req := range r.byID {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	sortRequests(out)
	return out, nil
}

func (r *requestRepo) ListByService(ctx context.Context, serviceID string) ([]requests.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]requests.Request, 0)
	for _, req := range r.byID {
		if req.ServiceID == serviceID {
			out = append(out, req)
		}
	}
	sortRequests(out)
	return out, nil
}

// Orden estable por created_at desc, el mismo que exige el contrato de lectura.
func sortRequests(out []requests.Request) {
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
}
