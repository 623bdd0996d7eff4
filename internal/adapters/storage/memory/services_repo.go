package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"sam-requests/internal/domain/services"
)

type serviceRepo struct {
	mu   sync.RWMutex
	byID map[string]services.ServiceDef
}

func NewServiceRepo() services.Repository {
	return &serviceRepo{
		byID: make(map[string]services.ServiceDef),
	}
}

func (r *serviceRepo) Create(ctx context.Context, s services.ServiceDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("service id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("service already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *serviceRepo) GetByID(ctx context.Context, id string) (services.ServiceDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return services.ServiceDef{}, ErrNotFound
	}
	return s, nil
}

func (r *serviceRepo) List(ctx context.Context) ([]services.ServiceDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]services.ServiceDef, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
