package services

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (ServiceDef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ServiceDef{}, ErrInvalidInput
	}
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ServiceDef{}, ErrNotFound
	}
	return def, nil
}

// ServiceName devuelve solo el nombre, que es lo único que necesitan
// los avisos push para armar su texto.
func (s *Service) ServiceName(ctx context.Context, id string) (string, error) {
	def, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return def.Name, nil
}

// List devuelve el catálogo con los más recientes primero,
// igual que lo consume el dashboard.
func (s *Service) List(ctx context.Context) ([]ServiceDef, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
