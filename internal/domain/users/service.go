package users

import (
	"context"
	"errors"
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

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *Service) ListByRole(ctx context.Context, role Role) ([]User, error) {
	if role == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRole(ctx, role)
}

// RegisterPushToken persiste el token que obtuvo la app.
// La mecánica de obtención del token es del colaborador externo.
func (s *Service) RegisterPushToken(ctx context.Context, userID, token string) error {
	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return ErrInvalidInput
	}
	return s.repo.UpdatePushToken(ctx, userID, token)
}
