package services

import "context"

type Repository interface {
	Create(ctx context.Context, s ServiceDef) error
	GetByID(ctx context.Context, id string) (ServiceDef, error)
	List(ctx context.Context) ([]ServiceDef, error)
}
