package requests

import "context"

// Repository es el contrato con el Entity Store.
// Update es un write completo sin token de concurrencia: el último
// write gana (ver la carrera documentada en service.go).
type Repository interface {
	Create(ctx context.Context, req Request) error
	Update(ctx context.Context, req Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context) ([]Request, error)
	ListByRequester(ctx context.Context, requesterID string) ([]Request, error)
	ListByService(ctx context.Context, serviceID string) ([]Request, error)
}
