package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"sam-requests/internal/domain/services"
)

type ServicesRepo struct {
	db *DB
}

func NewServicesRepo(db *DB) *ServicesRepo {
	return &ServicesRepo{db: db}
}

type serviceRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row serviceRow) toServiceDef() services.ServiceDef {
	return services.ServiceDef{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
	}
}

func (r *ServicesRepo) Create(ctx context.Context, s services.ServiceDef) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO servicios (id, name, description, active, created_at)
		VALUES (?,?,?,?,?)
	`, s.ID, s.Name, s.Description, s.Active, s.CreatedAt)
	return err
}

func (r *ServicesRepo) GetByID(ctx context.Context, id string) (services.ServiceDef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return services.ServiceDef{}, ErrNotFound
	}

	var row serviceRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, description, active, created_at
		FROM servicios
		WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return services.ServiceDef{}, ErrNotFound
		}
		return services.ServiceDef{}, err
	}
	return row.toServiceDef(), nil
}

func (r *ServicesRepo) List(ctx context.Context) ([]services.ServiceDef, error) {
	var rows []serviceRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, active, created_at
		FROM servicios
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}

	out := make([]services.ServiceDef, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toServiceDef())
	}
	return out, nil
}
