package postgres

import (
	"context"
	"database/sql"
	"strings"

	"sam-requests/internal/domain/services"
)

type ServicesRepo struct {
	db *sql.DB
}

func NewServicesRepo(db *sql.DB) *ServicesRepo {
	return &ServicesRepo{db: db}
}

func (r *ServicesRepo) Create(ctx context.Context, s services.ServiceDef) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO servicios (
			id, name, description, active, created_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		s.ID,
		s.Name,
		s.Description,
		s.Active,
		s.CreatedAt,
	)
	return err
}

func (r *ServicesRepo) GetByID(ctx context.Context, id string) (services.ServiceDef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return services.ServiceDef{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, active, created_at
		FROM servicios
		WHERE id = $1
	`, id)

	var s services.ServiceDef
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Active, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return services.ServiceDef{}, ErrNotFound
		}
		return services.ServiceDef{}, err
	}
	return s, nil
}

func (r *ServicesRepo) List(ctx context.Context) ([]services.ServiceDef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, active, created_at
		FROM servicios
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]services.ServiceDef, 0)
	for rows.Next() {
		var s services.ServiceDef
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
