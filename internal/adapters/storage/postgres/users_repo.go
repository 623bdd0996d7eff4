package postgres

import (
	"context"
	"database/sql"
	"strings"

	"sam-requests/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usuarios (
			id, name, email, role, push_token
		) VALUES ($1,$2,$3,$4,$5)
	`,
		u.ID,
		u.Name,
		u.Email,
		string(u.Role),
		u.PushToken,
	)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, push_token
		FROM usuarios
		WHERE id = $1
	`, id)

	var u users.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PushToken); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	u.Role = users.Role(role)
	return u, nil
}

func (r *UsersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, role, push_token
		FROM usuarios
		WHERE role = $1
		ORDER BY id ASC
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		var r string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &r, &u.PushToken); err != nil {
			return nil, err
		}
		u.Role = users.Role(r)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) UpdatePushToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE usuarios
		SET push_token = $2
		WHERE id = $1
	`, id, token)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
