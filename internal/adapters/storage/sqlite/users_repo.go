package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"sam-requests/internal/domain/users"
)

type UsersRepo struct {
	db *DB
}

func NewUsersRepo(db *DB) *UsersRepo {
	return &UsersRepo{db: db}
}

type userRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Role      string `db:"role"`
	PushToken string `db:"push_token"`
}

func (row userRow) toUser() users.User {
	return users.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Role:      users.Role(row.Role),
		PushToken: row.PushToken,
	}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usuarios (id, name, email, role, push_token)
		VALUES (?,?,?,?,?)
	`, u.ID, u.Name, u.Email, string(u.Role), u.PushToken)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}

	var row userRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, email, role, push_token
		FROM usuarios
		WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	return row.toUser(), nil
}

func (r *UsersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, email, role, push_token
		FROM usuarios
		WHERE role = ?
		ORDER BY id ASC
	`, string(role))
	if err != nil {
		return nil, err
	}

	out := make([]users.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toUser())
	}
	return out, nil
}

func (r *UsersRepo) UpdatePushToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE usuarios SET push_token = ? WHERE id = ?
	`, token, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
