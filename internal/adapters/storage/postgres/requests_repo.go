package postgres

import (
	"context"
	"database/sql"
	"strings"

	"sam-requests/internal/domain/requests"
)

type RequestsRepo struct {
	db *sql.DB
}

func NewRequestsRepo(db *sql.DB) *RequestsRepo {
	return &RequestsRepo{db: db}
}

func (r *RequestsRepo) Create(ctx context.Context, req requests.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO solicitudes (
			id, service_id, room_id, requester_id,
			created_at, estado,
			comment, note, final_note,
			agent_id, source
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		req.ID,
		req.ServiceID,
		req.RoomID,
		req.RequesterID,
		req.CreatedAt,
		string(req.State),
		req.Comment,
		req.Note,
		req.FinalNote,
		toNullString(req.AgentID),
		string(req.Source),
	)
	return err
}

// Update pisa el registro completo, sin comparar versiones. El último
// write gana.
func (r *RequestsRepo) Update(ctx context.Context, req requests.Request) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE solicitudes
		SET
			estado = $2,
			note = $3,
			final_note = $4,
			agent_id = $5
		WHERE id = $1
	`,
		req.ID,
		string(req.State),
		req.Note,
		req.FinalNote,
		toNullString(req.AgentID),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RequestsRepo) GetByID(ctx context.Context, id string) (requests.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return requests.Request{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, requestSelect+` WHERE id = $1`, id)

	req, err := scanRequest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return requests.Request{}, ErrNotFound
		}
		return requests.Request{}, err
	}
	return req, nil
}

func (r *RequestsRepo) List(ctx context.Context) ([]requests.Request, error) {
	rows, err := r.db.QueryContext(ctx, requestSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *RequestsRepo) ListByRequester(ctx context.Context, requesterID string) ([]requests.Request, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, requestSelect+`
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *RequestsRepo) ListByService(ctx context.Context, serviceID string) ([]requests.Request, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, requestSelect+`
		WHERE service_id = $1
		ORDER BY created_at DESC
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

const requestSelect = `
	SELECT
		id, service_id, room_id, requester_id,
		created_at, estado,
		comment, note, final_note,
		agent_id, source
	FROM solicitudes
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (requests.Request, error) {
	var req requests.Request
	var estado, source string
	var agentID sql.NullString
	if err := row.Scan(
		&req.ID,
		&req.ServiceID,
		&req.RoomID,
		&req.RequesterID,
		&req.CreatedAt,
		&estado,
		&req.Comment,
		&req.Note,
		&req.FinalNote,
		&agentID,
		&source,
	); err != nil {
		return requests.Request{}, err
	}

	req.State = requests.State(estado)
	req.Source = requests.Source(source)
	if agentID.Valid {
		req.AgentID = agentID.String
	}
	return req, nil
}

func collectRequests(rows *sql.Rows) ([]requests.Request, error) {
	out := make([]requests.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// agent_id es NULL mientras la solicitud sigue pendiente.
func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
