package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"sam-requests/internal/domain/requests"
)

type RequestsRepo struct {
	db *DB
}

func NewRequestsRepo(db *DB) *RequestsRepo {
	return &RequestsRepo{db: db}
}

// requestRow es la fila tal como la devuelve sqlx; se convierte al modelo
// de dominio en toRequest.
type requestRow struct {
	ID          string         `db:"id"`
	ServiceID   string         `db:"service_id"`
	RoomID      string         `db:"room_id"`
	RequesterID string         `db:"requester_id"`
	CreatedAt   time.Time      `db:"created_at"`
	Estado      string         `db:"estado"`
	Comment     string         `db:"comment"`
	Note        string         `db:"note"`
	FinalNote   string         `db:"final_note"`
	AgentID     sql.NullString `db:"agent_id"`
	Source      string         `db:"source"`
}

func (row requestRow) toRequest() requests.Request {
	req := requests.Request{
		ID:          row.ID,
		ServiceID:   row.ServiceID,
		RoomID:      row.RoomID,
		RequesterID: row.RequesterID,
		CreatedAt:   row.CreatedAt,
		State:       requests.State(row.Estado),
		Comment:     row.Comment,
		Note:        row.Note,
		FinalNote:   row.FinalNote,
		Source:      requests.Source(row.Source),
	}
	if row.AgentID.Valid {
		req.AgentID = row.AgentID.String
	}
	return req
}

func (r *RequestsRepo) Create(ctx context.Context, req requests.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO solicitudes (
			id, service_id, room_id, requester_id,
			created_at, estado,
			comment, note, final_note,
			agent_id, source
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)
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
		nullString(req.AgentID),
		string(req.Source),
	)
	return err
}

// Update pisa el registro completo. Sin token de concurrencia: el último
// write gana.
func (r *RequestsRepo) Update(ctx context.Context, req requests.Request) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE solicitudes
		SET estado = ?, note = ?, final_note = ?, agent_id = ?
		WHERE id = ?
	`,
		string(req.State),
		req.Note,
		req.FinalNote,
		nullString(req.AgentID),
		req.ID,
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

	var row requestRow
	err := r.db.GetContext(ctx, &row, requestSelect+` WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return requests.Request{}, ErrNotFound
		}
		return requests.Request{}, err
	}
	return row.toRequest(), nil
}

func (r *RequestsRepo) List(ctx context.Context) ([]requests.Request, error) {
	var rows []requestRow
	err := r.db.SelectContext(ctx, &rows, requestSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

func (r *RequestsRepo) ListByRequester(ctx context.Context, requesterID string) ([]requests.Request, error) {
	var rows []requestRow
	err := r.db.SelectContext(ctx, &rows, requestSelect+`
		WHERE requester_id = ?
		ORDER BY created_at DESC
	`, requesterID)
	if err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

func (r *RequestsRepo) ListByService(ctx context.Context, serviceID string) ([]requests.Request, error) {
	var rows []requestRow
	err := r.db.SelectContext(ctx, &rows, requestSelect+`
		WHERE service_id = ?
		ORDER BY created_at DESC
	`, serviceID)
	if err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

const requestSelect = `
	SELECT
		id, service_id, room_id, requester_id,
		created_at, estado,
		comment, note, final_note,
		agent_id, source
	FROM solicitudes
`

func toRequests(rows []requestRow) []requests.Request {
	out := make([]requests.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRequest())
	}
	return out
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
