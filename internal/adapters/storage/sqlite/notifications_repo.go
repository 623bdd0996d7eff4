package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"sam-requests/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *DB
}

func NewNotificationsRepo(db *DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

type notificationRow struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	Body            string    `db:"body"`
	CreatedAt       time.Time `db:"created_at"`
	RequestID       string    `db:"request_id"`
	RecipientUserID string    `db:"recipient_user_id"`
	Read            bool      `db:"read"`
	Pushed          bool      `db:"pushed"`
}

func (row notificationRow) toNotification() notifications.Notification {
	return notifications.Notification{
		ID:              row.ID,
		Title:           row.Title,
		Body:            row.Body,
		CreatedAt:       row.CreatedAt,
		RequestID:       row.RequestID,
		RecipientUserID: row.RecipientUserID,
		Read:            row.Read,
		Pushed:          row.Pushed,
	}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notificaciones (
			id, title, body, created_at,
			request_id, recipient_user_id,
			read, pushed
		) VALUES (?,?,?,?,?,?,?,?)
	`,
		n.ID,
		n.Title,
		n.Body,
		n.CreatedAt,
		n.RequestID,
		n.RecipientUserID,
		n.Read,
		n.Pushed,
	)
	return err
}

// Update solo voltea flags; el contenido del aviso es inmutable.
func (r *NotificationsRepo) Update(ctx context.Context, n notifications.Notification) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notificaciones SET read = ?, pushed = ? WHERE id = ?
	`, n.Read, n.Pushed, n.ID)
	if err != nil {
		return err
	}
	count, _ := res.RowsAffected()
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return notifications.Notification{}, ErrNotFound
	}

	var row notificationRow
	err := r.db.GetContext(ctx, &row, notificationSelect+` WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notifications.Notification{}, ErrNotFound
		}
		return notifications.Notification{}, err
	}
	return row.toNotification(), nil
}

func (r *NotificationsRepo) ListByRecipient(ctx context.Context, recipientUserID string) ([]notifications.Notification, error) {
	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows, notificationSelect+`
		WHERE recipient_user_id = ?
		ORDER BY created_at DESC
	`, recipientUserID)
	if err != nil {
		return nil, err
	}
	return toNotifications(rows), nil
}

func (r *NotificationsRepo) ListUnreadByRequest(ctx context.Context, requestID, recipientUserID string) ([]notifications.Notification, error) {
	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows, notificationSelect+`
		WHERE request_id = ?
		  AND recipient_user_id = ?
		  AND read = 0
		ORDER BY created_at DESC
	`, requestID, recipientUserID)
	if err != nil {
		return nil, err
	}
	return toNotifications(rows), nil
}

func (r *NotificationsRepo) ListUnreadUnpushed(ctx context.Context, recipientUserID string) ([]notifications.Notification, error) {
	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows, notificationSelect+`
		WHERE recipient_user_id = ?
		  AND read = 0
		  AND pushed = 0
		ORDER BY created_at DESC
	`, recipientUserID)
	if err != nil {
		return nil, err
	}
	return toNotifications(rows), nil
}

const notificationSelect = `
	SELECT
		id, title, body, created_at,
		request_id, recipient_user_id,
		read, pushed
	FROM notificaciones
`

func toNotifications(rows []notificationRow) []notifications.Notification {
	out := make([]notifications.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toNotification())
	}
	return out
}
