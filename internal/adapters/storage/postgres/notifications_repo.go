package postgres

import (
	"context"
	"database/sql"
	"strings"

	"sam-requests/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notificaciones (
			id, title, body, created_at,
			request_id, recipient_user_id,
			read, pushed
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
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

// Update solo voltea los flags: el contenido del aviso es inmutable.
func (r *NotificationsRepo) Update(ctx context.Context, n notifications.Notification) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notificaciones
		SET read = $2, pushed = $3
		WHERE id = $1
	`, n.ID, n.Read, n.Pushed)
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

	row := r.db.QueryRowContext(ctx, notificationSelect+` WHERE id = $1`, id)

	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return notifications.Notification{}, ErrNotFound
		}
		return notifications.Notification{}, err
	}
	return n, nil
}

func (r *NotificationsRepo) ListByRecipient(ctx context.Context, recipientUserID string) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, notificationSelect+`
		WHERE recipient_user_id = $1
		ORDER BY created_at DESC
	`, recipientUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *NotificationsRepo) ListUnreadByRequest(ctx context.Context, requestID, recipientUserID string) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, notificationSelect+`
		WHERE request_id = $1
		  AND recipient_user_id = $2
		  AND read = FALSE
		ORDER BY created_at DESC
	`, requestID, recipientUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *NotificationsRepo) ListUnreadUnpushed(ctx context.Context, recipientUserID string) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, notificationSelect+`
		WHERE recipient_user_id = $1
		  AND read = FALSE
		  AND pushed = FALSE
		ORDER BY created_at DESC
	`, recipientUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

const notificationSelect = `
	SELECT
		id, title, body, created_at,
		request_id, recipient_user_id,
		read, pushed
	FROM notificaciones
`

func scanNotification(row rowScanner) (notifications.Notification, error) {
	var n notifications.Notification
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Body,
		&n.CreatedAt,
		&n.RequestID,
		&n.RecipientUserID,
		&n.Read,
		&n.Pushed,
	); err != nil {
		return notifications.Notification{}, err
	}
	return n, nil
}

func collectNotifications(rows *sql.Rows) ([]notifications.Notification, error) {
	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
