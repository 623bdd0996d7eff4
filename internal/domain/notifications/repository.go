package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) error
	Update(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)
	ListByRecipient(ctx context.Context, recipientUserID string) ([]Notification, error)
	ListUnreadByRequest(ctx context.Context, requestID, recipientUserID string) ([]Notification, error)
	ListUnreadUnpushed(ctx context.Context, recipientUserID string) ([]Notification, error)
}
