package notifications

import "time"

// Notification es un aviso dirigido a un usuario. Se crea exactamente una
// vez por transición y después solo se le voltean los flags read/pushed;
// nunca se borra.
type Notification struct {
	ID              string
	Title           string
	Body            string
	CreatedAt       time.Time
	RequestID       string // opcional, liga el aviso a una solicitud
	RecipientUserID string

	Read   bool
	Pushed bool // true solo tras un intento de envío exitoso
}
