package push

import "context"

// Message es un aviso push para un token registrado.
// Data viaja como objeto JSON arbitrario (p.ej. {"requestId": "..."}).
type Message struct {
	To    string
	Title string
	Body  string
	Data  map[string]string
}

// Sender entrega mensajes push a través de un transporte externo.
// Un envío es un único intento: sin reintentos ni colas internas.
type Sender interface {
	Send(ctx context.Context, msgs []Message) error
}
