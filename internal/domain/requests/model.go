package requests

import "time"

// State es el estado de una solicitud.
// Avanza pending -> taken -> done; solo un admin puede saltarse el orden.
// @Enum pending, taken, done
type State string

const (
	StatePending State = "pending"
	StateTaken   State = "taken"
	StateDone    State = "done"
)

func (s State) Valid() bool {
	switch s {
	case StatePending, StateTaken, StateDone:
		return true
	default:
		return false
	}
}

// Source indica cómo se originó la solicitud.
type Source string

const (
	SourceApp Source = "app"
	SourceQR  Source = "qr"
)

// Request es una solicitud de servicio levantada por un docente.
// Invariante: AgentID vacío sii State == pending (salvo override admin,
// que puede dejar estados adelantados sin agente).
type Request struct {
	ID          string
	ServiceID   string
	RoomID      string // sala, texto libre (viene del QR o ingreso manual)
	RequesterID string
	CreatedAt   time.Time

	State State

	Comment   string // comentario del docente al crear
	Note      string // observación del agente al tomar
	FinalNote string // mensaje final del agente al completar

	AgentID string // se setea en take; inmutable después salvo admin
	Source  Source
}
