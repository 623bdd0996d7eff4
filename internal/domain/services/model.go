package services

import "time"

// ServiceDef es un servicio del catálogo (enfermería, soporte, seguridad...).
// El catálogo lo administra un colaborador externo: desde este subsistema
// solo se lee, salvo la resolución rol→servicio que hace visibility.
type ServiceDef struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
}
