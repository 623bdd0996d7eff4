package users

// Role define los roles conocidos del sistema.
// docente levanta solicitudes; los roles de servicio las atienden;
// admin puede forzar cualquier estado.
type Role string

const (
	RoleDocente            Role = "docente"
	RoleAdmin              Role = "admin"
	RoleSalud              Role = "salud"
	RoleServiciosGenerales Role = "servicios_generales"
	RoleSoporte            Role = "soporte"
	RoleSeguridad          Role = "seguridad"
)

// ServiceRoles son los roles acotados a un servicio concreto.
func ServiceRoles() []Role {
	return []Role{RoleSalud, RoleServiciosGenerales, RoleSoporte, RoleSeguridad}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) IsRequester() bool {
	return r == RoleDocente
}

func (r Role) IsServiceRole() bool {
	switch r {
	case RoleSalud, RoleServiciosGenerales, RoleSoporte, RoleSeguridad:
		return true
	default:
		return false
	}
}

// User es el perfil mínimo que este subsistema necesita leer.
// La identidad la administra un colaborador externo; acá solo se
// persiste el pushToken que la app registró.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	PushToken string
}
