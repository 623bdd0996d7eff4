package auth

// Claims representa la información extraída del token.
// El rol viene del proveedor de identidad (colaborador externo);
// este subsistema solo lo interpreta, nunca lo administra.
type Claims struct {
	UserID string
	Email  string
	Role   string
}
