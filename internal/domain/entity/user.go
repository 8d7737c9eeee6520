package entity

import "time"

// Role rol de un usuario del sistema.
type Role string

// Roles válidos para User.
const (
	RoleAdmin    Role = "ADMIN"
	RoleOperador Role = "OPERADOR"
	RoleLector   Role = "LECTOR"
)

// Roles todos los roles conocidos.
var Roles = []Role{RoleAdmin, RoleOperador, RoleLector}

// Valid indica si r es uno de los roles conocidos.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperador, RoleLector:
		return true
	}
	return false
}

// User representa un usuario del sistema.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      Role
	Active    bool
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// PasswordHash hash bcrypt; sólo lo usa el backend de desarrollo.
	PasswordHash string
}

// RegistrationRequest solicitud de alta de un usuario pendiente de aprobación por un ADMIN.
type RegistrationRequest struct {
	ID                int64
	Email             string
	Name              string
	Role              Role
	VerificationToken string
	Approved          bool
	Rejected          bool
	RejectionReason   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	AdminID           *int64
}

// Pending indica si la solicitud sigue sin resolver.
func (r *RegistrationRequest) Pending() bool {
	return !r.Approved && !r.Rejected
}

// PasswordReset token de restablecimiento de contraseña emitido por el backend de desarrollo.
type PasswordReset struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}
