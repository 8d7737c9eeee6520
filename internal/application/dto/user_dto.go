package dto

import (
	"fmt"
	"time"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// UserDTO usuario tal como lo devuelve la API (sin password).
type UserDTO struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Nombre     string `json:"nombre"`
	Rol        string `json:"rol"`
	Activo     bool   `json:"activo"`
	Verificado bool   `json:"verificado"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse salida de login y de verificación de email.
type LoginResponse struct {
	Usuario UserDTO `json:"usuario"`
	Token   string  `json:"token"`
	Message string  `json:"message,omitempty"`
}

// RegisterRequest solicitud de alta (no autentica).
type RegisterRequest struct {
	Email  string `json:"email"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
}

// RegisterResponse salida de registro.
type RegisterResponse struct {
	Message     string `json:"message"`
	SolicitudID int64  `json:"solicitudId"`
}

// RegistrationRequestDTO solicitud de registro pendiente.
type RegistrationRequestDTO struct {
	ID                int64   `json:"id"`
	Email             string  `json:"email"`
	Nombre            string  `json:"nombre"`
	Rol               string  `json:"rol"`
	TokenVerificacion string  `json:"tokenVerificacion"`
	Aprobada          bool    `json:"aprobada"`
	Rechazada         bool    `json:"rechazada"`
	MotivoRechazo     *string `json:"motivoRechazo"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
	AdminID           *int64  `json:"adminId"`
}

// ApproveRequest cuerpo de aprobar-solicitud.
type ApproveRequest struct {
	SolicitudID int64  `json:"solicitudId"`
	Password    string `json:"password"`
}

// RejectRequest cuerpo de rechazar-solicitud.
type RejectRequest struct {
	SolicitudID int64   `json:"solicitudId"`
	Motivo      *string `json:"motivo,omitempty"`
}

// UserMessageResponse mensaje junto al usuario afectado (aprobación, perfil).
type UserMessageResponse struct {
	Message string  `json:"message"`
	Usuario UserDTO `json:"usuario"`
}

// UpdateProfileRequest cuerpo de PUT /auth/perfil.
type UpdateProfileRequest struct {
	Nombre string `json:"nombre"`
}

// EmailRequest cuerpo con sólo el email (reenvío de verificación, reset de password).
type EmailRequest struct {
	Email string `json:"email"`
}

// ConfirmResetRequest cuerpo de reset-password/confirm.
type ConfirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// UserSchema esquema estricto de UserDTO.
var UserSchema = Schema{
	{Name: "id", Kind: KindNumber},
	{Name: "email", Kind: KindString},
	{Name: "nombre", Kind: KindString},
	{Name: "rol", Kind: KindString},
	{Name: "activo", Kind: KindBool},
	{Name: "verificado", Kind: KindBool},
	{Name: "createdAt", Kind: KindString},
	{Name: "updatedAt", Kind: KindString},
}

// LoginSchema esquema de LoginResponse.
var LoginSchema = Schema{
	{Name: "usuario", Kind: KindObject, Object: UserSchema},
	{Name: "token", Kind: KindString},
}

// VerifyEmailSchema esquema de la respuesta de verificar-email.
var VerifyEmailSchema = Schema{
	{Name: "usuario", Kind: KindObject, Object: UserSchema},
	{Name: "message", Kind: KindString},
	{Name: "token", Kind: KindString},
}

// RegisterSchema esquema de RegisterResponse.
var RegisterSchema = Schema{
	{Name: "message", Kind: KindString},
	{Name: "solicitudId", Kind: KindNumber},
}

// UserMessageSchema esquema de UserMessageResponse.
var UserMessageSchema = Schema{
	{Name: "message", Kind: KindString},
	{Name: "usuario", Kind: KindObject, Object: UserSchema},
}

// RegistrationRequestSchema esquema de RegistrationRequestDTO.
var RegistrationRequestSchema = Schema{
	{Name: "id", Kind: KindNumber},
	{Name: "email", Kind: KindString},
	{Name: "nombre", Kind: KindString},
	{Name: "rol", Kind: KindString},
	{Name: "tokenVerificacion", Kind: KindString},
	{Name: "aprobada", Kind: KindBool},
	{Name: "rechazada", Kind: KindBool},
	nullableString("motivoRechazo"),
	{Name: "createdAt", Kind: KindString},
	{Name: "updatedAt", Kind: KindString},
	{Name: "adminId", Kind: KindNumber, Nullable: true},
}

// FromUser construye el DTO de u.
func FromUser(u *entity.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Nombre:     u.Name,
		Rol:        string(u.Role),
		Activo:     u.Active,
		Verificado: u.Verified,
		CreatedAt:  formatTime(u.CreatedAt),
		UpdatedAt:  formatTime(u.UpdatedAt),
	}
}

// ToEntity convierte el DTO al usuario de dominio. Un rol desconocido no cumple el esquema.
func (d *UserDTO) ToEntity() (entity.User, error) {
	role := entity.Role(d.Rol)
	if !role.Valid() {
		return entity.User{}, fmt.Errorf("%w: rol %q desconocido", ErrSchemaMismatch, d.Rol)
	}
	return entity.User{
		ID:        d.ID,
		Email:     d.Email,
		Name:      d.Nombre,
		Role:      role,
		Active:    d.Activo,
		Verified:  d.Verificado,
		CreatedAt: parseTime(d.CreatedAt),
		UpdatedAt: parseTime(d.UpdatedAt),
	}, nil
}

// FromRegistrationRequest construye el DTO de r.
func FromRegistrationRequest(r *entity.RegistrationRequest) RegistrationRequestDTO {
	return RegistrationRequestDTO{
		ID:                r.ID,
		Email:             r.Email,
		Nombre:            r.Name,
		Rol:               string(r.Role),
		TokenVerificacion: r.VerificationToken,
		Aprobada:          r.Approved,
		Rechazada:         r.Rejected,
		MotivoRechazo:     r.RejectionReason,
		CreatedAt:         formatTime(r.CreatedAt),
		UpdatedAt:         formatTime(r.UpdatedAt),
		AdminID:           r.AdminID,
	}
}

// ToEntity convierte el DTO a la solicitud de dominio.
func (d *RegistrationRequestDTO) ToEntity() (entity.RegistrationRequest, error) {
	role := entity.Role(d.Rol)
	if !role.Valid() {
		return entity.RegistrationRequest{}, fmt.Errorf("%w: rol %q desconocido", ErrSchemaMismatch, d.Rol)
	}
	return entity.RegistrationRequest{
		ID:                d.ID,
		Email:             d.Email,
		Name:              d.Nombre,
		Role:              role,
		VerificationToken: d.TokenVerificacion,
		Approved:          d.Aprobada,
		Rejected:          d.Rechazada,
		RejectionReason:   d.MotivoRechazo,
		CreatedAt:         parseTime(d.CreatedAt),
		UpdatedAt:         parseTime(d.UpdatedAt),
		AdminID:           d.AdminID,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime acepta RFC3339; cualquier otro texto deja la fecha en cero.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
