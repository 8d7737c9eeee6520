// Package auth implementa la autenticación del backend de desarrollo: login con bcrypt,
// tokens JWT y el flujo de solicitud, aprobación y verificación de cuentas.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
	"github.com/ecolink/crud-clientes/pkg/jwt"
)

// Mensajes de respuesta.
const (
	MsgInvalidCredentials = "Credenciales inválidas"
	MsgInactive           = "Cuenta inactiva"
	MsgNotVerified        = "Debes verificar tu email antes de iniciar sesión"
	MsgRegistered         = "Solicitud de registro enviada. Un administrador la revisará."
	MsgApproved           = "Solicitud aprobada. Se envió el email de verificación."
	MsgRejected           = "Solicitud rechazada"
	MsgVerified           = "Email verificado correctamente"
	MsgResent             = "Si la cuenta existe y no está verificada, se reenvió el email de verificación."
	MsgResetRequested     = "Si el email está registrado, recibirás instrucciones para restablecer la contraseña."
	MsgResetDone          = "Contraseña actualizada correctamente"
	MsgProfileUpdated     = "Perfil actualizado correctamente"
	MinPasswordLength     = 8
	resetTTL              = time.Hour
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Result salida de las operaciones de auth.
type Result struct {
	User      *entity.User
	Token     string
	Message   string
	RequestID int64
}

// AuthUseCase casos de uso de autenticación y gestión de cuentas.
type AuthUseCase struct {
	users    repository.UserRepository
	requests repository.RegistrationRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, requests repository.RegistrationRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, requests: requests, jwtCfg: jwtCfg, log: log, now: time.Now}
}

func fieldErr(kind error, field, msg string) *domain.Error {
	return &domain.Error{Kind: kind, Fields: []domain.FieldError{{Field: field, Message: msg}}}
}

func checkPassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return fieldErr(domain.ErrValidation, "password", fmt.Sprintf("La contraseña debe tener al menos %d caracteres", MinPasswordLength))
	}
	return nil
}

// EnsureAdmin crea un ADMIN activo y verificado si el email no existe. Lo usa el arranque del backend.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, name, password string) (*entity.User, error) {
	existing, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	u := &entity.User{
		Email: email, Name: name, Role: entity.RoleAdmin, Active: true, Verified: true,
		PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now,
	}
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Str("email", email).Msg("administrador inicial creado")
	return u, nil
}

// Login verifica email/password y emite un JWT.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := uc.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fieldErr(domain.ErrUnauthorized, domain.FieldAuth, MsgInvalidCredentials)
	}
	if !user.Active {
		return nil, fieldErr(domain.ErrForbidden, domain.FieldAuth, MsgInactive)
	}
	if !user.Verified {
		return nil, fieldErr(domain.ErrForbidden, domain.FieldAuth, MsgNotVerified)
	}
	return uc.session(user, "")
}

func (uc *AuthUseCase) session(user *entity.User, msg string) (*Result, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, string(user.Role), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, Token: token, Message: msg}, nil
}

// Register crea una solicitud pendiente. Falla si el email ya tiene cuenta o solicitud pendiente.
func (uc *AuthUseCase) Register(ctx context.Context, email, name string, role entity.Role) (*Result, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	var fields []domain.FieldError
	if email == "" || !strings.Contains(email, "@") {
		fields = append(fields, domain.FieldError{Field: "email", Message: "Email inválido"})
	}
	if name == "" {
		fields = append(fields, domain.FieldError{Field: "nombre", Message: "Nombre es obligatorio"})
	}
	if !role.Valid() {
		fields = append(fields, domain.FieldError{Field: "rol", Message: "Rol inválido"})
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields...)
	}
	if u, err := uc.users.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if u != nil {
		return nil, fieldErr(domain.ErrConflict, "email", "El email ya está registrado")
	}
	if r, err := uc.requests.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if r != nil && r.Pending() {
		return nil, fieldErr(domain.ErrConflict, "email", "Ya existe una solicitud pendiente para este email")
	}
	now := uc.now()
	req := &entity.RegistrationRequest{
		Email: email, Name: name, Role: role,
		VerificationToken: uuid.New().String(),
		CreatedAt:         now, UpdatedAt: now,
	}
	if err := uc.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("email", email).Int64("solicitud_id", req.ID).Msg("solicitud de registro creada")
	return &Result{Message: MsgRegistered, RequestID: req.ID}, nil
}

// ListRequests devuelve todas las solicitudes.
func (uc *AuthUseCase) ListRequests(ctx context.Context) ([]entity.RegistrationRequest, error) {
	return uc.requests.List(ctx)
}

func (uc *AuthUseCase) pendingRequest(ctx context.Context, id int64) (*entity.RegistrationRequest, error) {
	req, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if !req.Pending() {
		return nil, fieldErr(domain.ErrValidation, domain.FieldGeneral, "La solicitud ya fue resuelta")
	}
	return req, nil
}

// Approve crea la cuenta (sin verificar) con la contraseña inicial y "envía" el token de verificación.
func (uc *AuthUseCase) Approve(ctx context.Context, adminID, requestID int64, password string) (*Result, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	req, err := uc.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		Email: req.Email, Name: req.Name, Role: req.Role, Active: true,
		PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fieldErr(domain.ErrConflict, "email", "El email ya está registrado")
		}
		return nil, err
	}
	req.Approved = true
	req.AdminID = &adminID
	req.UpdatedAt = now
	if err := uc.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("email", req.Email).Str("token_verificacion", req.VerificationToken).
		Msg("solicitud aprobada; email de verificación")
	return &Result{User: user, Message: MsgApproved}, nil
}

// Reject cierra la solicitud con un motivo opcional.
func (uc *AuthUseCase) Reject(ctx context.Context, adminID, requestID int64, reason *string) (*Result, error) {
	req, err := uc.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	req.Rejected = true
	req.RejectionReason = reason
	req.AdminID = &adminID
	req.UpdatedAt = uc.now()
	if err := uc.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("email", req.Email).Msg("solicitud rechazada")
	return &Result{Message: MsgRejected}, nil
}

// VerifyEmail marca la cuenta como verificada y abre sesión.
func (uc *AuthUseCase) VerifyEmail(ctx context.Context, token string) (*Result, error) {
	invalid := fieldErr(domain.ErrValidation, domain.FieldGeneral, "Token de verificación inválido o expirado")
	if token == "" {
		return nil, invalid
	}
	req, err := uc.requests.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if req == nil || !req.Approved {
		return nil, invalid
	}
	user, err := uc.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if !user.Verified {
		user.Verified = true
		user.UpdatedAt = uc.now()
		if err := uc.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	uc.log.Info().Str("email", user.Email).Msg("email verificado")
	return uc.session(user, MsgVerified)
}

// ResendVerification regenera el token de verificación. La respuesta no revela si el email existe.
func (uc *AuthUseCase) ResendVerification(ctx context.Context, email string) (*Result, error) {
	req, err := uc.requests.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if req != nil && req.Approved {
		user, err := uc.users.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if user != nil && !user.Verified {
			req.VerificationToken = uuid.New().String()
			req.UpdatedAt = uc.now()
			if err := uc.requests.Update(ctx, req); err != nil {
				return nil, err
			}
			uc.log.Info().Str("email", req.Email).Str("token_verificacion", req.VerificationToken).
				Msg("email de verificación reenviado")
		}
	}
	return &Result{Message: MsgResent}, nil
}

// RequestPasswordReset emite un token de restablecimiento. La respuesta no revela si el email existe.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, email string) (*Result, error) {
	user, err := uc.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user != nil {
		reset := entity.PasswordReset{Token: uuid.New().String(), UserID: user.ID, ExpiresAt: uc.now().Add(resetTTL)}
		if err := uc.users.SaveReset(ctx, reset); err != nil {
			return nil, err
		}
		uc.log.Info().Str("email", user.Email).Str("token_reset", reset.Token).Msg("email de restablecimiento")
	}
	return &Result{Message: MsgResetRequested}, nil
}

// ConfirmPasswordReset consume el token y fija la nueva contraseña.
func (uc *AuthUseCase) ConfirmPasswordReset(ctx context.Context, token, password string) (*Result, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	invalid := fieldErr(domain.ErrValidation, domain.FieldGeneral, "Token de restablecimiento inválido o expirado")
	reset, err := uc.users.TakeReset(ctx, token)
	if err != nil {
		return nil, err
	}
	if reset == nil || uc.now().After(reset.ExpiresAt) {
		return nil, invalid
	}
	user, err := uc.users.GetByID(ctx, reset.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = uc.now()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("email", user.Email).Msg("contraseña restablecida")
	return &Result{Message: MsgResetDone}, nil
}

// Profile devuelve el usuario id.
func (uc *AuthUseCase) Profile(ctx context.Context, id int64) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// UpdateProfile cambia el nombre del usuario id.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, id int64, name string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldErr(domain.ErrValidation, "nombre", "Nombre es obligatorio")
	}
	user, err := uc.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.UpdatedAt = uc.now()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return &Result{User: user, Message: MsgProfileUpdated}, nil
}
