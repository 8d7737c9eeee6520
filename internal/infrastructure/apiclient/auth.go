package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var _ repository.AuthGateway = (*AuthAPI)(nil)

// AuthAPI implementa AuthGateway sobre /auth.
type AuthAPI struct {
	c *Client
}

// Login POST /auth/login.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*repository.AuthResult, error) {
	var out dto.LoginResponse
	path := "/auth/login"
	err := a.c.do(ctx, call{
		method: http.MethodPost, path: path, resource: "Usuario", public: true,
		body:     dto.LoginRequest{Email: email, Password: password},
		validate: dto.LoginSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return a.withUser(path, &out.Usuario, &repository.AuthResult{Token: out.Token})
}

// Register POST /auth/registro. No autentica.
func (a *AuthAPI) Register(ctx context.Context, email, name string, role entity.Role) (*repository.AuthResult, error) {
	var out dto.RegisterResponse
	err := a.c.do(ctx, call{
		method: http.MethodPost, path: "/auth/registro", resource: "Solicitud", public: true,
		body:     dto.RegisterRequest{Email: email, Nombre: name, Rol: string(role)},
		validate: dto.RegisterSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &repository.AuthResult{Message: out.Message, RequestID: out.SolicitudID}, nil
}

// ListRequests GET /auth/solicitudes (sólo ADMIN).
func (a *AuthAPI) ListRequests(ctx context.Context) ([]entity.RegistrationRequest, error) {
	var out []dto.RegistrationRequestDTO
	path := "/auth/solicitudes"
	err := a.c.do(ctx, call{
		method: http.MethodGet, path: path, resource: "Solicitudes",
		validate: dto.RegistrationRequestSchema.ValidateArray,
	}, &out)
	if err != nil {
		return nil, err
	}
	reqs := make([]entity.RegistrationRequest, 0, len(out))
	for i := range out {
		r, err := out[i].ToEntity()
		if err != nil {
			return nil, schemaError(path, err, a.c.log)
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

// ApproveRequest POST /auth/aprobar-solicitud.
func (a *AuthAPI) ApproveRequest(ctx context.Context, requestID int64, password string) (*repository.AuthResult, error) {
	var out dto.UserMessageResponse
	path := "/auth/aprobar-solicitud"
	err := a.c.do(ctx, call{
		method: http.MethodPost, path: path, resource: "Solicitud",
		body:     dto.ApproveRequest{SolicitudID: requestID, Password: password},
		validate: dto.UserMessageSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return a.withUser(path, &out.Usuario, &repository.AuthResult{Message: out.Message})
}

// RejectRequest POST /auth/rechazar-solicitud.
func (a *AuthAPI) RejectRequest(ctx context.Context, requestID int64, reason *string) (*repository.AuthResult, error) {
	return a.message(ctx, call{
		method: http.MethodPost, path: "/auth/rechazar-solicitud", resource: "Solicitud",
		body: dto.RejectRequest{SolicitudID: requestID, Motivo: reason},
	})
}

// Profile GET /auth/perfil.
func (a *AuthAPI) Profile(ctx context.Context) (*entity.User, error) {
	var out dto.UserDTO
	path := "/auth/perfil"
	err := a.c.do(ctx, call{
		method: http.MethodGet, path: path, resource: "Perfil",
		validate: dto.UserSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	u, err := out.ToEntity()
	if err != nil {
		return nil, schemaError(path, err, a.c.log)
	}
	return &u, nil
}

// UpdateProfile PUT /auth/perfil.
func (a *AuthAPI) UpdateProfile(ctx context.Context, name string) (*repository.AuthResult, error) {
	var out dto.UserMessageResponse
	path := "/auth/perfil"
	err := a.c.do(ctx, call{
		method: http.MethodPut, path: path, resource: "Perfil",
		body:     dto.UpdateProfileRequest{Nombre: name},
		validate: dto.UserMessageSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return a.withUser(path, &out.Usuario, &repository.AuthResult{Message: out.Message})
}

// VerifyEmail GET /auth/verificar-email?token=. Devuelve una sesión como Login.
func (a *AuthAPI) VerifyEmail(ctx context.Context, token string) (*repository.AuthResult, error) {
	var out dto.LoginResponse
	path := "/auth/verificar-email?token=" + url.QueryEscape(token)
	err := a.c.do(ctx, call{
		method: http.MethodGet, path: path, resource: "Verificación", public: true,
		validate: dto.VerifyEmailSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return a.withUser(path, &out.Usuario, &repository.AuthResult{Token: out.Token, Message: out.Message})
}

// ResendVerification POST /auth/reenviar-verificacion.
func (a *AuthAPI) ResendVerification(ctx context.Context, email string) (*repository.AuthResult, error) {
	return a.message(ctx, call{
		method: http.MethodPost, path: "/auth/reenviar-verificacion", resource: "Reenvío", public: true,
		body: dto.EmailRequest{Email: email},
	})
}

// RequestPasswordReset POST /auth/reset-password.
func (a *AuthAPI) RequestPasswordReset(ctx context.Context, email string) (*repository.AuthResult, error) {
	return a.message(ctx, call{
		method: http.MethodPost, path: "/auth/reset-password", resource: "Restablecimiento", public: true,
		body: dto.EmailRequest{Email: email},
	})
}

// ConfirmPasswordReset POST /auth/reset-password/confirm.
func (a *AuthAPI) ConfirmPasswordReset(ctx context.Context, token, password string) (*repository.AuthResult, error) {
	return a.message(ctx, call{
		method: http.MethodPost, path: "/auth/reset-password/confirm", resource: "Confirmación", public: true,
		body: dto.ConfirmResetRequest{Token: token, Password: password},
	})
}

func (a *AuthAPI) message(ctx context.Context, cl call) (*repository.AuthResult, error) {
	var out dto.MessageResponse
	cl.validate = dto.MessageSchema.Validate
	if err := a.c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &repository.AuthResult{Message: out.Message}, nil
}

func (a *AuthAPI) withUser(path string, d *dto.UserDTO, res *repository.AuthResult) (*repository.AuthResult, error) {
	u, err := d.ToEntity()
	if err != nil {
		return nil, schemaError(path, err, a.c.log)
	}
	res.User = &u
	return res, nil
}
