package repository

import (
	"context"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// AuthResult respuesta de las operaciones de autenticación. Cada operación
// completa sólo los campos que el backend devuelve.
type AuthResult struct {
	User      *entity.User
	Token     string
	Message   string
	RequestID int64
}

// AuthGateway define el puerto hacia los endpoints /auth de la API remota (DIP).
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, name string, role entity.Role) (*AuthResult, error)
	ListRequests(ctx context.Context) ([]entity.RegistrationRequest, error)
	ApproveRequest(ctx context.Context, requestID int64, password string) (*AuthResult, error)
	RejectRequest(ctx context.Context, requestID int64, reason *string) (*AuthResult, error)
	Profile(ctx context.Context) (*entity.User, error)
	UpdateProfile(ctx context.Context, name string) (*AuthResult, error)
	VerifyEmail(ctx context.Context, token string) (*AuthResult, error)
	ResendVerification(ctx context.Context, email string) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) (*AuthResult, error)
	ConfirmPasswordReset(ctx context.Context, token, password string) (*AuthResult, error)
}
