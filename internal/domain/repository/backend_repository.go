package repository

import (
	"context"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// Puertos de persistencia del backend de desarrollo (cmd/mockapi). Los métodos de
// búsqueda devuelven (nil, nil) si no hay coincidencia.

// ClientRepository persistencia de clientes.
type ClientRepository interface {
	List(ctx context.Context) ([]entity.Client, error)
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
	// Create asigna el ID.
	Create(ctx context.Context, c *entity.Client) error
	Update(ctx context.Context, c *entity.Client) error
	Delete(ctx context.Context, id int64) error
	// CountByValue cuántos clientes tienen value en el campo gestionable field.
	CountByValue(ctx context.Context, field entity.Field, value string) (int, error)
	// ReplaceValue sustituye old por new en field y devuelve cuántos clientes cambiaron.
	ReplaceValue(ctx context.Context, field entity.Field, old, new string) (int, error)
}

// CategoryRepository persistencia de categorías, incluidas las marcadas como eliminadas.
type CategoryRepository interface {
	ListByField(ctx context.Context, field entity.Field) ([]entity.Category, error)
	Find(ctx context.Context, field entity.Field, value string) (*entity.Category, error)
	Create(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, c *entity.Category) error
}

// UserRepository persistencia de usuarios y tokens de restablecimiento.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	SaveReset(ctx context.Context, r entity.PasswordReset) error
	// TakeReset devuelve y elimina el token.
	TakeReset(ctx context.Context, token string) (*entity.PasswordReset, error)
}

// RegistrationRepository persistencia de solicitudes de registro.
type RegistrationRepository interface {
	List(ctx context.Context) ([]entity.RegistrationRequest, error)
	GetByID(ctx context.Context, id int64) (*entity.RegistrationRequest, error)
	FindByToken(ctx context.Context, token string) (*entity.RegistrationRequest, error)
	FindByEmail(ctx context.Context, email string) (*entity.RegistrationRequest, error)
	Create(ctx context.Context, r *entity.RegistrationRequest) error
	Update(ctx context.Context, r *entity.RegistrationRequest) error
}
