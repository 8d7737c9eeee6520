package repository

import (
	"context"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// CategoryGateway define el puerto hacia la API remota de categorías (DIP).
// Create y Rename pueden devolver (nil, nil) cuando el backend responde sin cuerpo.
type CategoryGateway interface {
	ListOptions(ctx context.Context, field entity.Field) ([]entity.CategoryOption, error)
	Create(ctx context.Context, field entity.Field, value string, color *string) (*entity.Category, error)
	Rename(ctx context.Context, field entity.Field, oldValue, newValue string, color *string) (*entity.Category, error)
	Delete(ctx context.Context, field entity.Field, value, deleteAt string) error
}
