package repository

import (
	"context"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// ClientGateway define el puerto hacia la API remota de clientes (DIP).
type ClientGateway interface {
	List(ctx context.Context) ([]entity.Client, error)
	Get(ctx context.Context, id int64) (*entity.Client, error)
	Create(ctx context.Context, client *entity.Client) (*entity.Client, error)
	Update(ctx context.Context, id int64, client *entity.Client) (*entity.Client, error)
	Delete(ctx context.Context, id int64) error
}
