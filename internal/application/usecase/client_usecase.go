package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/clientes"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

// ClientUseCase CRUD de clientes del backend de desarrollo. Valida igual que el cliente.
type ClientUseCase struct {
	repo repository.ClientRepository
	log  zerolog.Logger
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, log zerolog.Logger) *ClientUseCase {
	return &ClientUseCase{repo: repo, log: log}
}

// List devuelve todos los clientes.
func (uc *ClientUseCase) List(ctx context.Context) ([]entity.Client, error) {
	return uc.repo.List(ctx)
}

// GetByID devuelve el cliente o un error ErrNotFound.
func (uc *ClientUseCase) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Create valida y persiste un cliente nuevo. localidad siempre queda nula.
func (uc *ClientUseCase) Create(ctx context.Context, c *entity.Client) (*entity.Client, error) {
	if errs := clientes.Validate(c); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	c.Locality = nil
	if c.New == nil {
		nuevo := true
		c.New = &nuevo
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("crear cliente: %w", err)
	}
	uc.log.Info().Int64("cliente_id", c.ID).Str("zona", c.Zone).Msg("cliente creado")
	return c, nil
}

// Update reemplaza el registro completo del cliente id.
func (uc *ClientUseCase) Update(ctx context.Context, id int64, c *entity.Client) (*entity.Client, error) {
	if errs := clientes.Validate(c); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	c.ID = id
	c.Locality = nil
	if err := uc.repo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("actualizar cliente %d: %w", id, err)
	}
	uc.log.Info().Int64("cliente_id", id).Msg("cliente actualizado")
	return c, nil
}

// Delete elimina el cliente id.
func (uc *ClientUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("eliminar cliente %d: %w", id, err)
	}
	uc.log.Info().Int64("cliente_id", id).Msg("cliente eliminado")
	return nil
}
