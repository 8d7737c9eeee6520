// Package clientes mantiene la colección de clientes y sincroniza altas, ediciones
// y bajas con la API remota.
package clientes

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

// Store colección autoritativa de clientes más el borrador de alta y el cliente en edición.
type Store struct {
	gw  repository.ClientGateway
	log zerolog.Logger

	mu       sync.RWMutex
	clients  []entity.Client
	loading  int
	gen      uint64
	draft    entity.Client
	editing  *entity.Client
}

// NewStore construye el store con un borrador vacío.
func NewStore(gw repository.ClientGateway, log zerolog.Logger) *Store {
	return &Store{gw: gw, log: log, draft: entity.NewDraft()}
}

// LoadAll trae la colección completa. Si otra carga empezó después, esta respuesta se descarta.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading++
	s.mu.Unlock()

	list, err := s.gw.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if err != nil {
		s.log.Error().Err(err).Msg("clientes: error al cargar clientes")
		return fmt.Errorf("cargar clientes: %w", err)
	}
	if gen != s.gen {
		s.log.Debug().Uint64("generacion", gen).Msg("clientes: respuesta descartada por carga más reciente")
		return nil
	}
	s.clients = list
	return nil
}

// Clients copia de la colección actual.
func (s *Store) Clients() []entity.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Client, len(s.clients))
	copy(out, s.clients)
	return out
}

// Loading indica si hay una carga en curso.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Get obtiene un cliente por id desde la API.
func (s *Store) Get(ctx context.Context, id int64) (*entity.Client, error) {
	c, err := s.gw.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente %d: %w", id, err)
	}
	return c, nil
}

// Create valida draft y lo da de alta. Con datos inválidos no hay llamada de red.
// Tras el alta el borrador vuelve a los valores por defecto y se recarga la colección.
func (s *Store) Create(ctx context.Context, draft entity.Client) (*entity.Client, error) {
	if errs := Validate(&draft); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	created, err := s.gw.Create(ctx, &draft)
	if err != nil {
		s.log.Warn().Err(err).Msg("clientes: alta rechazada")
		return nil, err
	}
	s.log.Info().Int64("cliente_id", created.ID).Msg("clientes: cliente creado")

	s.mu.Lock()
	s.draft = entity.NewDraft()
	s.mu.Unlock()
	s.reload(ctx)
	return created, nil
}

// Update valida y reemplaza el registro completo id. Termina la edición en curso.
func (s *Store) Update(ctx context.Context, id int64, client entity.Client) (*entity.Client, error) {
	if errs := Validate(&client); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	client.ID = id
	updated, err := s.gw.Update(ctx, id, &client)
	if err != nil {
		s.log.Warn().Err(err).Int64("cliente_id", id).Msg("clientes: edición rechazada")
		return nil, err
	}
	s.log.Info().Int64("cliente_id", id).Msg("clientes: cliente actualizado")

	s.mu.Lock()
	s.editing = nil
	s.mu.Unlock()
	s.reload(ctx)
	return updated, nil
}

// Delete elimina el cliente id, lo quita de la colección local y recarga.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.gw.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("cliente_id", id).Msg("clientes: baja rechazada")
		return err
	}
	s.mu.Lock()
	for i := range s.clients {
		if s.clients[i].ID == id {
			s.clients = append(s.clients[:i:i], s.clients[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.log.Info().Int64("cliente_id", id).Msg("clientes: cliente eliminado")
	s.reload(ctx)
	return nil
}

// StartCreate reinicia el borrador de alta.
func (s *Store) StartCreate() {
	s.mu.Lock()
	s.draft = entity.NewDraft()
	s.mu.Unlock()
}

// Draft borrador de alta actual.
func (s *Store) Draft() entity.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// SetDraft reemplaza el borrador de alta.
func (s *Store) SetDraft(c entity.Client) {
	s.mu.Lock()
	s.draft = c
	s.mu.Unlock()
}

// StartEdit marca c como cliente en edición. La localidad no se edita.
func (s *Store) StartEdit(c entity.Client) {
	c.Locality = nil
	s.mu.Lock()
	s.editing = &c
	s.mu.Unlock()
}

// CancelEdit termina la edición sin guardar.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	s.editing = nil
	s.mu.Unlock()
}

// Editing cliente en edición, si lo hay.
func (s *Store) Editing() (entity.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editing == nil {
		return entity.Client{}, false
	}
	return *s.editing, true
}

func (s *Store) reload(ctx context.Context) {
	if err := s.LoadAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("clientes: no se pudo recargar tras la operación")
	}
}
