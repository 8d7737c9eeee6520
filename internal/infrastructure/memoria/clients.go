package memoria

import (
	"context"
	"sort"
	"sync"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo clientes del backend de desarrollo. Las copias devueltas comparten los
// punteros de campos opcionales; entity.Client siempre los reemplaza en vez de mutarlos.
type ClientRepo struct {
	mu     sync.RWMutex
	byID   map[int64]entity.Client
	nextID int64
}

// NewClientRepo crea el repositorio vacío.
func NewClientRepo() *ClientRepo {
	return &ClientRepo{byID: make(map[int64]entity.Client), nextID: 1}
}

// List devuelve los clientes ordenados por ID.
func (r *ClientRepo) List(_ context.Context) ([]entity.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ClientRepo) GetByID(_ context.Context, id int64) (*entity.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	r.byID[c.ID] = *c
	return nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[c.ID] = *c
	return nil
}

func (r *ClientRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ClientRepo) CountByValue(_ context.Context, field entity.Field, value string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.byID {
		if v, ok := c.Value(field); ok && v == value {
			n++
		}
	}
	return n, nil
}

func (r *ClientRepo) ReplaceValue(_ context.Context, field entity.Field, old, new string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, c := range r.byID {
		if c.ReplaceManaged(field, old, new) {
			r.byID[id] = c
			n++
		}
	}
	return n, nil
}
