package memoria

import (
	"context"
	"sort"
	"sync"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

type categoryKey struct {
	field entity.Field
	value string
}

// CategoryRepo categorías del backend de desarrollo. Las eliminadas se conservan con DeleteAt.
type CategoryRepo struct {
	mu     sync.RWMutex
	byKey  map[categoryKey]entity.Category
	nextID int64
}

// NewCategoryRepo crea el repositorio vacío.
func NewCategoryRepo() *CategoryRepo {
	return &CategoryRepo{byKey: make(map[categoryKey]entity.Category), nextID: 1}
}

// ListByField devuelve las categorías de field (incluidas las eliminadas) ordenadas por valor.
func (r *CategoryRepo) ListByField(_ context.Context, field entity.Field) ([]entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Category
	for k, c := range r.byKey {
		if k.field == field {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

func (r *CategoryRepo) Find(_ context.Context, field entity.Field, value string) (*entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byKey[categoryKey{field, value}]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Create asigna el ID. Falla con ErrConflict si el par (campo, valor) ya existe.
func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := categoryKey{c.Field, c.Value}
	if _, ok := r.byKey[k]; ok {
		return domain.ErrConflict
	}
	c.ID = r.nextID
	r.nextID++
	r.byKey[k] = *c
	return nil
}

// Update reemplaza la categoría con el mismo ID; el valor puede cambiar.
func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	newKey := categoryKey{c.Field, c.Value}
	for k, existing := range r.byKey {
		if existing.ID != c.ID {
			continue
		}
		if k != newKey {
			if _, taken := r.byKey[newKey]; taken {
				return domain.ErrConflict
			}
			delete(r.byKey, k)
		}
		r.byKey[newKey] = *c
		return nil
	}
	return domain.ErrNotFound
}
