package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var _ repository.CategoryGateway = (*CategoriesAPI)(nil)

// CategoriesAPI implementa CategoryGateway sobre /categorias.
type CategoriesAPI struct {
	c *Client
}

// ListOptions GET /categorias?campo=.
func (a *CategoriesAPI) ListOptions(ctx context.Context, field entity.Field) ([]entity.CategoryOption, error) {
	var out dto.OptionsResponse
	err := a.c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/categorias?campo=" + url.QueryEscape(string(field)),
		resource: "Categorías",
		validate: dto.OptionsSchema.Validate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.ToOptions(), nil
}

// Create POST /categorias. Devuelve (nil, nil) si el backend responde sin cuerpo.
func (a *CategoriesAPI) Create(ctx context.Context, field entity.Field, value string, color *string) (*entity.Category, error) {
	return a.mutate(ctx, http.MethodPost, dto.CreateCategoryRequest{Campo: string(field), Valor: value, Color: color})
}

// Rename PUT /categorias.
func (a *CategoriesAPI) Rename(ctx context.Context, field entity.Field, oldValue, newValue string, color *string) (*entity.Category, error) {
	return a.mutate(ctx, http.MethodPut, dto.RenameCategoryRequest{
		Campo: string(field), OldValor: oldValue, NewValor: newValue, Color: color,
	})
}

// Delete DELETE /categorias con la fecha de baja.
func (a *CategoriesAPI) Delete(ctx context.Context, field entity.Field, value, deleteAt string) error {
	return a.c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/categorias",
		body:     dto.DeleteCategoryRequest{Campo: string(field), Valor: value, DeleteAt: deleteAt},
		resource: "Categoría",
	}, nil)
}

func (a *CategoriesAPI) mutate(ctx context.Context, method string, body any) (*entity.Category, error) {
	var out *dto.CategoryDTO
	err := a.c.do(ctx, call{
		method:     method,
		path:       "/categorias",
		body:       body,
		resource:   "Categoría",
		validate:   dto.CategorySchema.Validate,
		allowEmpty: true,
	}, &out)
	if err != nil || out == nil {
		return nil, err
	}
	cat := out.ToEntity()
	return &cat, nil
}
