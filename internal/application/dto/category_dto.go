package dto

import "github.com/ecolink/crud-clientes/internal/domain/entity"

// CategoryDTO categoría tal como la devuelve la API.
type CategoryDTO struct {
	ID       int64   `json:"id"`
	Campo    string  `json:"campo"`
	Valor    string  `json:"valor"`
	Color    *string `json:"color"`
	DeleteAt *string `json:"deleteAt"`
}

// OptionDTO opción de un campo gestionable.
type OptionDTO struct {
	Valor string  `json:"valor"`
	Color *string `json:"color"`
}

// OptionsResponse respuesta de GET /categorias?campo=.
type OptionsResponse struct {
	Options []OptionDTO `json:"options"`
}

// CreateCategoryRequest cuerpo de POST /categorias.
type CreateCategoryRequest struct {
	Campo string  `json:"campo"`
	Valor string  `json:"valor"`
	Color *string `json:"color,omitempty"`
}

// RenameCategoryRequest cuerpo de PUT /categorias.
type RenameCategoryRequest struct {
	Campo    string  `json:"campo"`
	OldValor string  `json:"oldValor"`
	NewValor string  `json:"newValor"`
	Color    *string `json:"color,omitempty"`
}

// DeleteCategoryRequest cuerpo de DELETE /categorias. DeleteAt es la fecha DD/MM/YYYY de la baja.
type DeleteCategoryRequest struct {
	Campo    string `json:"campo"`
	Valor    string `json:"valor"`
	DeleteAt string `json:"deleteAt"`
}

// CategorySchema esquema estricto de CategoryDTO.
var CategorySchema = Schema{
	{Name: "id", Kind: KindNumber},
	{Name: "campo", Kind: KindString},
	{Name: "valor", Kind: KindString},
	nullableString("color"),
	nullableString("deleteAt"),
}

// OptionsSchema esquema estricto de OptionsResponse.
var OptionsSchema = Schema{
	{Name: "options", Kind: KindArray, Items: Schema{
		{Name: "valor", Kind: KindString},
		nullableString("color"),
	}},
}

// FromCategory construye el DTO de c.
func FromCategory(c *entity.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Campo: string(c.Field), Valor: c.Value, Color: c.Color, DeleteAt: c.DeleteAt}
}

// ToEntity convierte el DTO a la categoría de dominio.
func (d *CategoryDTO) ToEntity() entity.Category {
	return entity.Category{ID: d.ID, Field: entity.Field(d.Campo), Value: d.Valor, Color: d.Color, DeleteAt: d.DeleteAt}
}

// ToOptions convierte la respuesta en opciones de dominio.
func (r *OptionsResponse) ToOptions() []entity.CategoryOption {
	out := make([]entity.CategoryOption, 0, len(r.Options))
	for _, o := range r.Options {
		out = append(out, entity.CategoryOption{Value: o.Valor, Color: o.Color})
	}
	return out
}
