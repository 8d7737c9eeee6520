package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/categorias"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/fecha"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryUseCase gestión de valores de campos gestionables del backend de desarrollo.
// Las bajas son lógicas (DeleteAt) y se rechazan si algún cliente usa el valor.
type CategoryUseCase struct {
	categories repository.CategoryRepository
	clients    repository.ClientRepository
	log        zerolog.Logger
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(categories repository.CategoryRepository, clients repository.ClientRepository, log zerolog.Logger) *CategoryUseCase {
	return &CategoryUseCase{categories: categories, clients: clients, log: log}
}

func fieldError(field, msg string) error {
	return domain.NewValidationError(domain.FieldError{Field: field, Message: msg})
}

func checkField(field entity.Field) error {
	if !field.IsManaged() {
		return fieldError("campo", fmt.Sprintf("El campo %q no es gestionable", field))
	}
	return nil
}

func checkColor(color *string) error {
	if color != nil && *color != "" && !colorPattern.MatchString(*color) {
		return fieldError("color", "El color debe tener el formato #RRGGBB")
	}
	return nil
}

func normColor(color *string) *string {
	if color == nil || *color == "" {
		return nil
	}
	return color
}

// Options valores vigentes del campo, ordenados.
func (uc *CategoryUseCase) Options(ctx context.Context, field entity.Field) ([]entity.CategoryOption, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	cats, err := uc.categories.ListByField(ctx, field)
	if err != nil {
		return nil, err
	}
	out := make([]entity.CategoryOption, 0, len(cats))
	for i := range cats {
		if !cats[i].Deleted() {
			out = append(out, cats[i].Option())
		}
	}
	return out, nil
}

// Create da de alta un valor. Si existía con baja lógica se reactiva.
func (uc *CategoryUseCase) Create(ctx context.Context, field entity.Field, value string, color *string) (*entity.Category, error) {
	value = strings.TrimSpace(value)
	if err := checkField(field); err != nil {
		return nil, err
	}
	if value == "" {
		return nil, fieldError("valor", "El valor es obligatorio")
	}
	if err := checkColor(color); err != nil {
		return nil, err
	}
	existing, err := uc.categories.Find(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.Deleted() {
			return nil, &domain.Error{Kind: domain.ErrConflict, Fields: []domain.FieldError{{Field: "valor", Message: "El valor ya existe"}}}
		}
		existing.DeleteAt = nil
		existing.Color = normColor(color)
		if err := uc.categories.Update(ctx, existing); err != nil {
			return nil, err
		}
		uc.log.Info().Str("campo", string(field)).Str("valor", value).Msg("categoría reactivada")
		return existing, nil
	}
	cat := &entity.Category{Field: field, Value: value, Color: normColor(color)}
	if err := uc.categories.Create(ctx, cat); err != nil {
		return nil, err
	}
	uc.log.Info().Str("campo", string(field)).Str("valor", value).Msg("categoría creada")
	return cat, nil
}

// Rename cambia el valor (y el color) y migra los clientes que usaban el valor anterior.
func (uc *CategoryUseCase) Rename(ctx context.Context, field entity.Field, oldValue, newValue string, color *string) (*entity.Category, error) {
	newValue = strings.TrimSpace(newValue)
	if err := checkField(field); err != nil {
		return nil, err
	}
	if newValue == "" {
		return nil, fieldError("newValor", "El valor es obligatorio")
	}
	if err := checkColor(color); err != nil {
		return nil, err
	}
	cat, err := uc.categories.Find(ctx, field, oldValue)
	if err != nil {
		return nil, err
	}
	if cat == nil || cat.Deleted() {
		return nil, domain.ErrNotFound
	}
	if newValue != oldValue {
		taken, err := uc.categories.Find(ctx, field, newValue)
		if err != nil {
			return nil, err
		}
		if taken != nil && !taken.Deleted() {
			return nil, &domain.Error{Kind: domain.ErrConflict, Fields: []domain.FieldError{{Field: "newValor", Message: "El valor ya existe"}}}
		}
		if taken != nil {
			// El valor nuevo sólo existía como baja lógica: se descarta para liberar el par.
			taken.Value = taken.Value + "#" + fmt.Sprint(taken.ID)
			if err := uc.categories.Update(ctx, taken); err != nil {
				return nil, err
			}
		}
	}
	cat.Value = newValue
	cat.Color = normColor(color)
	if err := uc.categories.Update(ctx, cat); err != nil {
		return nil, err
	}
	migrated := 0
	if newValue != oldValue {
		if migrated, err = uc.clients.ReplaceValue(ctx, field, oldValue, newValue); err != nil {
			return nil, fmt.Errorf("migrar clientes: %w", err)
		}
	}
	uc.log.Info().Str("campo", string(field)).Str("anterior", oldValue).Str("nuevo", newValue).
		Int("clientes", migrated).Msg("categoría renombrada")
	return cat, nil
}

// Delete marca el valor con la fecha de baja. Falla con ErrCategoryInUse si algún cliente lo usa.
func (uc *CategoryUseCase) Delete(ctx context.Context, field entity.Field, value, deleteAt string) error {
	if err := checkField(field); err != nil {
		return err
	}
	if !fecha.Valid(deleteAt) {
		return fieldError("deleteAt", "La fecha de baja debe tener el formato DD/MM/YYYY")
	}
	cat, err := uc.categories.Find(ctx, field, value)
	if err != nil {
		return err
	}
	if cat == nil || cat.Deleted() {
		return domain.ErrNotFound
	}
	n, err := uc.clients.CountByValue(ctx, field, value)
	if err != nil {
		return err
	}
	if n > 0 {
		uc.log.Info().Str("campo", string(field)).Str("valor", value).Int("clientes", n).Msg("baja rechazada: categoría en uso")
		return &domain.Error{Kind: domain.ErrCategoryInUse, Fields: []domain.FieldError{{Field: domain.FieldGeneral, Message: categorias.MsgInUse}}}
	}
	cat.DeleteAt = &deleteAt
	if err := uc.categories.Update(ctx, cat); err != nil {
		return err
	}
	uc.log.Info().Str("campo", string(field)).Str("valor", value).Str("delete_at", deleteAt).Msg("categoría dada de baja")
	return nil
}
