// Package categorias administra los valores gestionables de cada campo del cliente.
// No controla permisos: quien lo invoca debe consultar permisos.Gate antes de mutar.
package categorias

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/fecha"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

// MsgInUse mensaje que reemplaza al del backend cuando la categoría está en uso.
const MsgInUse = "No se puede eliminar la categoría porque está en uso dentro de la tabla de clientes."

// Reloader recarga la colección de clientes tras renombrar o eliminar un valor.
type Reloader interface {
	LoadAll(ctx context.Context) error
}

// Registry opciones por campo gestionable, cacheadas tras cada lectura.
type Registry struct {
	gw      repository.CategoryGateway
	clients Reloader
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	options map[entity.Field][]entity.CategoryOption
	gen     map[entity.Field]uint64
	lastErr string
}

// NewRegistry construye el registro. clients puede ser nil.
func NewRegistry(gw repository.CategoryGateway, clients Reloader, log zerolog.Logger) *Registry {
	return &Registry{
		gw:      gw,
		clients: clients,
		log:     log,
		now:     time.Now,
		options: make(map[entity.Field][]entity.CategoryOption),
		gen:     make(map[entity.Field]uint64),
	}
}

// SetClock reemplaza el reloj usado para la fecha de baja.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// List obtiene las opciones de field y actualiza la caché. Una respuesta
// superada por una lectura posterior del mismo campo no se aplica.
func (r *Registry) List(ctx context.Context, field entity.Field) ([]entity.CategoryOption, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.gen[field]++
	gen := r.gen[field]
	r.mu.Unlock()

	opts, err := r.gw.ListOptions(ctx, field)
	if err != nil {
		r.log.Error().Err(err).Str("campo", string(field)).Msg("categorias: error al cargar opciones")
		return nil, fmt.Errorf("listar categorías de %s: %w", field, err)
	}

	r.mu.Lock()
	if r.gen[field] == gen {
		r.options[field] = opts
	} else {
		r.log.Debug().Str("campo", string(field)).Msg("categorias: respuesta descartada por lectura más reciente")
	}
	r.mu.Unlock()
	return cloneOptions(opts), nil
}

// LoadAll carga las opciones de todos los campos gestionables.
func (r *Registry) LoadAll(ctx context.Context) error {
	var errs []error
	for _, f := range entity.ManagedFields {
		if _, err := r.List(ctx, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options opciones cacheadas de field.
func (r *Registry) Options(field entity.Field) []entity.CategoryOption {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneOptions(r.options[field])
}

// LastError último mensaje de error de una mutación ("" si la última tuvo éxito).
func (r *Registry) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// ClearError descarta el último mensaje de error.
func (r *Registry) ClearError() {
	r.setError("")
}

// Create agrega value a field. Si el backend responde sin cuerpo se devuelve la categoría pedida.
func (r *Registry) Create(ctx context.Context, field entity.Field, value string, color *string) (*entity.Category, error) {
	value = strings.TrimSpace(value)
	if err := checkField(field); err != nil {
		return nil, err
	}
	if value == "" {
		return nil, requiredValue("valor")
	}
	cat, err := r.gw.Create(ctx, field, value, color)
	if err != nil {
		r.setError(domain.MessageOf(err))
		return nil, err
	}
	if cat == nil {
		cat = &entity.Category{Field: field, Value: value, Color: color}
	}
	r.log.Info().Str("campo", string(field)).Str("valor", value).Msg("categorias: valor creado")
	r.reloadField(ctx, field)
	r.setError("")
	return cat, nil
}

// Rename reemplaza oldValue por newValue. El backend migra los clientes; aquí sólo se recargan.
func (r *Registry) Rename(ctx context.Context, field entity.Field, oldValue, newValue string, color *string) (*entity.Category, error) {
	newValue = strings.TrimSpace(newValue)
	if err := checkField(field); err != nil {
		return nil, err
	}
	if newValue == "" {
		return nil, requiredValue("newValor")
	}
	cat, err := r.gw.Rename(ctx, field, oldValue, newValue, color)
	if err != nil {
		r.setError(domain.MessageOf(err))
		return nil, err
	}
	if cat == nil {
		cat = &entity.Category{Field: field, Value: newValue, Color: color}
	}
	r.log.Info().Str("campo", string(field)).Str("anterior", oldValue).Str("nuevo", newValue).
		Msg("categorias: valor renombrado")
	r.reloadClients(ctx)
	r.reloadField(ctx, field)
	r.setError("")
	return cat, nil
}

// Delete da de baja value con la fecha de hoy. Si está en uso devuelve un error
// ErrCategoryInUse con MsgInUse.
func (r *Registry) Delete(ctx context.Context, field entity.Field, value string) error {
	if err := checkField(field); err != nil {
		return err
	}
	deleteAt := fecha.Format(r.now())
	if err := r.gw.Delete(ctx, field, value, deleteAt); err != nil {
		if inUse(err) {
			err = inUseError(err)
		}
		r.setError(domain.MessageOf(err))
		return err
	}
	r.log.Info().Str("campo", string(field)).Str("valor", value).Str("deleteAt", deleteAt).
		Msg("categorias: valor eliminado")
	r.reloadClients(ctx)
	r.reloadField(ctx, field)
	r.setError("")
	return nil
}

// inUse detecta el rechazo por uso. El código estructurado es la vía principal;
// el texto "en uso"/"in use" se mantiene para backends que no envían código.
func inUse(err error) bool {
	if errors.Is(err, domain.ErrCategoryInUse) {
		return true
	}
	if !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrStatus) && !errors.Is(err, domain.ErrServer) {
		return false
	}
	fold := cases.Fold()
	for _, fe := range domain.FieldsOf(err) {
		msg := fold.String(fe.Message)
		if strings.Contains(msg, "en uso") || strings.Contains(msg, "in use") {
			return true
		}
	}
	return false
}

func inUseError(cause error) *domain.Error {
	e := &domain.Error{
		Kind:   domain.ErrCategoryInUse,
		Fields: []domain.FieldError{{Field: domain.FieldGeneral, Message: MsgInUse}},
		Cause:  cause,
	}
	var de *domain.Error
	if errors.As(cause, &de) {
		e.Status = de.Status
		e.Code = de.Code
	}
	return e
}

func (r *Registry) reloadField(ctx context.Context, field entity.Field) {
	if _, err := r.List(ctx, field); err != nil {
		r.log.Warn().Err(err).Str("campo", string(field)).Msg("categorias: no se pudo recargar el campo")
	}
}

func (r *Registry) reloadClients(ctx context.Context) {
	if r.clients == nil {
		return
	}
	if err := r.clients.LoadAll(ctx); err != nil {
		r.log.Warn().Err(err).Msg("categorias: no se pudo recargar clientes")
	}
}

func (r *Registry) setError(msg string) {
	r.mu.Lock()
	r.lastErr = msg
	r.mu.Unlock()
}

func checkField(f entity.Field) error {
	if f.IsManaged() {
		return nil
	}
	return domain.NewValidationError(domain.FieldError{
		Field:   "campo",
		Message: fmt.Sprintf("El campo %q no es gestionable", string(f)),
	})
}

func requiredValue(name string) error {
	return domain.NewValidationError(domain.FieldError{Field: name, Message: "El valor es obligatorio"})
}

func cloneOptions(in []entity.CategoryOption) []entity.CategoryOption {
	if in == nil {
		return nil
	}
	out := make([]entity.CategoryOption, len(in))
	copy(out, in)
	return out
}
