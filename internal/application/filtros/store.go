// Package filtros mantiene el estado de filtros de la tabla de clientes y lo aplica
// sobre la colección en memoria.
package filtros

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/fecha"
)

// Range rango de fechas DD/MM/YYYY, ambos extremos inclusivos. Un extremo vacío no restringe.
type Range struct {
	Desde string
	Hasta string
}

// Active indica si el rango restringe algo.
func (r Range) Active() bool {
	return r.Desde != "" || r.Hasta != ""
}

// State copia del estado de filtros. Los valores categóricos van ordenados.
type State struct {
	Categorical map[entity.Field][]string
	Dates       map[entity.Field]Range
}

// Store filtros categóricos por campo gestionable y rangos de fecha por campo de fecha.
// El estado siempre tiene entrada para todos los campos filtrables.
type Store struct {
	mu          sync.RWMutex
	categorical map[entity.Field]map[string]struct{}
	dates       map[entity.Field]Range
	log         zerolog.Logger
}

// NewStore crea un store sin filtros activos.
func NewStore(log zerolog.Logger) *Store {
	s := &Store{
		categorical: make(map[entity.Field]map[string]struct{}, len(entity.ManagedFields)),
		dates:       make(map[entity.Field]Range, len(entity.DateFields)),
		log:         log,
	}
	for _, f := range entity.ManagedFields {
		s.categorical[f] = map[string]struct{}{}
	}
	for _, f := range entity.DateFields {
		s.dates[f] = Range{}
	}
	return s
}

// SetCategorical agrega (included) o quita value del conjunto aceptado de field.
func (s *Store) SetCategorical(field entity.Field, value string, included bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.categorical[field]
	if !ok {
		return unknownField(field)
	}
	if included {
		set[value] = struct{}{}
	} else {
		delete(set, value)
	}
	return nil
}

// SetDateRange aplica el rango si active y algún extremo no está vacío; si no, lo limpia.
func (s *Store) SetDateRange(field entity.Field, r Range, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dates[field]; !ok {
		return unknownField(field)
	}
	r = Range{Desde: strings.TrimSpace(r.Desde), Hasta: strings.TrimSpace(r.Hasta)}
	if !active || !r.Active() {
		r = Range{}
	}
	s.dates[field] = r
	return nil
}

// ClearAll vacía los filtros categóricos. Los rangos de fecha se mantienen.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for f := range s.categorical {
		s.categorical[f] = map[string]struct{}{}
	}
}

// ClearDates limpia todos los rangos de fecha.
func (s *Store) ClearDates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for f := range s.dates {
		s.dates[f] = Range{}
	}
}

// ActiveCount cantidad de campos con filtro activo.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, set := range s.categorical {
		if len(set) > 0 {
			n++
		}
	}
	for _, r := range s.dates {
		if r.Active() {
			n++
		}
	}
	return n
}

// Snapshot copia profunda del estado actual.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Categorical: make(map[entity.Field][]string, len(s.categorical)),
		Dates:       make(map[entity.Field]Range, len(s.dates)),
	}
	for f, set := range s.categorical {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		st.Categorical[f] = vals
	}
	for f, r := range s.dates {
		st.Dates[f] = r
	}
	return st
}

// Apply devuelve los clientes que pasan todos los filtros activos, en el mismo orden.
// No modifica clients.
func (s *Store) Apply(clients []entity.Client) []entity.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Client, 0, len(clients))
	for i := range clients {
		if s.matches(&clients[i]) {
			out = append(out, clients[i])
		}
	}
	return out
}

func (s *Store) matches(c *entity.Client) bool {
	for f, set := range s.categorical {
		if len(set) == 0 {
			continue
		}
		if _, ok := set[displayValue(c, f)]; !ok {
			return false
		}
	}
	for f, r := range s.dates {
		if !r.Active() {
			continue
		}
		if !s.inRange(c, f, r) {
			return false
		}
	}
	return true
}

// inRange compara a nivel de día. Fecha nula, fecha guardada inválida o extremo inválido excluyen.
func (s *Store) inRange(c *entity.Client, f entity.Field, r Range) bool {
	stored := c.Date(f)
	if stored == nil || *stored == "" {
		return false
	}
	d, err := fecha.Parse(*stored)
	if err != nil {
		s.log.Warn().Int64("cliente_id", c.ID).Str("campo", string(f)).Str("valor", *stored).
			Msg("filtros: fecha con formato inválido, cliente excluido")
		return false
	}
	from, ok := s.bound(f, "desde", r.Desde)
	if !ok {
		return false
	}
	to, ok := s.bound(f, "hasta", r.Hasta)
	if !ok {
		return false
	}
	return (from.IsZero() || !d.Before(from)) && (to.IsZero() || !d.After(to))
}

func (s *Store) bound(f entity.Field, name, v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	t, err := fecha.Parse(v)
	if err != nil {
		s.log.Warn().Str("campo", string(f)).Str(name, v).Msg("filtros: extremo de rango inválido")
		return time.Time{}, false
	}
	return t, true
}

// UniqueValues valores distintos de field en clients, ordenados. Los nulos se
// representan con entity.NullPlaceholder.
func UniqueValues(clients []entity.Client, field entity.Field) []string {
	seen := make(map[string]struct{})
	for i := range clients {
		seen[displayValue(&clients[i], field)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func displayValue(c *entity.Client, f entity.Field) string {
	if v, ok := c.Value(f); ok {
		return v
	}
	return entity.NullPlaceholder
}

func unknownField(f entity.Field) error {
	return domain.NewValidationError(domain.FieldError{
		Field:   string(f),
		Message: fmt.Sprintf("El campo %q no es filtrable", string(f)),
	})
}

// UniqueValues ver la función UniqueValues.
func (s *Store) UniqueValues(clients []entity.Client, field entity.Field) []string {
	return UniqueValues(clients, field)
}
