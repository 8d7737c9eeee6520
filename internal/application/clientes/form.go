package clientes

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/fecha"
)

// Tiempos por defecto del formulario.
const (
	DefaultPhoneDebounce = 1000 * time.Millisecond
	DefaultErrorTTL      = 5 * time.Second
)

// SubmitFunc envía el cliente del formulario (alta o edición).
type SubmitFunc func(ctx context.Context, c entity.Client) error

// FormOption ajusta los tiempos del formulario.
type FormOption func(*Form)

// WithPhoneDebounce cambia la espera de la validación del teléfono.
func WithPhoneDebounce(d time.Duration) FormOption {
	return func(f *Form) { f.debounce = d }
}

// WithErrorTTL cambia cuánto duran los errores antes de limpiarse.
func WithErrorTTL(d time.Duration) FormOption {
	return func(f *Form) { f.ttl = d }
}

// Form estado de edición de un cliente con errores por campo.
// El teléfono se valida con espera mientras se escribe; Submit valida siempre
// de forma síncrona. Los errores se limpian solos tras ttl, salvo el del teléfono.
type Form struct {
	debounce time.Duration
	ttl      time.Duration

	mu         sync.Mutex
	client     entity.Client
	errors     map[string]string
	phoneTimer *time.Timer
	clearTimer *time.Timer
	phoneGen   uint64
	errGen     uint64
	closed     bool
}

// NewForm abre un formulario sobre initial.
func NewForm(initial entity.Client, opts ...FormOption) *Form {
	f := &Form{
		debounce: DefaultPhoneDebounce,
		ttl:      DefaultErrorTTL,
		client:   initial,
		errors:   map[string]string{},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Client cliente con los cambios aplicados.
func (f *Form) Client() entity.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.client
}

// Errors copia de los errores visibles por campo.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SetField asigna value a field. Las fechas se reciben como YYYY-MM-DD y se guardan
// como DD/MM/YYYY; los importes como texto decimal; "nuevo" como booleano.
func (f *Form) SetField(field entity.Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	switch {
	case field.IsDate():
		f.client.SetText(field, fecha.ToStorage(strings.TrimSpace(value)))
	case field == entity.FieldDebt || field == entity.FieldPrice:
		amount, err := parseAmount(value)
		if err != nil {
			return domain.NewValidationError(domain.FieldError{Field: string(field), Message: "Importe inválido"})
		}
		if field == entity.FieldDebt {
			f.client.Debt = amount
		} else {
			f.client.Price = amount
		}
	case field == entity.FieldNew:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return domain.NewValidationError(domain.FieldError{Field: string(field), Message: "Valor inválido"})
		}
		f.client.New = &b
	case field == entity.FieldID || field == entity.FieldLocality:
		return fmt.Errorf("el campo %q no es editable", string(field))
	default:
		if !f.client.SetText(field, value) {
			return fmt.Errorf("campo %q desconocido", string(field))
		}
	}
	if field == entity.FieldPhone {
		f.schedulePhoneCheck()
	}
	return nil
}

// Submit valida el cliente y, si es válido, lo envía con submit. Los errores locales
// o devueltos por submit quedan visibles por campo.
func (f *Form) Submit(ctx context.Context, submit SubmitFunc) error {
	f.mu.Lock()
	if f.phoneTimer != nil {
		f.phoneTimer.Stop()
		f.phoneGen++
	}
	f.errors = map[string]string{}
	c := f.client
	if errs := Validate(&c); len(errs) > 0 {
		f.setErrorsLocked(errs)
		f.mu.Unlock()
		return domain.NewValidationError(errs...)
	}
	f.mu.Unlock()

	if err := submit(ctx, c); err != nil {
		f.mu.Lock()
		f.setErrorsLocked(domain.FieldsOf(err))
		f.mu.Unlock()
		return err
	}
	return nil
}

// Close cancela los temporizadores y descarta los errores. Es idempotente.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.phoneTimer != nil {
		f.phoneTimer.Stop()
	}
	if f.clearTimer != nil {
		f.clearTimer.Stop()
	}
	f.errors = map[string]string{}
}

func (f *Form) schedulePhoneCheck() {
	if f.phoneTimer != nil {
		f.phoneTimer.Stop()
	}
	f.phoneGen++
	gen := f.phoneGen
	f.phoneTimer = time.AfterFunc(f.debounce, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed || gen != f.phoneGen {
			return
		}
		if msg := ValidatePhone(f.client.Phone); msg != "" {
			f.errors[string(entity.FieldPhone)] = msg
		} else {
			delete(f.errors, string(entity.FieldPhone))
		}
	})
}

func (f *Form) setErrorsLocked(errs []domain.FieldError) {
	f.errors = make(map[string]string, len(errs))
	for _, e := range errs {
		f.errors[e.Field] = e.Message
	}
	if f.clearTimer != nil {
		f.clearTimer.Stop()
	}
	f.errGen++
	gen := f.errGen
	f.clearTimer = time.AfterFunc(f.ttl, func() { f.autoClear(gen) })
}

// autoClear conserva sólo el error del teléfono.
func (f *Form) autoClear(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.errGen {
		return
	}
	phone, ok := f.errors[string(entity.FieldPhone)]
	f.errors = map[string]string{}
	if ok {
		f.errors[string(entity.FieldPhone)] = phone
	}
}

func parseAmount(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
