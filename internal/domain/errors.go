package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas). Cada uno identifica una clase
// de la taxonomía; *Error los transporta junto con el detalle por campo.
var (
	ErrValidation       = errors.New("datos inválidos")
	ErrUnauthorized     = errors.New("sesión expirada o no autorizada")
	ErrForbidden        = errors.New("acceso denegado")
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrCategoryInUse    = errors.New("categoría en uso")
	ErrServer           = errors.New("error interno del servidor")
	ErrConnection       = errors.New("error de conexión o tiempo de espera agotado")
	ErrSchema           = errors.New("error de validación de datos")
	ErrStatus           = errors.New("respuesta HTTP inesperada")
	ErrPermissionDenied = errors.New("permiso insuficiente para la acción")
	ErrSessionExpired   = errors.New("sesión expirada")
	ErrNotAuthenticated = errors.New("no hay sesión iniciada")
)

// Campos especiales usados en FieldError cuando el error no pertenece a un campo del formulario.
const (
	FieldGeneral = "general"
	FieldAuth    = "auth"
)

// FieldError mensaje asociado a un campo (o a "general"/"auth").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error error estructurado devuelto por stores y cliente HTTP.
// Kind es uno de los sentinelas de arriba; errors.Is funciona contra él.
type Error struct {
	Kind   error
	Status int    // código HTTP, 0 si el error es local
	Code   string // código estructurado del backend (ej. CATEGORIA_EN_USO)
	Fields []FieldError
	Cause  error // error técnico subyacente (transporte, esquema), no se muestra
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Message)
		}
		return strings.Join(msgs, "; ")
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "error desconocido"
}

// Unwrap permite errors.Is(err, domain.ErrValidation) etc.
// Un ErrCategoryInUse también es un ErrConflict.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Kind == ErrCategoryInUse {
		errs = append(errs, ErrConflict)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// FirstMessage devuelve el primer mensaje del error o el texto del sentinela.
func (e *Error) FirstMessage() string {
	if len(e.Fields) > 0 {
		return e.Fields[0].Message
	}
	return e.Error()
}

// NewValidationError construye un error de validación a partir de errores por campo.
func NewValidationError(fields ...FieldError) *Error {
	return &Error{Kind: ErrValidation, Fields: fields}
}

// FieldsOf extrae los errores por campo de err si es un *Error.
// Para cualquier otro error devuelve un único FieldError "general".
func FieldsOf(err error) []FieldError {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) && len(de.Fields) > 0 {
		return de.Fields
	}
	return []FieldError{{Field: FieldGeneral, Message: err.Error()}}
}

// MessageOf devuelve el primer mensaje legible de err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.FirstMessage()
	}
	return err.Error()
}
