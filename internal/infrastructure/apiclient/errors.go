package apiclient

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain"
)

// Mensajes que se muestran al usuario.
const (
	MsgBadRequest     = "Solicitud inválida. Verifica los datos enviados."
	MsgSessionExpired = "Sesión expirada. Por favor, inicia sesión nuevamente."
	MsgUnauthorized   = "No autorizado. Inicia sesión nuevamente."
	MsgForbidden      = "No tienes permisos para realizar esta acción."
	MsgServer         = "Error interno del servidor. Intenta de nuevo más tarde."
	MsgSchema         = "Error de validación de datos"
	MsgConnection     = "Error de conexión o tiempo de espera agotado"
)

func general(msg string) []domain.FieldError {
	return []domain.FieldError{{Field: domain.FieldGeneral, Message: msg}}
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

// mapStatus traduce una respuesta HTTP de error a la taxonomía de dominio.
func mapStatus(status int, body dto.ErrorResponse, resource string, public bool) *domain.Error {
	e := &domain.Error{Status: status, Code: body.Code}
	switch status {
	case http.StatusBadRequest, http.StatusConflict:
		e.Kind = domain.ErrValidation
		if body.Code == dto.CodeCategoryInUse {
			e.Kind = domain.ErrCategoryInUse
		}
		e.Fields = body.Errors
		if len(e.Fields) == 0 {
			e.Fields = general(orDefault(body.Error, MsgBadRequest))
		}
	case http.StatusUnauthorized:
		e.Kind = domain.ErrUnauthorized
		msg := MsgSessionExpired
		if public {
			msg = orDefault(body.Error, MsgUnauthorized)
		}
		e.Fields = []domain.FieldError{{Field: domain.FieldAuth, Message: msg}}
	case http.StatusForbidden:
		e.Kind = domain.ErrForbidden
		e.Fields = []domain.FieldError{{Field: domain.FieldAuth, Message: MsgForbidden}}
	case http.StatusNotFound:
		e.Kind = domain.ErrNotFound
		e.Fields = general(orDefault(body.Error, resource+" no encontrado."))
	case http.StatusInternalServerError:
		e.Kind = domain.ErrServer
		e.Fields = general(orDefault(body.Error, MsgServer))
	default:
		e.Kind = domain.ErrStatus
		e.Fields = general(orDefault(body.Error, fmt.Sprintf("Error %d: %s", status, http.StatusText(status))))
	}
	return e
}

func connectionError(err error) *domain.Error {
	return &domain.Error{Kind: domain.ErrConnection, Fields: general(MsgConnection), Cause: err}
}

func schemaError(path string, err error, log zerolog.Logger) *domain.Error {
	log.Error().Err(err).Str("path", path).Msg("api: respuesta no cumple el esquema")
	return &domain.Error{Kind: domain.ErrSchema, Fields: general(MsgSchema), Cause: err}
}
