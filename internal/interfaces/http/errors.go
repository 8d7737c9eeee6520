package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain"
)

// Mensajes genéricos de error.
const (
	msgInvalidBody = "Cuerpo de la solicitud inválido"
	msgInternal    = "Error interno del servidor"
	msgForbidden   = "No tienes permisos para realizar esta acción"
)

// errorBody construye la respuesta estructurada {error, code, errors}.
func errorBody(code, msg string, fields []domain.FieldError) dto.ErrorResponse {
	return dto.ErrorResponse{Error: msg, Code: code, Errors: fields}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody(dto.CodeInvalidBody, msgInvalidBody, nil))
}

// writeError traduce un error de dominio a status HTTP y cuerpo de error.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var de *domain.Error
	var fields []domain.FieldError
	msg := ""
	if errors.As(err, &de) {
		fields = de.Fields
		msg = de.FirstMessage()
	}
	switch {
	case errors.Is(err, domain.ErrCategoryInUse):
		return c.Status(fiber.StatusConflict).JSON(errorBody(dto.CodeCategoryInUse, msg, fields))
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(errorBody(dto.CodeDuplicate, msg, fields))
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody(dto.CodeValidation, msg, fields))
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(errorBody(dto.CodeUnauthorized, msg, nil))
	case errors.Is(err, domain.ErrForbidden):
		if msg == "" {
			msg = msgForbidden
		}
		return c.Status(fiber.StatusForbidden).JSON(errorBody(dto.CodeForbidden, msg, nil))
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorBody(dto.CodeNotFound, msg, nil))
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody(dto.CodeInternal, msgInternal, nil))
}
