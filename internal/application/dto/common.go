package dto

import "github.com/ecolink/crud-clientes/internal/domain"

// ErrorResponse cuerpo de error HTTP de la API: mensaje, código estructurado y errores por campo.
type ErrorResponse struct {
	Error  string              `json:"error,omitempty"`
	Code   string              `json:"code,omitempty"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

// Códigos estructurados de error del backend.
const (
	CodeCategoryInUse = "CATEGORIA_EN_USO"
	CodeValidation    = "VALIDACION"
	CodeDuplicate     = "DUPLICADO"
	CodeNotFound      = "NO_ENCONTRADO"
	CodeUnauthorized  = "NO_AUTORIZADO"
	CodeForbidden     = "PROHIBIDO"
	CodeInternal      = "ERROR_INTERNO"
	CodeInvalidBody   = "CUERPO_INVALIDO"
	CodeMissingToken  = "TOKEN_REQUERIDO"
	CodeInvalidToken  = "TOKEN_INVALIDO"
	CodeMissingRole   = "ROL_REQUERIDO"
)

// MessageResponse respuesta con sólo un mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}

// MessageSchema esquema de MessageResponse.
var MessageSchema = Schema{
	{Name: "message", Kind: KindString},
}
