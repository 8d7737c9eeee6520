package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/application/usecase"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// ClientHandler maneja las peticiones HTTP de clientes (protegido).
type ClientHandler struct {
	uc  *usecase.ClientUseCase
	log zerolog.Logger
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *usecase.ClientUseCase, log zerolog.Logger) *ClientHandler {
	return &ClientHandler{uc: uc, log: log}
}

func (h *ClientHandler) id(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(domain.FieldError{Field: "id", Message: "ID inválido"})
	}
	return int64(id), nil
}

func (h *ClientHandler) body(c *fiber.Ctx) (*entity.Client, error) {
	var in dto.ClientDTO
	if err := c.BodyParser(&in); err != nil {
		return nil, errInvalidBody
	}
	cl, err := in.ToEntity()
	if err != nil {
		return nil, domain.NewValidationError(domain.FieldError{Field: domain.FieldGeneral, Message: err.Error()})
	}
	return &cl, nil
}

var errInvalidBody = errors.New("cuerpo inválido")

func (h *ClientHandler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, errInvalidBody) {
		return badBody(c)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(errorBody(dto.CodeNotFound, "Cliente no encontrado.", nil))
	}
	return writeError(c, h.log, err)
}

// List GET /api/v1/clientes
func (h *ClientHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]dto.ClientDTO, 0, len(list))
	for i := range list {
		out = append(out, dto.FromClient(&list[i]))
	}
	return c.JSON(out)
}

// GetByID GET /api/v1/clientes/:id
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	id, err := h.id(c)
	if err != nil {
		return h.fail(c, err)
	}
	cl, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromClient(cl))
}

// Create POST /api/v1/clientes
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	in, err := h.body(c)
	if err != nil {
		return h.fail(c, err)
	}
	cl, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromClient(cl))
}

// Update PUT /api/v1/clientes/:id con el registro completo.
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := h.id(c)
	if err != nil {
		return h.fail(c, err)
	}
	in, err := h.body(c)
	if err != nil {
		return h.fail(c, err)
	}
	cl, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromClient(cl))
}

// Delete DELETE /api/v1/clientes/:id
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, err := h.id(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
