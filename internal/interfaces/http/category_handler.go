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

// CategoryHandler maneja los valores de campos gestionables (protegido).
type CategoryHandler struct {
	uc  *usecase.CategoryUseCase
	log zerolog.Logger
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, log: log}
}

func (h *CategoryHandler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(errorBody(dto.CodeNotFound, "Categoría no encontrada.", nil))
	}
	return writeError(c, h.log, err)
}

// Options GET /api/v1/categorias?campo=zona
func (h *CategoryHandler) Options(c *fiber.Ctx) error {
	opts, err := h.uc.Options(c.UserContext(), entity.Field(c.Query("campo")))
	if err != nil {
		return h.fail(c, err)
	}
	out := dto.OptionsResponse{Options: make([]dto.OptionDTO, 0, len(opts))}
	for _, o := range opts {
		out.Options = append(out.Options, dto.OptionDTO{Valor: o.Value, Color: o.Color})
	}
	return c.JSON(out)
}

// Create POST /api/v1/categorias
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cat, err := h.uc.Create(c.UserContext(), entity.Field(in.Campo), in.Valor, in.Color)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCategory(cat))
}

// Rename PUT /api/v1/categorias
func (h *CategoryHandler) Rename(c *fiber.Ctx) error {
	var in dto.RenameCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cat, err := h.uc.Rename(c.UserContext(), entity.Field(in.Campo), in.OldValor, in.NewValor, in.Color)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromCategory(cat))
}

// Delete DELETE /api/v1/categorias con {campo, valor, deleteAt}.
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	var in dto.DeleteCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.Delete(c.UserContext(), entity.Field(in.Campo), in.Valor, in.DeleteAt); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
