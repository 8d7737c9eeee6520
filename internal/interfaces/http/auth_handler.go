package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/auth"
	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// AuthHandler maneja sesión, registro y perfil.
type AuthHandler struct {
	uc  *auth.AuthUseCase
	log zerolog.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

func session(res *auth.Result) dto.LoginResponse {
	return dto.LoginResponse{Usuario: dto.FromUser(res.User), Token: res.Token, Message: res.Message}
}

func withUser(res *auth.Result) dto.UserMessageResponse {
	return dto.UserMessageResponse{Message: res.Message, Usuario: dto.FromUser(res.User)}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(session(res))
}

// Register POST /api/v1/auth/registro
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Register(c.UserContext(), in.Email, in.Nombre, entity.Role(in.Rol))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{Message: res.Message, SolicitudID: res.RequestID})
}

// ListRequests GET /api/v1/auth/solicitudes (ADMIN)
func (h *AuthHandler) ListRequests(c *fiber.Ctx) error {
	reqs, err := h.uc.ListRequests(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.RegistrationRequestDTO, 0, len(reqs))
	for i := range reqs {
		out = append(out, dto.FromRegistrationRequest(&reqs[i]))
	}
	return c.JSON(out)
}

// Approve POST /api/v1/auth/aprobar-solicitud (ADMIN)
func (h *AuthHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Approve(c.UserContext(), GetUserID(c), in.SolicitudID, in.Password)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(withUser(res))
}

// Reject POST /api/v1/auth/rechazar-solicitud (ADMIN)
func (h *AuthHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Reject(c.UserContext(), GetUserID(c), in.SolicitudID, in.Motivo)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: res.Message})
}

// Profile GET /api/v1/auth/perfil
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u, err := h.uc.Profile(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromUser(u))
}

// UpdateProfile PUT /api/v1/auth/perfil
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.UpdateProfile(c.UserContext(), GetUserID(c), in.Nombre)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(withUser(res))
}

// VerifyEmail GET /api/v1/auth/verificar-email?token=
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	res, err := h.uc.VerifyEmail(c.UserContext(), c.Query("token"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(session(res))
}

// ResendVerification POST /api/v1/auth/reenviar-verificacion
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var in dto.EmailRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.ResendVerification(c.UserContext(), in.Email)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: res.Message})
}

// RequestPasswordReset POST /api/v1/auth/reset-password
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var in dto.EmailRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.RequestPasswordReset(c.UserContext(), in.Email)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: res.Message})
}

// ConfirmPasswordReset POST /api/v1/auth/reset-password/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var in dto.ConfirmResetRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.ConfirmPasswordReset(c.UserContext(), in.Token, in.Password)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: res.Message})
}
