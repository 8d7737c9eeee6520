package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/auth"
	"github.com/ecolink/crud-clientes/internal/application/usecase"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// APIPrefix prefijo versionado de todas las rutas.
const APIPrefix = "/api/v1"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ClientUC   *usecase.ClientUseCase
	CategoryUC *usecase.CategoryUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
	Metrics    *Metrics
	Logger     zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api := app.Group(APIPrefix)
	requireAuth := AuthMiddleware(deps.JWTSecret)
	writers := RequireRole(entity.RoleAdmin, entity.RoleOperador)
	admin := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Logger)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/registro", authHandler.Register)
	authGroup.Get("/verificar-email", authHandler.VerifyEmail)
	authGroup.Post("/reenviar-verificacion", authHandler.ResendVerification)
	authGroup.Post("/reset-password", authHandler.RequestPasswordReset)
	authGroup.Post("/reset-password/confirm", authHandler.ConfirmPasswordReset)

	// Auth (protegido)
	authGroup.Get("/perfil", requireAuth, authHandler.Profile)
	authGroup.Put("/perfil", requireAuth, authHandler.UpdateProfile)
	authGroup.Get("/solicitudes", requireAuth, admin, authHandler.ListRequests)
	authGroup.Post("/aprobar-solicitud", requireAuth, admin, authHandler.Approve)
	authGroup.Post("/rechazar-solicitud", requireAuth, admin, authHandler.Reject)

	// Clientes: lectura para todo usuario autenticado, escritura ADMIN/OPERADOR.
	clientHandler := NewClientHandler(deps.ClientUC, deps.Logger)
	clients := api.Group("/clientes", requireAuth)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Post("/", writers, clientHandler.Create)
	clients.Put("/:id", writers, clientHandler.Update)
	clients.Delete("/:id", writers, clientHandler.Delete)

	// Categorías: lectura para todo usuario autenticado, gestión sólo ADMIN.
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.Logger)
	categories := api.Group("/categorias", requireAuth)
	categories.Get("/", categoryHandler.Options)
	categories.Post("/", admin, categoryHandler.Create)
	categories.Put("/", admin, categoryHandler.Rename)
	categories.Delete("/", admin, categoryHandler.Delete)
}
