// Backend de desarrollo: implementa la API de ECOLINK en memoria para
// probar la CLI y el núcleo sin depender del servidor remoto.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ecolink/crud-clientes/internal/application/auth"
	"github.com/ecolink/crud-clientes/internal/application/usecase"
	"github.com/ecolink/crud-clientes/internal/infrastructure/memoria"
	httpRouter "github.com/ecolink/crud-clientes/internal/interfaces/http"
	"github.com/ecolink/crud-clientes/pkg/config"
	"github.com/ecolink/crud-clientes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando backend de desarrollo")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	if cfg.Seed.AdminPassword == "" {
		log.Fatal().Msg("ADMIN_PASSWORD es obligatorio")
	}

	clientRepo := memoria.NewClientRepo()
	categoryRepo := memoria.NewCategoryRepo()
	userRepo := memoria.NewUserRepo()
	requestRepo := memoria.NewRegistrationRepo()

	clientUC := usecase.NewClientUseCase(clientRepo, log.Component("clientes"))
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, clientRepo, log.Component("categorias"))
	authUC := auth.NewAuthUseCase(userRepo, requestRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	ctx := context.Background()
	admin, err := authUC.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminName, cfg.Seed.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	log.Info().Str("email", admin.Email).Msg("administrador disponible")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ClientUC:   clientUC,
		CategoryUC: categoryUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
		Metrics:    httpRouter.NewMetrics(reg),
		Logger:     log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("backend detenido")
}
