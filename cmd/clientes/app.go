package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ecolink/crud-clientes/internal/application/categorias"
	"github.com/ecolink/crud-clientes/internal/application/clientes"
	"github.com/ecolink/crud-clientes/internal/application/permisos"
	"github.com/ecolink/crud-clientes/internal/application/sesion"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
	"github.com/ecolink/crud-clientes/internal/infrastructure/apiclient"
	"github.com/ecolink/crud-clientes/internal/infrastructure/keyring"
	"github.com/ecolink/crud-clientes/internal/infrastructure/memoria"
	"github.com/ecolink/crud-clientes/internal/infrastructure/sqlite"
	"github.com/ecolink/crud-clientes/pkg/config"
	"github.com/ecolink/crud-clientes/pkg/logger"
)

// StoreOpener abre el almacén donde se persiste la sesión.
type StoreOpener func(ctx context.Context, cfg config.SessionConfig) (repository.KeyValueStore, func() error, error)

// PasswordReader lee una contraseña sin eco.
type PasswordReader func() (string, error)

// env colaboradores externos de la CLI; los tests los sustituyen.
type env struct {
	openStore    StoreOpener
	readPassword PasswordReader
	loadConfig   func() (*config.Config, error)
}

func defaultEnv() env {
	return env{
		openStore:    openStore,
		readPassword: readTerminalPassword,
		loadConfig:   config.Load,
	}
}

func openStore(ctx context.Context, cfg config.SessionConfig) (repository.KeyValueStore, func() error, error) {
	switch cfg.Store {
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "keyring":
		return keyring.New(keyring.DefaultService), func() error { return nil }, nil
	default:
		return memoria.NewKV(), func() error { return nil }, nil
	}
}

func readTerminalPassword() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	return string(b), err
}

// terminalNavigator traduce las navegaciones del núcleo a avisos en la terminal.
type terminalNavigator struct {
	out io.Writer
}

func (n terminalNavigator) Navigate(path string) {
	switch path {
	case repository.PathLogin:
		fmt.Fprintln(n.out, "Sesión finalizada. Ejecutá `clientes login` para volver a ingresar.")
	case repository.PathClients:
		fmt.Fprintln(n.out, "Listo. Ya podés usar `clientes listar`.")
	}
}

// app núcleo armado para un comando: API, sesión, stores y permisos.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	api        *apiclient.Client
	session    *sesion.Manager
	clients    *clientes.Store
	categories *categorias.Registry
	gate       *permisos.Gate
	metrics    *prometheus.Registry
	closeStore func() error
}

func (r *root) open(cmd *cobra.Command) (*app, error) {
	cfg, err := r.env.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if r.apiURL != "" {
		cfg.API.BaseURL = r.apiURL
	}
	if r.storeKind != "" {
		cfg.Session.Store = r.storeKind
	}
	level := cfg.App.LogLevel
	if r.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: level, Out: cmd.ErrOrStderr()})

	ctx := cmd.Context()
	store, closeStore, err := r.env.openStore(ctx, cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("abrir almacén de sesión %q: %w", cfg.Session.Store, err)
	}

	reg := prometheus.NewRegistry()
	api := apiclient.New(apiclient.Options{
		BaseURL:      cfg.API.URL(),
		Timeout:      cfg.API.Timeout,
		ReadRetries:  cfg.API.ReadRetries,
		RetryBackoff: cfg.API.RetryBackoff,
		Metrics:      apiclient.NewMetrics(reg),
		Logger:       log.Component("apiclient"),
	})
	session := sesion.NewManager(api.Auth(), store, terminalNavigator{out: cmd.ErrOrStderr()},
		log.Component("sesion"), sesion.Options{
			Timeout:       cfg.Session.Timeout,
			CheckInterval: cfg.Session.CheckInterval,
		})
	api.SetTokenSource(session)
	api.OnUnauthorized(session.HandleUnauthorized)

	clientStore := clientes.NewStore(api.Clients(), log.Component("clientes"))
	a := &app{
		cfg:        cfg,
		log:        log,
		api:        api,
		session:    session,
		clients:    clientStore,
		categories: categorias.NewRegistry(api.Categories(), clientStore, log.Component("categorias")),
		gate:       permisos.NewGate(session, log.Component("permisos")),
		metrics:    reg,
		closeStore: closeStore,
	}
	if err := session.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("no se pudo restaurar la sesión")
	}
	return a, nil
}

func (a *app) close() {
	a.session.Dispose()
	if err := a.closeStore(); err != nil {
		a.log.Warn().Err(err).Msg("cerrar almacén de sesión")
	}
}

// requireSession falla si no hay sesión iniciada.
func (a *app) requireSession() error {
	if !a.session.Authenticated() {
		return fmt.Errorf("%w: ejecutá `clientes login`", domain.ErrNotAuthenticated)
	}
	return nil
}

// requireAdmin falla si el usuario no es ADMIN.
func (a *app) requireAdmin() error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if !a.gate.HasRole(entity.RoleAdmin) {
		return fmt.Errorf("%w: sólo ADMIN", domain.ErrPermissionDenied)
	}
	return nil
}

// guard ejecuta fn sólo si el rol tiene la capacidad; si no, informa el rechazo.
func (a *app) guard(want permisos.Capability, fn func() error) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	ran := false
	err := a.gate.Allow(want, func() error {
		ran = true
		return fn()
	})
	if !ran {
		return fmt.Errorf("%w (%s)", domain.ErrPermissionDenied, want)
	}
	return err
}

// writeMetrics resume las llamadas a la API hechas por el comando.
func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.metrics.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s_count{%s} %d\n", mf.GetName(), strings.Join(labels, ","), m.GetHistogram().GetSampleCount())
			}
		}
	}
	return nil
}
