package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolink/crud-clientes/internal/application/auth"
	"github.com/ecolink/crud-clientes/internal/application/usecase"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
	"github.com/ecolink/crud-clientes/internal/infrastructure/memoria"
	apphttp "github.com/ecolink/crud-clientes/internal/interfaces/http"
	"github.com/ecolink/crud-clientes/pkg/config"
)

const (
	adminEmail = "admin@ecolink.com"
	adminPass  = "admin1234"
	jwtSecret  = "test-secret-key-for-cli-tests"
)

// harness backend de desarrollo en proceso más el almacén de sesión compartido
// entre invocaciones de la CLI.
type harness struct {
	t         *testing.T
	authUC    *auth.AuthUseCase
	regs      *memoria.RegistrationRepo
	kv        *memoria.KV
	url       string
	passwords []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	clients := memoria.NewClientRepo()
	regs := memoria.NewRegistrationRepo()
	authUC := auth.NewAuthUseCase(memoria.NewUserRepo(), regs,
		auth.JWTConfig{Secret: jwtSecret, ExpMinutes: 60, Issuer: "ecolink-test"}, log)
	_, err := authUC.EnsureAdmin(context.Background(), adminEmail, "Admin", adminPass)
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ClientUC:   usecase.NewClientUseCase(clients, log),
		CategoryUC: usecase.NewCategoryUseCase(memoria.NewCategoryRepo(), clients, log),
		AuthUC:     authUC,
		JWTSecret:  jwtSecret,
		Logger:     log,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return &harness{t: t, authUC: authUC, regs: regs, kv: memoria.NewKV(), url: srv.URL}
}

func (h *harness) env() env {
	return env{
		openStore: func(context.Context, config.SessionConfig) (repository.KeyValueStore, func() error, error) {
			return h.kv, func() error { return nil }, nil
		},
		readPassword: func() (string, error) {
			if len(h.passwords) == 0 {
				return "", errors.New("sin contraseña")
			}
			pw := h.passwords[0]
			h.passwords = h.passwords[1:]
			return pw, nil
		},
		loadConfig: func() (*config.Config, error) {
			return &config.Config{
				App: config.AppConfig{Env: "test", Name: "clientes", LogLevel: "disabled"},
				API: config.APIConfig{BaseURL: h.url, Prefix: apphttp.APIPrefix, Timeout: 5 * time.Second},
				Session: config.SessionConfig{
					Timeout: 20 * time.Minute, CheckInterval: time.Minute, Store: "memory",
				},
			}, nil
		},
	}
}

// exec ejecuta la CLI con args y devuelve stdout, stderr y el error.
func (h *harness) exec(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(h.env())
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (h *harness) loginAdmin() {
	h.t.Helper()
	_, _, err := h.exec("", "login", "--email", adminEmail, "--password", adminPass)
	require.NoError(h.t, err)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.exec("", "version")
	require.NoError(t, err)
	assert.Equal(t, "clientes versión "+version+"\n", out)
}

func TestLogin_PideEmailYContraseña(t *testing.T) {
	h := newHarness(t)
	h.passwords = []string{adminPass}

	out, _, err := h.exec(adminEmail+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Bienvenido/a Admin (ADMIN)")

	tok, err := h.kv.Get(context.Background(), repository.KeyToken)
	require.NoError(t, err)
	assert.NotEmpty(t, tok, "el token queda persistido para la próxima invocación")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.exec("", "login", "--email", adminEmail, "--password", "incorrecta")
	require.Error(t, err)

	tok, _ := h.kv.Get(context.Background(), repository.KeyToken)
	assert.Nil(t, tok)
}

func TestListar_SinSesion(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.exec("", "listar")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestClientes_CicloCompleto(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	out, _, err := h.exec("", "crear",
		"--campo", "zona=Norte", "--campo", "nombre=Ana Pérez", "--campo", "barrio=Centro",
		"--campo", "direccion=Calle 1", "--campo", "telefono=+5491122334455",
		"--campo", "tipoCliente=Particular", "--campo", "contratacion=2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "Cliente 1 creado.\n", out)

	_, _, err = h.exec("", "crear",
		"--campo", "zona=Sur", "--campo", "nombre=Beto", "--campo", "barrio=Oeste",
		"--campo", "direccion=Calle 2", "--campo", "telefono=+5491199887766",
		"--campo", "tipoCliente=Empresa")
	require.NoError(t, err)

	out, _, err = h.exec("", "listar", "--filtro", "zona=Norte")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Pérez")
	assert.NotContains(t, out, "Beto")

	out, _, err = h.exec("", "listar", "--desde", "contratacion=2024-01-01", "--hasta", "contratacion=31/03/2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Pérez")
	assert.NotContains(t, out, "Beto", "sin fecha queda fuera del rango")

	out, _, err = h.exec("", "valores", "zona")
	require.NoError(t, err)
	assert.Equal(t, "Norte\nSur\n", out)

	_, _, err = h.exec("", "editar", "1", "--campo", "estado=Activo")
	require.NoError(t, err)

	out, _, err = h.exec("", "ver", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Activo")
	assert.Contains(t, out, "15/03/2024")

	out, _, err = h.exec("", "borrar", "2")
	require.NoError(t, err)
	assert.Equal(t, "Cliente 2 eliminado.\n", out)

	_, _, err = h.exec("", "ver", "2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCrear_ErroresPorCampo(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	_, errOut, err := h.exec("", "crear", "--campo", "zona=Norte", "--campo", "telefono=123")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, errOut, "nombre: Nombre es obligatorio")
	assert.Contains(t, errOut, "telefono: El teléfono debe comenzar")
}

func TestCategorias_EnUsoYRenombre(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	_, _, err := h.exec("", "categorias", "crear", "zona", "Norte", "--color", "#00FF00")
	require.NoError(t, err)
	_, _, err = h.exec("", "crear",
		"--campo", "zona=Norte", "--campo", "nombre=Ana", "--campo", "barrio=Centro",
		"--campo", "direccion=Calle 1", "--campo", "telefono=+5491122334455",
		"--campo", "tipoCliente=Particular")
	require.NoError(t, err)

	_, _, err = h.exec("", "categorias", "borrar", "zona", "Norte")
	require.ErrorIs(t, err, domain.ErrCategoryInUse)
	assert.Contains(t, domain.MessageOf(err), "en uso")

	_, _, err = h.exec("", "categorias", "renombrar", "zona", "Norte", "Zona Norte")
	require.NoError(t, err)

	out, _, err := h.exec("", "categorias", "zona")
	require.NoError(t, err)
	assert.Contains(t, out, "Zona Norte")

	out, _, err = h.exec("", "valores", "zona")
	require.NoError(t, err)
	assert.Equal(t, "Zona Norte\n", out, "el renombre migra los clientes")
}

func TestLector_NoPuedeEscribir(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reg, err := h.authUC.Register(ctx, "lector@ecolink.com", "Lector", entity.RoleLector)
	require.NoError(t, err)
	_, err = h.authUC.Approve(ctx, 1, reg.RequestID, "lector1234")
	require.NoError(t, err)
	req, _ := h.regs.GetByID(ctx, reg.RequestID)

	_, _, err = h.exec("", "verificar", req.VerificationToken)
	require.NoError(t, err)

	_, _, err = h.exec("", "listar")
	require.NoError(t, err)

	_, _, err = h.exec("", "borrar", "1")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, _, err = h.exec("", "categorias", "crear", "zona", "Norte")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	_, _, err = h.exec("", "solicitudes")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestSolicitudes_AprobarYRechazar(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.exec("", "registro", "--email", "op@ecolink.com", "--nombre", "Operador", "--rol", "operador")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	_, _, err = h.exec("", "registro", "--email", "otro@ecolink.com", "--nombre", "Otro")
	require.NoError(t, err)

	h.loginAdmin()
	out, _, err = h.exec("", "solicitudes")
	require.NoError(t, err)
	assert.Contains(t, out, "op@ecolink.com")
	assert.Contains(t, out, "pendiente")

	op, err := h.regs.FindByEmail(context.Background(), "op@ecolink.com")
	require.NoError(t, err)
	otro, err := h.regs.FindByEmail(context.Background(), "otro@ecolink.com")
	require.NoError(t, err)

	h.passwords = []string{"operador1234"}
	_, _, err = h.exec("", "solicitudes", "aprobar", strconv.FormatInt(op.ID, 10))
	require.NoError(t, err)
	_, _, err = h.exec("", "solicitudes", "rechazar", strconv.FormatInt(otro.ID, 10), "--motivo", "duplicado")
	require.NoError(t, err)

	out, _, err = h.exec("", "solicitudes")
	require.NoError(t, err)
	assert.Contains(t, out, "aprobada")
	assert.Contains(t, out, "rechazada")
}

func TestLogout_BorraCredenciales(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	out, _, err := h.exec("", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Sesión cerrada.\n", out)

	tok, _ := h.kv.Get(context.Background(), repository.KeyToken)
	assert.Nil(t, tok)
	_, _, err = h.exec("", "perfil")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestPerfil_ActualizaNombre(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	out, _, err := h.exec("", "perfil", "--nombre", "Administradora")
	require.NoError(t, err)
	assert.Contains(t, out, "Administradora")
	assert.Contains(t, out, adminEmail)
}

func TestSesionVencidaAlIniciar(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()
	old := time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, h.kv.Set(context.Background(), repository.KeyLastAccess, []byte(strconv.FormatInt(old, 10))))

	_, errOut, err := h.exec("", "listar")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Contains(t, errOut, "Sesión finalizada")
}

func TestMetricas(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin()

	_, errOut, err := h.exec("", "--metricas", "listar")
	require.NoError(t, err)
	assert.Contains(t, errOut, "ecolink_apiclient_requests_total")
}
