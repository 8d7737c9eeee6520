package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolink/crud-clientes/internal/application/auth"
	"github.com/ecolink/crud-clientes/internal/application/categorias"
	"github.com/ecolink/crud-clientes/internal/application/clientes"
	"github.com/ecolink/crud-clientes/internal/application/sesion"
	"github.com/ecolink/crud-clientes/internal/application/usecase"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/infrastructure/apiclient"
	"github.com/ecolink/crud-clientes/internal/infrastructure/memoria"
	apphttp "github.com/ecolink/crud-clientes/internal/interfaces/http"
)

const (
	adminEmail = "admin@ecolink.com"
	adminPass  = "admin1234"
)

type backend struct {
	app     *fiber.App
	authUC  *auth.AuthUseCase
	regs    *memoria.RegistrationRepo
	baseURL string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	log := zerolog.Nop()
	clients := memoria.NewClientRepo()
	regs := memoria.NewRegistrationRepo()
	authUC := auth.NewAuthUseCase(memoria.NewUserRepo(), regs,
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, log)
	_, err := authUC.EnsureAdmin(context.Background(), adminEmail, "Admin", adminPass)
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ClientUC:   usecase.NewClientUseCase(clients, log),
		CategoryUC: usecase.NewCategoryUseCase(memoria.NewCategoryRepo(), clients, log),
		AuthUC:     authUC,
		JWTSecret:  testJWTSecret,
		Metrics:    apphttp.NewMetrics(prometheus.NewRegistry()),
		Logger:     log,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return &backend{app: app, authUC: authUC, regs: regs, baseURL: srv.URL + apphttp.APIPrefix}
}

type nav struct{ paths []string }

func (n *nav) Navigate(p string) { n.paths = append(n.paths, p) }

// client arma el núcleo completo (API client + sesión) contra el backend.
func (b *backend) client(t *testing.T) (*apiclient.Client, *sesion.Manager, *nav) {
	t.Helper()
	api := apiclient.New(apiclient.Options{BaseURL: b.baseURL, Timeout: 5 * time.Second, Logger: zerolog.Nop()})
	n := &nav{}
	mgr := sesion.NewManager(api.Auth(), memoria.NewKV(), n, zerolog.Nop(), sesion.Options{})
	t.Cleanup(mgr.Dispose)
	api.SetTokenSource(mgr)
	api.OnUnauthorized(mgr.HandleUnauthorized)
	return api, mgr, n
}

func validClient(zone string) entity.Client {
	c := entity.NewDraft()
	c.Zone = zone
	c.Name = "Vecinal SRL"
	c.Neighborhood = "Centro"
	c.Address = "San Martín 123"
	c.Phone = "+5493511234567"
	c.ClientType = "Comercial"
	return c
}

func TestE2E_LoginYCrudDeClientes(t *testing.T) {
	b := newBackend(t)
	api, mgr, _ := b.client(t)
	ctx := context.Background()

	require.NoError(t, mgr.Login(ctx, adminEmail, adminPass))
	assert.Equal(t, entity.RoleAdmin, mgr.User().Role)

	store := clientes.NewStore(api.Clients(), zerolog.Nop())
	created, err := store.Create(ctx, validClient("Norte"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.Len(t, store.Clients(), 1)
	assert.Nil(t, store.Clients()[0].Locality)

	upd := *created
	upd.Name = "Vecinal SA"
	_, err = store.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	got, err := api.Clients().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vecinal SA", got.Name)

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.Empty(t, store.Clients())

	_, err = api.Clients().Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Cliente no encontrado.", domain.MessageOf(err))
}

func TestE2E_CategoriaEnUso(t *testing.T) {
	b := newBackend(t)
	api, mgr, _ := b.client(t)
	ctx := context.Background()
	require.NoError(t, mgr.Login(ctx, adminEmail, adminPass))

	store := clientes.NewStore(api.Clients(), zerolog.Nop())
	reg := categorias.NewRegistry(api.Categories(), store, zerolog.Nop())

	_, err := reg.Create(ctx, entity.FieldZone, "Norte", nil)
	require.NoError(t, err)
	_, err = store.Create(ctx, validClient("Norte"))
	require.NoError(t, err)

	err = reg.Delete(ctx, entity.FieldZone, "Norte")
	require.ErrorIs(t, err, domain.ErrCategoryInUse)
	assert.Contains(t, domain.MessageOf(err), "en uso")

	_, err = reg.Rename(ctx, entity.FieldZone, "Norte", "Zona Norte", nil)
	require.NoError(t, err)
	assert.Equal(t, "Zona Norte", store.Clients()[0].Zone, "el renombre migra y recarga clientes")
	assert.Equal(t, []entity.CategoryOption{{Value: "Zona Norte"}}, reg.Options(entity.FieldZone))
}

func TestE2E_LectorNoPuedeEscribir(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	reg, err := b.authUC.Register(ctx, "lector@ecolink.com", "Lector", entity.RoleLector)
	require.NoError(t, err)
	_, err = b.authUC.Approve(ctx, 1, reg.RequestID, "lector1234")
	require.NoError(t, err)
	req, _ := b.regs.GetByID(ctx, reg.RequestID)

	api, mgr, n := b.client(t)
	_, err = mgr.VerifyEmail(ctx, req.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleLector, mgr.User().Role)

	_, err = api.Clients().Create(ctx, &entity.Client{Zone: "Norte"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.True(t, mgr.State().IsAuthenticated, "un 403 no cierra la sesión")
	assert.Empty(t, n.paths)
}

func TestE2E_TokenInvalidoPurgaSesion(t *testing.T) {
	b := newBackend(t)
	_, mgr, n := b.client(t)
	ctx := context.Background()
	require.NoError(t, mgr.Login(ctx, adminEmail, adminPass))

	other := apiclient.New(apiclient.Options{BaseURL: b.baseURL, Logger: zerolog.Nop()})
	other.SetTokenSource(staticToken("no-es-un-jwt"))
	other.OnUnauthorized(mgr.HandleUnauthorized)

	_, err := other.Clients().List(ctx)

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, apiclient.MsgSessionExpired, domain.MessageOf(err))
	assert.Empty(t, mgr.Token())
	assert.Equal(t, []string{"/login"}, n.paths)
}

func TestE2E_LoginFallidoConservaMensaje(t *testing.T) {
	b := newBackend(t)
	_, mgr, n := b.client(t)

	err := mgr.Login(context.Background(), adminEmail, "incorrecta")

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, auth.MsgInvalidCredentials, mgr.State().Error)
	assert.Empty(t, n.paths, "un 401 en login no navega")
}

func TestMetrics_ExponeContadores(t *testing.T) {
	b := newBackend(t)
	_, err := b.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)

	resp, err := b.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "ecolink_mockapi_http_requests_total"))
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
