package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/infrastructure/apiclient"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// failingTransport falla las primeras n llamadas y luego delega.
type failingTransport struct {
	fails int32
	calls atomic.Int32
	next  http.RoundTripper
}

func (f *failingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, errors.New("conexión rechazada")
	}
	return f.next.RoundTrip(r)
}

func newClient(t *testing.T, h http.HandlerFunc, transport http.RoundTripper) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	if transport == nil {
		transport = http.DefaultTransport
	}
	return apiclient.New(apiclient.Options{
		BaseURL:      srv.URL + "/api/v1",
		Timeout:      2 * time.Second,
		ReadRetries:  2,
		RetryBackoff: time.Millisecond,
		HTTPClient:   &http.Client{Transport: transport},
		Logger:       zerolog.Nop(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clienteJSON(id int) map[string]any {
	m := map[string]any{
		"id": id, "zona": "Norte", "nombre": "Ana", "barrio": "Centro", "direccion": "Calle 1",
		"telefono": "+5491100", "tipoCliente": "Residencial", "debe": 10.5, "precio": nil,
	}
	for _, f := range []string{"localidad", "detalleDireccion", "semana", "observaciones", "fechaDeuda",
		"ultimaRecoleccion", "contratacion", "estadoTurno", "prioridad", "estado", "gestionComercial",
		"CUIT", "condicion", "factura", "pago", "origenFacturacion", "nombreEmpresa",
		"emailAdministracion", "emailComercial"} {
		m[f] = nil
	}
	return m
}

func TestList_EnviaBearerYDecodifica(t *testing.T) {
	var auth string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/v1/clientes", r.URL.Path)
		writeJSON(w, http.StatusOK, []any{clienteJSON(1), clienteJSON(2)})
	}, nil)
	c.SetTokenSource(staticToken("tok-123"))

	list, err := c.Clients().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", auth)
	require.Len(t, list, 2)
	assert.Equal(t, "10.5", list[0].Debt.String())
}

func TestList_SinTokenNoEnviaAuthorization(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []any{})
	}, nil)

	_, err := c.Clients().List(context.Background())
	require.NoError(t, err)
}

func TestGet_ReintentaFallosDeTransporte(t *testing.T) {
	ft := &failingTransport{fails: 2, next: http.DefaultTransport}
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}, ft)

	_, err := c.Clients().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), ft.calls.Load())
}

func TestGet_AgotaReintentosDevuelveErrorDeConexion(t *testing.T) {
	ft := &failingTransport{fails: 10, next: http.DefaultTransport}
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {}, ft)

	_, err := c.Clients().List(context.Background())
	require.ErrorIs(t, err, domain.ErrConnection)
	assert.Equal(t, apiclient.MsgConnection, domain.MessageOf(err))
	assert.Equal(t, int32(3), ft.calls.Load())
}

func TestEscrituras_NoSeReintentan(t *testing.T) {
	ft := &failingTransport{fails: 1, next: http.DefaultTransport}
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, clienteJSON(1))
	}, ft)

	draft := entity.NewDraft()
	_, err := c.Clients().Create(context.Background(), &draft)
	require.ErrorIs(t, err, domain.ErrConnection)
	assert.Equal(t, int32(1), ft.calls.Load())
}

func TestCreate_EnviaLocalidadNull(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))
		v, ok := body["localidad"]
		assert.True(t, ok)
		assert.Nil(t, v)
		writeJSON(w, http.StatusCreated, clienteJSON(9))
	}, nil)

	loc := "Quilmes"
	draft := entity.NewDraft()
	draft.Locality = &loc
	got, err := c.Clients().Create(context.Background(), &draft)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
}

func TestRespuestaFueraDeEsquema_ErrorDeEsquema(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{map[string]any{"id": 1, "nombre": "Ana"}})
	}, nil)

	_, err := c.Clients().List(context.Background())
	require.ErrorIs(t, err, domain.ErrSchema)
	assert.NotErrorIs(t, err, domain.ErrConnection)
	assert.Equal(t, apiclient.MsgSchema, domain.MessageOf(err))
}

func TestStatus400_ErroresPorCampoDelBackend(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []map[string]string{{"field": "valor", "message": "El valor ya existe"}},
		})
	}, nil)

	_, err := c.Categories().Create(context.Background(), entity.FieldZone, "Norte", nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []domain.FieldError{{Field: "valor", Message: "El valor ya existe"}}, domain.FieldsOf(err))
}

func TestStatus409_SinErroresUsaMensajeGeneral(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}, nil)

	_, err := c.Categories().Create(context.Background(), entity.FieldZone, "Norte", nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []domain.FieldError{{Field: domain.FieldGeneral, Message: apiclient.MsgBadRequest}}, domain.FieldsOf(err))
}

func TestStatus409_CodigoCategoriaEnUso(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(w, http.StatusConflict, map[string]any{"error": "valor en uso", "code": "CATEGORIA_EN_USO"})
	}, nil)

	err := c.Categories().Delete(context.Background(), entity.FieldZone, "Norte", "01/01/2024")
	assert.ErrorIs(t, err, domain.ErrCategoryInUse)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStatus401_PurgaSesionEnRutasAutenticadas(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "token vencido"})
	}, nil)
	var purged atomic.Bool
	c.OnUnauthorized(func() { purged.Store(true) })

	_, err := c.Clients().List(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, purged.Load())
	assert.Equal(t, []domain.FieldError{{Field: domain.FieldAuth, Message: apiclient.MsgSessionExpired}}, domain.FieldsOf(err))
}

func TestStatus401_LoginConservaMensajeYNoPurga(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Credenciales inválidas"})
	}, nil)
	var purged atomic.Bool
	c.OnUnauthorized(func() { purged.Store(true) })

	_, err := c.Auth().Login(context.Background(), "a@b.com", "x")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, purged.Load())
	assert.Equal(t, "Credenciales inválidas", domain.MessageOf(err))
}

func TestStatus403_404_500_Otros(t *testing.T) {
	cases := []struct {
		status int
		kind   error
		msg    string
	}{
		{http.StatusForbidden, domain.ErrForbidden, apiclient.MsgForbidden},
		{http.StatusNotFound, domain.ErrNotFound, "Cliente no encontrado."},
		{http.StatusInternalServerError, domain.ErrServer, apiclient.MsgServer},
		{http.StatusTeapot, domain.ErrStatus, "Error 418: I'm a teapot"},
	}
	for _, tc := range cases {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}, nil)

		_, err := c.Clients().Get(context.Background(), 5)
		assert.ErrorIs(t, err, tc.kind, "status %d", tc.status)
		assert.Equal(t, tc.msg, domain.MessageOf(err), "status %d", tc.status)
	}
}

func TestCategoriaCreate_RespuestaVaciaEsExito(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	cat, err := c.Categories().Create(context.Background(), entity.FieldPriority, "Alta", nil)
	require.NoError(t, err)
	assert.Nil(t, cat)
}

func TestListOptions_EscapaCampo(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tipoCliente", r.URL.Query().Get("campo"))
		writeJSON(w, http.StatusOK, map[string]any{"options": []map[string]any{{"valor": "Comercio", "color": "#ff0000"}}})
	}, nil)

	opts, err := c.Categories().ListOptions(context.Background(), entity.FieldClientType)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Comercio", opts[0].Value)
	assert.Equal(t, "#ff0000", *opts[0].Color)
}

func TestMetrics_CuentaLlamadas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}))
	t.Cleanup(srv.Close)
	reg := prometheus.NewRegistry()
	c := apiclient.New(apiclient.Options{BaseURL: srv.URL, Metrics: apiclient.NewMetrics(reg), Logger: zerolog.Nop()})

	_, err := c.Clients().List(context.Background())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() == "ecolink_apiclient_requests_total" {
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), total)
}
