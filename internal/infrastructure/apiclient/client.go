// Package apiclient implementa los puertos de la API remota de ECOLINK sobre net/http.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

const maxBodyBytes = 4 << 20

// Options configuración del cliente HTTP.
type Options struct {
	// BaseURL origen más prefijo versionado (ej. https://host/api/v1).
	BaseURL      string
	Timeout      time.Duration
	ReadRetries  int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
	Metrics      *Metrics
	Logger       zerolog.Logger
}

// Client cliente de la API remota. Es seguro para uso concurrente.
type Client struct {
	baseURL      string
	timeout      time.Duration
	readRetries  int
	retryBackoff time.Duration
	httpClient   *http.Client
	metrics      *Metrics
	log          zerolog.Logger

	mu             sync.RWMutex
	tokens         repository.TokenSource
	onUnauthorized func()
}

// New construye el cliente. Timeout 0 usa 30 s.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ReadRetries < 0 {
		opts.ReadRetries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		timeout:      opts.Timeout,
		readRetries:  opts.ReadRetries,
		retryBackoff: opts.RetryBackoff,
		httpClient:   hc,
		metrics:      opts.Metrics,
		log:          opts.Logger,
	}
}

// SetTokenSource define de dónde sale el token Bearer.
func (c *Client) SetTokenSource(ts repository.TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// OnUnauthorized registra la acción a ejecutar cuando una ruta autenticada responde 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// Clients puerto de clientes.
func (c *Client) Clients() *ClientsAPI { return &ClientsAPI{c: c} }

// Categories puerto de categorías.
func (c *Client) Categories() *CategoriesAPI { return &CategoriesAPI{c: c} }

// Auth puerto de autenticación.
func (c *Client) Auth() *AuthAPI { return &AuthAPI{c: c} }

// call describe una petición.
type call struct {
	method   string
	path     string
	body     any
	resource string // nombre para el mensaje 404 ("Cliente no encontrado.")
	validate func([]byte) error
	// allowEmpty acepta respuesta sin cuerpo (204 o vacía) aunque haya esquema.
	allowEmpty bool
	// public rutas sin sesión: un 401 no purga credenciales y conserva el mensaje del backend.
	public bool
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) unauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// do ejecuta la petición y decodifica el cuerpo en out (si no es nil).
// Sólo las lecturas GET se reintentan ante fallos de transporte.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var payload []byte
	if cl.body != nil {
		var err error
		payload, err = json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("api: serializar request: %w", err)
		}
	}

	attempts := 1
	if cl.method == http.MethodGet {
		attempts += c.readRetries
	}

	var (
		status int
		raw    []byte
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		status, raw, err = c.roundTrip(ctx, cl, payload)
		if err == nil {
			break
		}
		c.log.Warn().Err(err).Str("method", cl.method).Str("path", cl.path).
			Int("intento", attempt).Msg("api: fallo de transporte")
		if attempt == attempts || ctx.Err() != nil {
			return connectionError(err)
		}
		select {
		case <-ctx.Done():
			return connectionError(ctx.Err())
		case <-time.After(c.retryBackoff):
		}
	}

	if status < 200 || status > 299 {
		derr := c.statusError(cl, status, raw)
		c.log.Debug().Int("status", status).Str("path", cl.path).Str("error", derr.Error()).Msg("api: respuesta de error")
		return derr
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		if cl.validate == nil || cl.allowEmpty {
			return nil
		}
		return schemaError(cl.path, errors.New("respuesta vacía"), c.log)
	}
	if cl.validate != nil {
		if err := cl.validate(raw); err != nil {
			return schemaError(cl.path, err, c.log)
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return schemaError(cl.path, err, c.log)
	}
	return nil
}

// roundTrip hace un intento con su propio timeout. err != nil sólo ante fallo de transporte.
func (c *Client) roundTrip(ctx context.Context, cl call, payload []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("api: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(cl.method, cl.resource, "error", time.Since(start))
		return 0, nil, fmt.Errorf("api: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.observe(cl.method, cl.resource, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("api: leer respuesta: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) statusError(cl call, status int, raw []byte) *domain.Error {
	var body dto.ErrorResponse
	_ = json.Unmarshal(raw, &body)
	derr := mapStatus(status, body, cl.resource, cl.public)
	if status == http.StatusUnauthorized && !cl.public {
		c.unauthorized()
	}
	return derr
}
