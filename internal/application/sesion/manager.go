// Package sesion administra la sesión del usuario: credenciales, expiración por
// inactividad y el flujo de registro y aprobación de cuentas.
package sesion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/application/dto"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
	pkgjwt "github.com/ecolink/crud-clientes/pkg/jwt"
)

// Status estado de la máquina de sesión.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusExpired        Status = "expired"
)

// Mensajes de error de sesión.
const (
	MsgInvalidSession = "Sesión inválida"
	MsgLoadSession    = "Error al cargar sesión"
	MsgLoginFailed    = "Error al iniciar sesión"
)

// Valores por defecto.
const (
	DefaultTimeout       = 20 * time.Minute
	DefaultCheckInterval = 60 * time.Second
	DefaultRedirectDelay = 2 * time.Second
)

// State vista de la sesión. IsAuthenticated exige usuario, token y que no haya
// vencido el plazo de inactividad.
type State struct {
	Status          Status
	User            *entity.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Options parámetros del Manager. Los valores cero usan los valores por defecto.
type Options struct {
	Timeout       time.Duration
	CheckInterval time.Duration
	RedirectDelay time.Duration
	Now           func() time.Time
	// OnChange recibe cada nuevo estado. Se invoca fuera de los locks internos.
	OnChange func(State)
}

// Manager contexto de sesión. Se construye explícitamente y se comparte por referencia;
// Init arranca el control periódico de expiración y Dispose lo detiene.
type Manager struct {
	auth  repository.AuthGateway
	store repository.KeyValueStore
	nav   repository.Navigator
	log   zerolog.Logger
	opts  Options

	mu              sync.RWMutex
	status          Status
	user            *entity.User
	token           string
	lastAccess      time.Time
	loading         bool
	err             string
	requests        []entity.RegistrationRequest
	requestsLoading bool

	lifeMu   sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	redirect *time.Timer
}

// NewManager construye el contexto de sesión. Queda en estado anónimo hasta Init.
func NewManager(auth repository.AuthGateway, store repository.KeyValueStore, nav repository.Navigator, log zerolog.Logger, opts Options) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		auth:    auth,
		store:   store,
		nav:     nav,
		log:     log,
		opts:    opts,
		status:  StatusAnonymous,
		loading: true,
	}
}

// Init restaura la sesión persistida y arranca el control periódico de expiración.
// Una sesión vencida se cierra y se navega al login.
func (m *Manager) Init(ctx context.Context) error {
	defer m.startTicker()

	expired, err := m.persistedExpired(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("sesion: no se pudo leer el último acceso")
	}
	if expired {
		m.expire(ctx, "inactividad al iniciar")
		return nil
	}

	restoreErr := m.restore(ctx)
	if err := m.touch(ctx); err != nil {
		m.log.Warn().Err(err).Msg("sesion: no se pudo registrar el último acceso")
	}
	m.emit()
	return restoreErr
}

func (m *Manager) restore(ctx context.Context) error {
	token, err := m.store.Get(ctx, repository.KeyToken)
	if err != nil {
		m.setAnonymous(MsgLoadSession)
		return fmt.Errorf("leer token: %w", err)
	}
	raw, err := m.store.Get(ctx, repository.KeyUser)
	if err != nil {
		m.setAnonymous(MsgLoadSession)
		return fmt.Errorf("leer usuario: %w", err)
	}
	if len(token) == 0 || len(raw) == 0 {
		m.setAnonymous("")
		return nil
	}

	user, err := decodeUser(raw)
	if err != nil {
		m.log.Warn().Err(err).Msg("sesion: usuario persistido inválido, se descarta")
		_ = m.store.Delete(ctx, repository.KeyToken)
		_ = m.store.Delete(ctx, repository.KeyUser)
		m.setAnonymous(MsgInvalidSession)
		return nil
	}
	if exp, ok := pkgjwt.ExpiresAt(string(token)); ok && !exp.After(m.opts.Now()) {
		m.log.Info().Time("exp", exp).Msg("sesion: token persistido vencido")
		m.clear(ctx)
		m.setAnonymous("")
		return nil
	}

	m.mu.Lock()
	m.user = user
	m.token = string(token)
	m.status = StatusAuthenticated
	m.loading = false
	m.err = ""
	m.mu.Unlock()
	m.log.Info().Int64("usuario_id", user.ID).Str("rol", string(user.Role)).Msg("sesion: sesión restaurada")
	return nil
}

// Dispose detiene el control periódico y cancela la redirección pendiente. Es idempotente.
func (m *Manager) Dispose() {
	m.lifeMu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	if m.redirect != nil {
		m.redirect.Stop()
		m.redirect = nil
	}
	m.lifeMu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
}

func (m *Manager) startTicker() {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	if m.stop != nil {
		return
	}
	stop, done := make(chan struct{}), make(chan struct{})
	m.stop, m.done = stop, done
	ticker := time.NewTicker(m.opts.CheckInterval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.CheckTimeout(context.Background())
			}
		}
	}()
}

// CheckTimeout cierra la sesión y navega al login si venció el plazo de inactividad.
// Devuelve true si la sesión expiró.
func (m *Manager) CheckTimeout(ctx context.Context) bool {
	expired, err := m.persistedExpired(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("sesion: no se pudo leer el último acceso")
		return false
	}
	if !expired {
		return false
	}
	m.expire(ctx, "inactividad")
	return true
}

// HandleUnauthorized reacciona a un 401 de la API: cierra la sesión y navega al login.
func (m *Manager) HandleUnauthorized() {
	m.log.Warn().Msg("sesion: la API rechazó el token, se cierra la sesión")
	m.Logout(context.Background())
	m.navigate(repository.PathLogin)
}

func (m *Manager) expire(ctx context.Context, reason string) {
	m.mu.Lock()
	m.status = StatusExpired
	m.mu.Unlock()
	m.emit()
	m.log.Info().Str("motivo", reason).Msg("sesion: sesión expirada")
	m.Logout(ctx)
	m.navigate(repository.PathLogin)
}

// persistedExpired compara el último acceso persistido con el plazo. Sin registro no hay expiración.
func (m *Manager) persistedExpired(ctx context.Context) (bool, error) {
	raw, err := m.store.Get(ctx, repository.KeyLastAccess)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		m.log.Warn().Str("valor", string(raw)).Msg("sesion: último acceso ilegible")
		return false, nil
	}
	last := time.UnixMilli(ms)
	m.mu.Lock()
	m.lastAccess = last
	m.mu.Unlock()
	return m.opts.Now().Sub(last) > m.opts.Timeout, nil
}

// touch registra ahora como último acceso.
func (m *Manager) touch(ctx context.Context) error {
	now := m.opts.Now()
	m.mu.Lock()
	m.lastAccess = now
	m.mu.Unlock()
	return m.store.Set(ctx, repository.KeyLastAccess, []byte(strconv.FormatInt(now.UnixMilli(), 10)))
}

// Login intercambia credenciales por una sesión y la persiste.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	prev := m.status
	m.status = StatusAuthenticating
	m.loading = true
	m.err = ""
	m.mu.Unlock()
	m.emit()

	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.fail(prev, err, MsgLoginFailed)
		m.log.Info().Str("email", email).Msg("sesion: login rechazado")
		return err
	}
	if err := m.establish(ctx, res); err != nil {
		m.fail(prev, err, MsgLoginFailed)
		return err
	}
	m.log.Info().Int64("usuario_id", res.User.ID).Str("rol", string(res.User.Role)).Msg("sesion: login correcto")
	return nil
}

func (m *Manager) fail(prev Status, err error, fallback string) {
	msg := domain.MessageOf(err)
	if msg == "" {
		msg = fallback
	}
	m.mu.Lock()
	if prev == StatusAuthenticated {
		m.status = prev
	} else {
		m.status = StatusAnonymous
	}
	m.loading = false
	m.err = msg
	m.mu.Unlock()
	m.emit()
}

// establish persiste token, usuario y último acceso y marca la sesión como autenticada.
func (m *Manager) establish(ctx context.Context, res *repository.AuthResult) error {
	if res == nil || res.User == nil || res.Token == "" {
		return &domain.Error{Kind: domain.ErrSchema, Fields: []domain.FieldError{{Field: domain.FieldGeneral, Message: "Respuesta de sesión incompleta"}}}
	}
	raw, err := encodeUser(res.User)
	if err != nil {
		return fmt.Errorf("serializar usuario: %w", err)
	}
	if err := m.store.Set(ctx, repository.KeyToken, []byte(res.Token)); err != nil {
		return fmt.Errorf("guardar token: %w", err)
	}
	if err := m.store.Set(ctx, repository.KeyUser, raw); err != nil {
		return fmt.Errorf("guardar usuario: %w", err)
	}
	if err := m.touch(ctx); err != nil {
		return fmt.Errorf("guardar último acceso: %w", err)
	}
	user := *res.User
	m.mu.Lock()
	m.user = &user
	m.token = res.Token
	m.status = StatusAuthenticated
	m.loading = false
	m.err = ""
	m.mu.Unlock()
	m.emit()
	return nil
}

// Logout borra token, usuario y último acceso.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx)
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.status = StatusAnonymous
	m.loading = false
	m.err = ""
	m.requests = nil
	m.lastAccess = time.Time{}
	m.mu.Unlock()
	m.emit()
}

func (m *Manager) clear(ctx context.Context) {
	for _, k := range []string{repository.KeyToken, repository.KeyUser, repository.KeyLastAccess} {
		if err := m.store.Delete(ctx, k); err != nil {
			m.log.Error().Err(err).Str("clave", k).Msg("sesion: no se pudo borrar la sesión persistida")
		}
	}
}

// Register crea una solicitud de alta pendiente. No autentica.
func (m *Manager) Register(ctx context.Context, email, name string, role entity.Role) (string, error) {
	if !role.Valid() {
		return "", domain.NewValidationError(domain.FieldError{Field: "rol", Message: "Rol inválido"})
	}
	res, err := m.auth.Register(ctx, email, name, role)
	if err != nil {
		return "", err
	}
	m.log.Info().Str("email", email).Int64("solicitud_id", res.RequestID).Msg("sesion: solicitud de registro creada")
	return res.Message, nil
}

// VerifyEmail canjea el token de verificación por una sesión y programa la
// navegación a la lista de clientes.
func (m *Manager) VerifyEmail(ctx context.Context, token string) (string, error) {
	res, err := m.auth.VerifyEmail(ctx, token)
	if err != nil {
		return "", err
	}
	if err := m.establish(ctx, res); err != nil {
		return "", err
	}
	m.lifeMu.Lock()
	if m.redirect != nil {
		m.redirect.Stop()
	}
	m.redirect = time.AfterFunc(m.opts.RedirectDelay, func() { m.navigate(repository.PathClients) })
	m.lifeMu.Unlock()
	return res.Message, nil
}

// ResendVerification reenvía el email de verificación.
func (m *Manager) ResendVerification(ctx context.Context, email string) (string, error) {
	res, err := m.auth.ResendVerification(ctx, email)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

// RequestPasswordReset pide el email de restablecimiento de contraseña.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	res, err := m.auth.RequestPasswordReset(ctx, email)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

// ConfirmPasswordReset fija la nueva contraseña. Con sesión abierta renueva el último acceso.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, token, password string) (string, error) {
	res, err := m.auth.ConfirmPasswordReset(ctx, token, password)
	if err != nil {
		return "", err
	}
	if m.State().IsAuthenticated {
		if err := m.touch(ctx); err != nil {
			m.log.Warn().Err(err).Msg("sesion: no se pudo registrar el último acceso")
		}
	}
	return res.Message, nil
}

// RefreshProfile vuelve a leer el perfil del usuario autenticado.
func (m *Manager) RefreshProfile(ctx context.Context) (*entity.User, error) {
	if !m.State().IsAuthenticated {
		return nil, domain.ErrNotAuthenticated
	}
	u, err := m.auth.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.saveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile cambia el nombre del usuario autenticado y renueva el último acceso.
func (m *Manager) UpdateProfile(ctx context.Context, name string) (string, error) {
	if !m.State().IsAuthenticated {
		return "", domain.ErrNotAuthenticated
	}
	res, err := m.auth.UpdateProfile(ctx, name)
	if err != nil {
		return "", err
	}
	if res.User != nil {
		if err := m.saveUser(ctx, res.User); err != nil {
			return "", err
		}
	}
	if err := m.touch(ctx); err != nil {
		m.log.Warn().Err(err).Msg("sesion: no se pudo registrar el último acceso")
	}
	return res.Message, nil
}

func (m *Manager) saveUser(ctx context.Context, u *entity.User) error {
	raw, err := encodeUser(u)
	if err != nil {
		return fmt.Errorf("serializar usuario: %w", err)
	}
	if err := m.store.Set(ctx, repository.KeyUser, raw); err != nil {
		return fmt.Errorf("guardar usuario: %w", err)
	}
	user := *u
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	m.emit()
	return nil
}

// LoadRequests carga las solicitudes de registro. Para usuarios no ADMIN no hace nada.
func (m *Manager) LoadRequests(ctx context.Context) error {
	if !m.isAdmin() {
		m.log.Debug().Msg("sesion: usuario no ADMIN, no se cargan solicitudes")
		return nil
	}
	m.mu.Lock()
	m.requestsLoading = true
	m.mu.Unlock()

	reqs, err := m.auth.ListRequests(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsLoading = false
	if err != nil {
		m.log.Error().Err(err).Msg("sesion: error al cargar solicitudes")
		return fmt.Errorf("cargar solicitudes: %w", err)
	}
	m.requests = reqs
	return nil
}

// ApproveRequest aprueba una solicitud con la contraseña inicial (sólo ADMIN).
func (m *Manager) ApproveRequest(ctx context.Context, requestID int64, password string) (string, error) {
	if !m.isAdmin() {
		return "", domain.ErrPermissionDenied
	}
	res, err := m.auth.ApproveRequest(ctx, requestID, password)
	if err != nil {
		return "", err
	}
	m.log.Info().Int64("solicitud_id", requestID).Msg("sesion: solicitud aprobada")
	m.reloadRequests(ctx)
	return res.Message, nil
}

// RejectRequest rechaza una solicitud con un motivo opcional (sólo ADMIN).
func (m *Manager) RejectRequest(ctx context.Context, requestID int64, reason *string) (string, error) {
	if !m.isAdmin() {
		return "", domain.ErrPermissionDenied
	}
	res, err := m.auth.RejectRequest(ctx, requestID, reason)
	if err != nil {
		return "", err
	}
	m.log.Info().Int64("solicitud_id", requestID).Msg("sesion: solicitud rechazada")
	m.reloadRequests(ctx)
	return res.Message, nil
}

func (m *Manager) reloadRequests(ctx context.Context) {
	if err := m.LoadRequests(ctx); err != nil {
		m.log.Warn().Err(err).Msg("sesion: no se pudo recargar solicitudes")
	}
}

// Requests copia de las solicitudes cargadas.
func (m *Manager) Requests() []entity.RegistrationRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.RegistrationRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsLoading indica si hay una carga de solicitudes en curso.
func (m *Manager) RequestsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestsLoading
}

// Token implementa repository.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User usuario autenticado, o nil.
func (m *Manager) User() *entity.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// State estado actual de la sesión.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() State {
	st := State{
		Status:    m.status,
		Token:     m.token,
		IsLoading: m.loading,
		Error:     m.err,
	}
	if m.user != nil {
		u := *m.user
		st.User = &u
	}
	fresh := m.lastAccess.IsZero() || m.opts.Now().Sub(m.lastAccess) <= m.opts.Timeout
	st.IsAuthenticated = m.user != nil && m.token != "" && fresh
	return st
}

func (m *Manager) isAdmin() bool {
	st := m.State()
	return st.IsAuthenticated && st.User.Role == entity.RoleAdmin
}

func (m *Manager) setAnonymous(msg string) {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.status = StatusAnonymous
	m.loading = false
	m.err = msg
	m.mu.Unlock()
}

func (m *Manager) emit() {
	if m.opts.OnChange == nil {
		return
	}
	m.opts.OnChange(m.State())
}

func (m *Manager) navigate(path string) {
	if m.nav != nil {
		m.nav.Navigate(path)
	}
}

func encodeUser(u *entity.User) ([]byte, error) {
	return json.Marshal(dto.FromUser(u))
}

func decodeUser(raw []byte) (*entity.User, error) {
	var d dto.UserDTO
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	u, err := d.ToEntity()
	if err != nil {
		return nil, err
	}
	if u.ID == 0 && u.Email == "" {
		return nil, errors.New("usuario vacío")
	}
	return &u, nil
}

// Authenticated indica si hay sesión vigente.
func (m *Manager) Authenticated() bool {
	return m.State().IsAuthenticated
}
