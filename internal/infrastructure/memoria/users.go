package memoria

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var (
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.RegistrationRepository = (*RegistrationRepo)(nil)
)

// UserRepo usuarios del backend de desarrollo. El email se compara sin distinguir mayúsculas.
type UserRepo struct {
	mu     sync.RWMutex
	byID   map[int64]entity.User
	resets map[string]entity.PasswordReset
	nextID int64
}

// NewUserRepo crea el repositorio vacío.
func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[int64]entity.User), resets: make(map[string]entity.PasswordReset), nextID: 1}
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// Create asigna el ID. Falla con ErrConflict si el email ya existe.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrConflict
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.byID[u.ID] = *u
	return nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *UserRepo) SaveReset(_ context.Context, reset entity.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets[reset.Token] = reset
	return nil
}

func (r *UserRepo) TakeReset(_ context.Context, token string) (*entity.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reset, ok := r.resets[token]
	if !ok {
		return nil, nil
	}
	delete(r.resets, token)
	return &reset, nil
}

// RegistrationRepo solicitudes de registro del backend de desarrollo.
type RegistrationRepo struct {
	mu     sync.RWMutex
	byID   map[int64]entity.RegistrationRequest
	nextID int64
}

// NewRegistrationRepo crea el repositorio vacío.
func NewRegistrationRepo() *RegistrationRepo {
	return &RegistrationRepo{byID: make(map[int64]entity.RegistrationRequest), nextID: 1}
}

// List devuelve las solicitudes, las más recientes primero.
func (r *RegistrationRepo) List(_ context.Context) ([]entity.RegistrationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.RegistrationRequest, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *RegistrationRepo) GetByID(_ context.Context, id int64) (*entity.RegistrationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *RegistrationRepo) FindByToken(_ context.Context, token string) (*entity.RegistrationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.byID {
		if req.VerificationToken == token {
			return &req, nil
		}
	}
	return nil, nil
}

// FindByEmail devuelve la solicitud más reciente del email.
func (r *RegistrationRepo) FindByEmail(_ context.Context, email string) (*entity.RegistrationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *entity.RegistrationRequest
	for _, req := range r.byID {
		if !strings.EqualFold(req.Email, email) {
			continue
		}
		if found == nil || req.ID > found.ID {
			req := req
			found = &req
		}
	}
	return found, nil
}

func (r *RegistrationRepo) Create(_ context.Context, req *entity.RegistrationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	r.byID[req.ID] = *req
	return nil
}

func (r *RegistrationRepo) Update(_ context.Context, req *entity.RegistrationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[req.ID] = *req
	return nil
}
