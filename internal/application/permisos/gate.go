// Package permisos deriva las capacidades de la interfaz a partir del rol del usuario.
package permisos

import (
	"github.com/rs/zerolog"

	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

// Capability acción protegida por rol.
type Capability string

const (
	CapView             Capability = "ver"
	CapCreateEdit       Capability = "crear_editar"
	CapManageCategories Capability = "gestionar_categorias"
)

// Capabilities capacidades efectivas de un usuario.
type Capabilities struct {
	CanView             bool
	CanCreateEdit       bool
	CanManageCategories bool
}

// Has indica si c incluye la capacidad pedida.
func (c Capabilities) Has(want Capability) bool {
	switch want {
	case CapView:
		return c.CanView
	case CapCreateEdit:
		return c.CanCreateEdit
	case CapManageCategories:
		return c.CanManageCategories
	}
	return false
}

// CapabilitiesFor tabla de roles: ADMIN todo, OPERADOR ver y crear/editar, LECTOR sólo ver.
// Un rol desconocido no tiene capacidades.
func CapabilitiesFor(role entity.Role) Capabilities {
	switch role {
	case entity.RoleAdmin:
		return Capabilities{CanView: true, CanCreateEdit: true, CanManageCategories: true}
	case entity.RoleOperador:
		return Capabilities{CanView: true, CanCreateEdit: true}
	case entity.RoleLector:
		return Capabilities{CanView: true}
	}
	return Capabilities{}
}

// HasRole indica si hay sesión y el rol del usuario está entre los permitidos.
func HasRole(user *entity.User, authenticated bool, allowed ...entity.Role) bool {
	if !authenticated || user == nil {
		return false
	}
	for _, r := range allowed {
		if user.Role == r {
			return true
		}
	}
	return false
}

// SessionView lo que la compuerta necesita de la sesión.
type SessionView interface {
	User() *entity.User
	Authenticated() bool
}

// Gate compuerta de permisos ligada a la sesión vigente. Es una ayuda de interfaz:
// la autorización real la hace el backend.
type Gate struct {
	session SessionView
	log     zerolog.Logger
}

// NewGate crea la compuerta sobre la sesión dada.
func NewGate(session SessionView, log zerolog.Logger) *Gate {
	return &Gate{session: session, log: log}
}

// Capabilities capacidades del usuario actual. Sin sesión, ninguna.
func (g *Gate) Capabilities() Capabilities {
	u := g.session.User()
	if u == nil || !g.session.Authenticated() {
		return Capabilities{}
	}
	return CapabilitiesFor(u.Role)
}

// Can indica si el usuario actual tiene la capacidad.
func (g *Gate) Can(want Capability) bool {
	return g.Capabilities().Has(want)
}

// HasRole indica si el usuario actual tiene alguno de los roles.
func (g *Gate) HasRole(allowed ...entity.Role) bool {
	return HasRole(g.session.User(), g.session.Authenticated(), allowed...)
}

// Allow ejecuta fn sólo si el usuario tiene la capacidad. La denegación es
// silenciosa: se registra y devuelve nil.
func (g *Gate) Allow(want Capability, fn func() error) error {
	if !g.Can(want) {
		ev := g.log.Debug().Str("capacidad", string(want))
		if u := g.session.User(); u != nil {
			ev = ev.Str("rol", string(u.Role))
		}
		ev.Msg("permisos: acción omitida por rol")
		return nil
	}
	return fn()
}
