package entity

// Category representa un valor gestionable de un campo del cliente (ej. una zona).
// DeleteAt es la fecha (DD/MM/YYYY) en que se marcó como eliminado; nil si está vigente.
type Category struct {
	ID       int64
	Field    Field
	Value    string
	Color    *string // hex (#RRGGBB) o nil
	DeleteAt *string
}

// CategoryOption valor disponible para un campo gestionable, tal como lo lista el registro.
type CategoryOption struct {
	Value string
	Color *string
}

// Option devuelve la opción que representa c.
func (c *Category) Option() CategoryOption {
	return CategoryOption{Value: c.Value, Color: c.Color}
}

// Deleted indica si la categoría tiene marca de eliminación.
func (c *Category) Deleted() bool {
	return c.DeleteAt != nil
}
