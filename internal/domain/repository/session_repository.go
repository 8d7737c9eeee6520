package repository

import "context"

// Claves del estado de sesión persistido. Borrar las tres equivale a cerrar sesión.
const (
	KeyToken      = "token"
	KeyUser       = "usuario"
	KeyLastAccess = "last_access"
)

// KeyValueStore almacén clave-valor donde se persiste la sesión del cliente.
// Get devuelve (nil, nil) si la clave no existe; Delete es idempotente.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// TokenSource provee el token Bearer vigente ("" si no hay sesión).
type TokenSource interface {
	Token() string
}

// Navigator colaborador de navegación (pantallas/rutas fuera de este módulo).
type Navigator interface {
	Navigate(path string)
}

// Rutas a las que navega el núcleo.
const (
	PathLogin   = "/login"
	PathClients = "/clientes"
)
