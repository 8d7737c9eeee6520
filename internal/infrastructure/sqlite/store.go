// Package sqlite persiste el estado de sesión del cliente en un archivo SQLite local.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // driver "sqlite" en Go puro

	"github.com/ecolink/crud-clientes/internal/domain/repository"
	"github.com/ecolink/crud-clientes/internal/infrastructure/sqlite/migrations"
)

var _ repository.KeyValueStore = (*Store)(nil)

// goose usa estado global para el FS base y el dialecto.
var gooseMu sync.Mutex

// Migrate aplica las migraciones embebidas. Es idempotente.
func Migrate(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("dialecto goose: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migraciones: %w", err)
	}
	return nil
}

// Store almacén clave-valor sobre la tabla sesion.
type Store struct {
	db *sql.DB
}

// Open abre (o crea) la base en dsn y aplica las migraciones.
// Usar ":memory:" para una base efímera.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// :memory: crea una base por conexión.
	db.SetMaxOpenConns(1)
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// New envuelve una base ya migrada.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get devuelve (nil, nil) si la clave no existe.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM sesion WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer sesion[%s]: %w", key, err)
	}
	return value, nil
}

// Set inserta o reemplaza el valor de key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sesion (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("guardar sesion[%s]: %w", key, err)
	}
	return nil
}

// Delete elimina key; no falla si no existe.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sesion WHERE key = ?`, key); err != nil {
		return fmt.Errorf("borrar sesion[%s]: %w", key, err)
	}
	return nil
}
