// Package keyring persiste el estado de sesión en el llavero del sistema operativo.
package keyring

import (
	"context"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

// DefaultService nombre del servicio bajo el que se guardan las claves.
const DefaultService = "ecolink-clientes"

var _ repository.KeyValueStore = (*Store)(nil)

// Store almacén clave-valor sobre el llavero del sistema. Los valores se guardan como texto.
type Store struct {
	service string
}

// New crea el almacén. Un service vacío usa DefaultService.
func New(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Get devuelve (nil, nil) si la clave no existe.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	v, err := gokeyring.Get(s.service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer llavero[%s]: %w", key, err)
	}
	return []byte(v), nil
}

// Set guarda value bajo key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := gokeyring.Set(s.service, key, string(value)); err != nil {
		return fmt.Errorf("guardar llavero[%s]: %w", key, err)
	}
	return nil
}

// Delete elimina key; no falla si no existe.
func (s *Store) Delete(_ context.Context, key string) error {
	err := gokeyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("borrar llavero[%s]: %w", key, err)
	}
	return nil
}
