// Package memoria implementa en memoria el almacén de sesión del cliente y el estado
// del backend de desarrollo.
package memoria

import (
	"context"
	"sync"

	"github.com/ecolink/crud-clientes/internal/domain/repository"
)

var _ repository.KeyValueStore = (*KV)(nil)

// KV almacén clave-valor en memoria. La sesión se pierde al terminar el proceso.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKV crea un almacén vacío.
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Get devuelve (nil, nil) si la clave no existe.
func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Set guarda una copia de value.
func (s *KV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete elimina key; no falla si no existe.
func (s *KV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
