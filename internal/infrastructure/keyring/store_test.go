package keyring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/ecolink/crud-clientes/internal/domain/repository"
	"github.com/ecolink/crud-clientes/internal/infrastructure/keyring"
)

func TestStore_CicloCompleto(t *testing.T) {
	gokeyring.MockInit()
	s := keyring.New("")
	ctx := context.Background()

	v, err := s.Get(ctx, repository.KeyToken)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Set(ctx, repository.KeyToken, []byte("tok-abc")))
	v, err = s.Get(ctx, repository.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", string(v))

	require.NoError(t, s.Delete(ctx, repository.KeyToken))
	require.NoError(t, s.Delete(ctx, repository.KeyToken), "borrar dos veces no falla")
}

func TestStore_ErrorDelLlavero(t *testing.T) {
	boom := errors.New("llavero bloqueado")
	gokeyring.MockInitWithError(boom)
	t.Cleanup(gokeyring.MockInit)
	s := keyring.New("pruebas")

	_, err := s.Get(context.Background(), repository.KeyUser)
	assert.ErrorIs(t, err, boom)
}
