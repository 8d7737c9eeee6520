package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolink/crud-clientes/internal/application/usecase"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
	"github.com/ecolink/crud-clientes/internal/infrastructure/memoria"
)

func validClient(zone string) *entity.Client {
	return &entity.Client{Zone: zone, Name: "Cliente", Neighborhood: "Centro", Address: "Calle 1",
		Phone: "+5491122334455", ClientType: "Residencial"}
}

func setup() (*usecase.CategoryUseCase, *usecase.ClientUseCase) {
	clients := memoria.NewClientRepo()
	return usecase.NewCategoryUseCase(memoria.NewCategoryRepo(), clients, zerolog.Nop()),
		usecase.NewClientUseCase(clients, zerolog.Nop())
}

func TestCategoryDelete_EnUsoSeRechaza(t *testing.T) {
	cats, cls := setup()
	ctx := context.Background()
	_, err := cats.Create(ctx, entity.FieldZone, "Norte", nil)
	require.NoError(t, err)
	_, err = cls.Create(ctx, validClient("Norte"))
	require.NoError(t, err)

	err = cats.Delete(ctx, entity.FieldZone, "Norte", "15/03/2024")

	assert.ErrorIs(t, err, domain.ErrCategoryInUse)
	opts, _ := cats.Options(ctx, entity.FieldZone)
	assert.Len(t, opts, 1)
}

func TestCategoryDelete_BajaLogicaYReactivacion(t *testing.T) {
	cats, _ := setup()
	ctx := context.Background()
	_, _ = cats.Create(ctx, entity.FieldPriority, "Alta", nil)

	require.NoError(t, cats.Delete(ctx, entity.FieldPriority, "Alta", "15/03/2024"))
	opts, _ := cats.Options(ctx, entity.FieldPriority)
	assert.Empty(t, opts)

	color := "#FF0000"
	cat, err := cats.Create(ctx, entity.FieldPriority, "Alta", &color)
	require.NoError(t, err)
	assert.Nil(t, cat.DeleteAt)
	assert.Equal(t, "#FF0000", *cat.Color)
}

func TestCategoryRename_MigraClientes(t *testing.T) {
	cats, cls := setup()
	ctx := context.Background()
	_, _ = cats.Create(ctx, entity.FieldZone, "Norte", nil)
	c, _ := cls.Create(ctx, validClient("Norte"))

	_, err := cats.Rename(ctx, entity.FieldZone, "Norte", "Zona Norte", nil)
	require.NoError(t, err)

	got, _ := cls.GetByID(ctx, c.ID)
	assert.Equal(t, "Zona Norte", got.Zone)
}

func TestCategoryCreate_Validaciones(t *testing.T) {
	cats, _ := setup()
	ctx := context.Background()
	bad := "rojo"

	_, err := cats.Create(ctx, entity.FieldName, "X", nil)
	assert.ErrorIs(t, err, domain.ErrValidation, "nombre no es gestionable")
	_, err = cats.Create(ctx, entity.FieldZone, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = cats.Create(ctx, entity.FieldZone, "Sur", &bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = cats.Create(ctx, entity.FieldZone, "Sur", nil)
	require.NoError(t, err)
	_, err = cats.Create(ctx, entity.FieldZone, "Sur", nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestClientCreate_ValidaComoElCliente(t *testing.T) {
	_, cls := setup()
	c := validClient("Norte")
	c.Name = ""
	c.Phone = "123"

	_, err := cls.Create(context.Background(), c)

	require.ErrorIs(t, err, domain.ErrValidation)
	fields := domain.FieldsOf(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "nombre", fields[0].Field)
	assert.Equal(t, "telefono", fields[1].Field)
}

func TestClientUpdate_Inexistente(t *testing.T) {
	_, cls := setup()

	_, err := cls.Update(context.Background(), 99, validClient("Norte"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
