package filtros_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolink/crud-clientes/internal/application/filtros"
	"github.com/ecolink/crud-clientes/internal/domain"
	"github.com/ecolink/crud-clientes/internal/domain/entity"
)

func ptr(s string) *string { return &s }

func cliente(id int64, zona string, contratacion *string) entity.Client {
	return entity.Client{ID: id, Zone: zona, Name: "C", Contracting: contratacion}
}

func ids(cs []entity.Client) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestApply_SinFiltrosPasanTodos(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	cs := []entity.Client{cliente(1, "Norte", nil), cliente(2, "Sur", nil)}

	assert.Equal(t, []int64{1, 2}, ids(s.Apply(cs)))
	assert.Equal(t, 0, s.ActiveCount())
}

func TestApply_CategoricoPorPertenencia(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetCategorical(entity.FieldZone, "Norte", true))
	require.NoError(t, s.SetCategorical(entity.FieldZone, "Oeste", true))
	cs := []entity.Client{cliente(1, "Norte", nil), cliente(2, "Sur", nil), cliente(3, "Oeste", nil)}

	assert.Equal(t, []int64{1, 3}, ids(s.Apply(cs)))

	require.NoError(t, s.SetCategorical(entity.FieldZone, "Norte", false))
	assert.Equal(t, []int64{3}, ids(s.Apply(cs)))
}

func TestApply_CategoricoNuloComparaComoPlaceholder(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetCategorical(entity.FieldPriority, entity.NullPlaceholder, true))
	alta := cliente(1, "Norte", nil)
	alta.Priority = ptr("Alta")
	sinPrioridad := cliente(2, "Norte", nil)

	assert.Equal(t, []int64{2}, ids(s.Apply([]entity.Client{alta, sinPrioridad})))
}

func TestApply_VariosCamposSeCombinanConY(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetCategorical(entity.FieldZone, "Norte", true))
	require.NoError(t, s.SetCategorical(entity.FieldWeek, "2", true))
	a := cliente(1, "Norte", nil)
	a.Week = ptr("2")
	b := cliente(2, "Norte", nil)
	b.Week = ptr("1")

	assert.Equal(t, []int64{1}, ids(s.Apply([]entity.Client{a, b})))
	assert.Equal(t, 2, s.ActiveCount())
}

func TestApply_RangoContratacionDesde(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetDateRange(entity.FieldContracting, filtros.Range{Desde: "01/01/2024"}, true))
	cs := []entity.Client{
		cliente(1, "N", ptr("15/06/2024")),
		cliente(2, "N", ptr("01/01/2023")),
		cliente(3, "N", nil),
	}

	assert.Equal(t, []int64{1}, ids(s.Apply(cs)))
}

func TestApply_RangoInclusivoEnAmbosExtremos(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetDateRange(entity.FieldContracting, filtros.Range{Desde: "01/03/2024", Hasta: "31/03/2024"}, true))
	cs := []entity.Client{
		cliente(1, "N", ptr("01/03/2024")),
		cliente(2, "N", ptr("31/03/2024")),
		cliente(3, "N", ptr("29/02/2024")),
		cliente(4, "N", ptr("01/04/2024")),
	}

	assert.Equal(t, []int64{1, 2}, ids(s.Apply(cs)))
}

func TestApply_SoloHasta(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetDateRange(entity.FieldContracting, filtros.Range{Hasta: "10/01/2024"}, true))
	cs := []entity.Client{cliente(1, "N", ptr("10/01/2024")), cliente(2, "N", ptr("11/01/2024"))}

	assert.Equal(t, []int64{1}, ids(s.Apply(cs)))
}

func TestApply_FechaMalFormadaExcluyeYRegistraAviso(t *testing.T) {
	var buf bytes.Buffer
	s := filtros.NewStore(zerolog.New(&buf))
	require.NoError(t, s.SetDateRange(entity.FieldContracting, filtros.Range{Desde: "01/01/2024"}, true))
	cs := []entity.Client{cliente(1, "N", ptr("2024-06-15")), cliente(2, "N", ptr("15/06/2024"))}

	assert.Equal(t, []int64{2}, ids(s.Apply(cs)))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "2024-06-15")
}

func TestApply_ExtremoInvalidoExcluye(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetDateRange(entity.FieldContracting, filtros.Range{Desde: "ayer"}, true))

	assert.Empty(t, s.Apply([]entity.Client{cliente(1, "N", ptr("15/06/2024"))}))
}

func TestSetDateRange_RecortaYLimpia(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetDateRange(entity.FieldDebtDate, filtros.Range{Desde: " 01/01/2024 ", Hasta: ""}, true))
	assert.Equal(t, filtros.Range{Desde: "01/01/2024"}, s.Snapshot().Dates[entity.FieldDebtDate])

	require.NoError(t, s.SetDateRange(entity.FieldDebtDate, filtros.Range{Desde: "01/01/2024"}, false))
	assert.Equal(t, filtros.Range{}, s.Snapshot().Dates[entity.FieldDebtDate])

	require.NoError(t, s.SetDateRange(entity.FieldDebtDate, filtros.Range{Desde: "  ", Hasta: ""}, true))
	assert.Equal(t, filtros.Range{}, s.Snapshot().Dates[entity.FieldDebtDate])
}

func TestClearAll_LimpiaCategoricosYConservaFechas(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	require.NoError(t, s.SetCategorical(entity.FieldZone, "Norte", true))
	require.NoError(t, s.SetDateRange(entity.FieldContracting, filtros.Range{Desde: "01/01/2024"}, true))

	s.ClearAll()

	snap := s.Snapshot()
	assert.Empty(t, snap.Categorical[entity.FieldZone])
	assert.Equal(t, "01/01/2024", snap.Dates[entity.FieldContracting].Desde)
	assert.Equal(t, 1, s.ActiveCount())

	s.ClearDates()
	assert.Equal(t, 0, s.ActiveCount())
}

func TestSnapshot_EstadoCompletoYAislado(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	snap := s.Snapshot()
	assert.Len(t, snap.Categorical, len(entity.ManagedFields))
	assert.Len(t, snap.Dates, len(entity.DateFields))

	snap.Categorical[entity.FieldZone] = append(snap.Categorical[entity.FieldZone], "X")
	assert.Empty(t, s.Snapshot().Categorical[entity.FieldZone])
}

func TestCampoDesconocido_ErrorDeValidacion(t *testing.T) {
	s := filtros.NewStore(zerolog.Nop())
	assert.ErrorIs(t, s.SetCategorical(entity.FieldName, "Ana", true), domain.ErrValidation)
	assert.ErrorIs(t, s.SetDateRange(entity.FieldZone, filtros.Range{Desde: "01/01/2024"}, true), domain.ErrValidation)
}

func TestUniqueValues_OrdenadosYConPlaceholder(t *testing.T) {
	a := cliente(1, "Sur", nil)
	a.Priority = ptr("Media")
	b := cliente(2, "Norte", nil)
	b.Priority = ptr("Alta")
	c := cliente(3, "Sur", nil)

	cs := []entity.Client{a, b, c}
	assert.Equal(t, []string{"Norte", "Sur"}, filtros.UniqueValues(cs, entity.FieldZone))
	assert.Equal(t, []string{"Alta", "Media", entity.NullPlaceholder}, filtros.UniqueValues(cs, entity.FieldPriority))
	assert.Empty(t, filtros.UniqueValues(nil, entity.FieldZone))
}
