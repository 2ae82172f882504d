package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/inventory"
)

func entrada(q int) inventory.Step { return inventory.Step{Type: entity.MovementEntrada, Quantity: q} }
func saida(q int) inventory.Step   { return inventory.Step{Type: entity.MovementSaida, Quantity: q} }
func ajuste(t int) inventory.Step  { return inventory.Step{Type: entity.MovementAjuste, Target: t} }

// Queijo con stock 5: entrada 10 -> 15; saida 20 -> 0 (se recorta, nunca negativo).
func TestApply_Queijo(t *testing.T) {
	res, err := inventory.Apply(5, entrada(10))
	require.NoError(t, err)
	assert.Equal(t, 15, res.New)
	assert.Equal(t, 10, res.Quantity)

	res, err = inventory.Apply(res.New, saida(20))
	require.NoError(t, err)
	assert.Equal(t, 0, res.New)
	assert.Equal(t, 15, res.Previous)
	assert.Equal(t, 20, res.Quantity, "se registra la cantidad pedida aunque el stock se recorte")
}

func TestApply_AjusteRegistraDiferencia(t *testing.T) {
	res, err := inventory.Apply(12, ajuste(4))
	require.NoError(t, err)
	assert.Equal(t, 4, res.New)
	assert.Equal(t, 8, res.Quantity)

	res, err = inventory.Apply(4, ajuste(9))
	require.NoError(t, err)
	assert.Equal(t, 9, res.New)
	assert.Equal(t, 5, res.Quantity)
}

func TestApply_Invalidos(t *testing.T) {
	cases := []struct {
		name    string
		current int
		step    inventory.Step
	}{
		{"entrada cero", 3, entrada(0)},
		{"saida negativa", 3, saida(-1)},
		{"ajuste negativo", 3, ajuste(-2)},
		{"ajuste sin cambio", 3, ajuste(3)},
		{"tipo desconocido", 3, inventory.Step{Type: "transfer", Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inventory.Apply(tc.current, tc.step)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// El stock final coincide con el fold movimiento a movimiento y nunca es negativo.
func TestFold_NuncaNegativo(t *testing.T) {
	steps := []inventory.Step{
		entrada(7), saida(3), saida(10), entrada(2), ajuste(11), saida(4), saida(4), saida(4), entrada(1),
	}
	cur := 0
	for _, s := range steps {
		res, err := inventory.Apply(cur, s)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.New, 0)
		cur = res.New
	}

	final, err := inventory.Fold(0, steps)
	require.NoError(t, err)
	assert.Equal(t, cur, final)
	assert.Equal(t, 1, final)
}

func TestFold_PropagaError(t *testing.T) {
	_, err := inventory.Fold(0, []inventory.Step{entrada(1), ajuste(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
