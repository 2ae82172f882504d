package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/application/inventory"
)

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", formatBRL(decimal.Zero))
	assert.Equal(t, "R$ 270,00", formatBRL(decimal.NewFromInt(270)))
	assert.Equal(t, "R$ 1.234,50", formatBRL(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "R$ 1.000.000,00", formatBRL(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-R$ 12,30", formatBRL(decimal.RequireFromString("-12.3")))
}

func TestRenderStockReport_GeneraPDF(t *testing.T) {
	cost := decimal.RequireFromString("45.00")
	report := inventory.StockReport{
		Title:       "Posição de estoque - Pizzaria Bella",
		GeneratedAt: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
		Rows: []inventory.StockReportRow{
			{Name: "Mussarela", Unit: "kg", CurrentStock: 2, MinStock: 5, CostPrice: &cost, LowStock: true},
			{Name: "Farinha", Unit: "kg", CurrentStock: 30, MinStock: 10},
		},
		TotalValue: decimal.NewFromInt(90),
	}
	out, err := NewStockReportRenderer().RenderStockReport(context.Background(), report)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderStockReport_SinFilas(t *testing.T) {
	out, err := NewStockReportRenderer().RenderStockReport(context.Background(), inventory.StockReport{
		Title: "Posição de estoque - todas as empresas", GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
