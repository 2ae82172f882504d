package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MovementObserver recibe cada movimiento confirmado (métricas).
type MovementObserver interface {
	MovementRecorded(movementType string)
}

type noopObserver struct{}

func (noopObserver) MovementRecorded(string) {}

// StockReportRow una línea del reporte de posición de stock.
type StockReportRow struct {
	Name         string
	Unit         string
	CurrentStock int
	MinStock     int
	CostPrice    *decimal.Decimal
	LowStock     bool
}

// StockReport datos del reporte de posición de stock.
type StockReport struct {
	Title       string
	GeneratedAt time.Time
	Rows        []StockReportRow
	TotalValue  decimal.Decimal
}

// StockReportRenderer genera el PDF del reporte de stock.
type StockReportRenderer interface {
	RenderStockReport(ctx context.Context, report StockReport) ([]byte, error)
}
