package dto

import "github.com/shopspring/decimal"

// ChecklistProgressDTO avance de checklists de un tipo en el día.
type ChecklistProgressDTO struct {
	Type       string  `json:"type"`
	Executions int     `json:"executions"`
	Completed  int     `json:"completed"`
	Percent    float64 `json:"percent"` // ítems completados / ítems totales × 100
}

// DashboardSummaryDTO resumen del dashboard para el scope del principal.
type DashboardSummaryDTO struct {
	TotalProducts int                    `json:"total_products"`
	LowStock      int                    `json:"low_stock"`
	Suppliers     int                    `json:"suppliers"`
	Categories    int                    `json:"categories"`
	StockValue    decimal.Decimal        `json:"stock_value"`
	TodayEntradas int                    `json:"today_entradas"`
	TodaySaidas   int                    `json:"today_saidas"`
	TodayAjustes  int                    `json:"today_ajustes"`
	Checklists    []ChecklistProgressDTO `json:"checklists"`
	DateLabel     string                 `json:"date_label"` // ej. "16 de outubro de 2026"
}
