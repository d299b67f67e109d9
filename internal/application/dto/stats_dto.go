package dto

import "github.com/shopspring/decimal"

// StatsSummaryResponse respuesta de GET /estadisticas/resumen.
type StatsSummaryResponse struct {
	TodaySales      decimal.Decimal       `json:"ventas_hoy"`
	TodayTickets    int                   `json:"tickets_hoy"`
	MonthSales      decimal.Decimal       `json:"ventas_mes"`
	MonthTickets    int                   `json:"tickets_mes"`
	InventoryValue  decimal.Decimal       `json:"valor_inventario"`
	PendingPayables decimal.Decimal       `json:"cuentas_pendientes"`
	PendingCount    int                   `json:"cuentas_pendientes_cantidad"`
	ExpiringLots    []ExpiringLotResponse `json:"lotes_por_vencer"`
	TopProducts     []TopProductResponse  `json:"productos_mas_vendidos"`
	ThresholdDays   int                   `json:"umbral_dias"`
	PeriodLabel     string                `json:"periodo"`
}

// TopProductResponse producto más vendido del mes.
type TopProductResponse struct {
	ProductID string          `json:"producto_id"`
	Name      string          `json:"nombre"`
	Units     int             `json:"unidades"`
	Revenue   decimal.Decimal `json:"ingresos"`
}
