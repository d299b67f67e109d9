package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementEntry  = "entrada"    // alta o reposición de lote
	MovementSale   = "venta"      // salida por venta
	MovementReturn = "devolucion" // devolución parcial de un ticket
	MovementVoid   = "anulacion"  // reingreso por ticket anulado
	MovementAdjust = "ajuste"     // edición manual de un lote
)

// StockMovement registra cada cambio en el stock de un producto (historial-stock).
type StockMovement struct {
	ID         string
	ProductID  string
	LotID      string
	Type       string
	Quantity   int // positivo entrada, negativo salida
	StockAfter int
	Reference  string // id de ticket o de lote
	UserID     string
	CreatedAt  time.Time
}
