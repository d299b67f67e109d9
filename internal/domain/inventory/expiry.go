package inventory

import "time"

// ExpiryStatus clasificación de un lote según su fecha de vencimiento.
type ExpiryStatus string

const (
	StatusExpired      ExpiryStatus = "vencido"
	StatusExpiringSoon ExpiryStatus = "por_vencer"
	StatusHealthy      ExpiryStatus = "vigente"
	StatusNoExpiry     ExpiryStatus = "sin_vencimiento"
)

// DefaultExpiringSoonDays umbral por defecto para "por vencer".
const DefaultExpiringSoonDays = 30

// ClassifyExpiry clasifica un vencimiento respecto de today. Función pura de las fechas
// (ambas truncadas al día en la zona de today):
//
//	días < 0            → vencido
//	0 ≤ días ≤ umbral   → por_vencer
//	días > umbral       → vigente
func ClassifyExpiry(expiry *time.Time, today time.Time, thresholdDays int) ExpiryStatus {
	if expiry == nil {
		return StatusNoExpiry
	}
	days := DaysUntil(*expiry, today)
	switch {
	case days < 0:
		return StatusExpired
	case days <= thresholdDays:
		return StatusExpiringSoon
	default:
		return StatusHealthy
	}
}

// DaysUntil días calendario entre today y expiry (negativo si ya pasó).
func DaysUntil(expiry, today time.Time) int {
	loc := today.Location()
	e := truncateDay(expiry.In(loc))
	t := truncateDay(today)
	// Round absorbe los cambios de horario de verano (días de 23 o 25 horas).
	return int(e.Sub(t).Round(24*time.Hour) / (24 * time.Hour))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
