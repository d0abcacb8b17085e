package models

import "time"

// Tipos de eventos registrados por el ciclo de actualización
const (
	EventRebalanceNeeded = "rebalance_needed"
	EventMisconfigured   = "misconfigured"
)

// RebalanceEvent es el registro de una notificación emitida al usuario
type RebalanceEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	MaxDeviation   float64   `json:"max_deviation"`   // Solo para eventos rebalance_needed
	CombinedTarget float64   `json:"combined_target"` // Solo para eventos misconfigured
	CreatedAt      time.Time `json:"created_at"`
}
