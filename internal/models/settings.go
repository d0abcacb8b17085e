package models

import "time"

// Umbral de rebalanceo por defecto (porcentaje de desviación relativa)
const DefaultThreshold = 12.0

// Efectivo que se restaura al reiniciar los datos del usuario
const DefaultResetCash = 234000.0

// Settings guarda el efectivo y el umbral de rebalanceo de cada usuario
type Settings struct {
	UserID    string    `json:"user_id"`
	Cash      float64   `json:"cash"`      // Puede ser negativo; se marca como advertencia, no se rechaza
	Threshold float64   `json:"threshold"` // Porcentaje, debe ser mayor que 0
	UpdatedAt time.Time `json:"updated_at"`
}
