package models

import (
	"time"

	"github.com/google/uuid"
)

// Categorías de activos soportadas
const (
	CategoryEquity     = "equity"
	CategoryCashOrBond = "cash_or_bond"
)

// Stock representa una posición del portafolio del usuario
type Stock struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Code             string    `json:"code" binding:"required"`         // Código del instrumento en el mercado
	TargetPercentage float64   `json:"target_percentage"`               // Porcentaje objetivo (ej: 20, 30, 50)
	CurrentPrice     int64     `json:"current_price"`                   // Precio actual por acción (entero)
	Quantity         int64     `json:"quantity"`                        // Cantidad de acciones en cartera
	Category         string    `json:"category"`                        // "equity" o "cash_or_bond"
	DailyVariation   float64   `json:"daily_variation"`                 // Variación porcentual respecto al cierre anterior
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CurrentValue devuelve el valor actual de la posición (precio × cantidad)
func (s Stock) CurrentValue() float64 {
	return float64(s.CurrentPrice * s.Quantity)
}

// IsValidCategory verifica que la categoría sea una de las soportadas
func IsValidCategory(category string) bool {
	return category == CategoryEquity || category == CategoryCashOrBond
}

// GenerateUUID - Función auxiliar para generar UUIDs
func GenerateUUID() string {
	return uuid.New().String()
}

// DefaultStocks devuelve el portafolio inicial que se carga al reiniciar los
// datos del usuario
func DefaultStocks(userID string) []Stock {
	return []Stock{
		{ID: GenerateUUID(), UserID: userID, Name: "KODEX 200TR", Code: "278530", TargetPercentage: 20, CurrentPrice: 11780, Quantity: 965, Category: CategoryEquity},
		{ID: GenerateUUID(), UserID: userID, Name: "코리안리", Code: "003690", TargetPercentage: 10, CurrentPrice: 8240, Quantity: 681, Category: CategoryEquity},
		{ID: GenerateUUID(), UserID: userID, Name: "맥쿼리인프라", Code: "088980", TargetPercentage: 16, CurrentPrice: 10500, Quantity: 788, Category: CategoryEquity},
		{ID: GenerateUUID(), UserID: userID, Name: "ACE KRX금현물", Code: "411060", TargetPercentage: 14, CurrentPrice: 18975, Quantity: 434, Category: CategoryEquity},
		{ID: GenerateUUID(), UserID: userID, Name: "ACE 미국30년국채액티브", Code: "476760", TargetPercentage: 8, CurrentPrice: 10065, Quantity: 434, Category: CategoryCashOrBond},
		{ID: GenerateUUID(), UserID: userID, Name: "ACE 26-06 회사채", Code: "461270", TargetPercentage: 15, CurrentPrice: 10945, Quantity: 751, Category: CategoryCashOrBond},
		{ID: GenerateUUID(), UserID: userID, Name: "TIGER 27-04회사채", Code: "480260", TargetPercentage: 17, CurrentPrice: 52430, Quantity: 178, Category: CategoryCashOrBond},
	}
}
