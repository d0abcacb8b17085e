package models

// Advertencias que puede presentar el resumen del portafolio
const (
	WarningCombinedTargetInvalid = "combined_target_invalid"
	WarningNegativeCash          = "negative_cash"
	WarningNeedsRebalancing      = "needs_rebalancing"
)

// StockStatus representa una posición junto con sus métricas derivadas
type StockStatus struct {
	Stock             Stock   `json:"stock"`
	CurrentValue      float64 `json:"current_value"`
	CurrentPercentage float64 `json:"current_percentage"`
	Deviation         float64 `json:"deviation"` // Desviación relativa respecto al objetivo, en porcentaje
	NeedsRebalancing  bool    `json:"needs_rebalancing"`
}

// PortfolioSummary es el resumen completo del portafolio de un usuario
type PortfolioSummary struct {
	TotalAssets      float64       `json:"total_assets"`
	Cash             float64       `json:"cash"`
	CashPercentage   float64       `json:"cash_percentage"`
	CombinedTarget   float64       `json:"combined_target"`
	Threshold        float64       `json:"threshold"`
	NeedsRebalancing bool          `json:"needs_rebalancing"`
	MaxDeviation     float64       `json:"max_deviation"`
	Stocks           []StockStatus `json:"stocks"`
	Warnings         []string      `json:"warnings"`
}

// RebalanceItem es el ajuste calculado para una posición seleccionada
type RebalanceItem struct {
	StockID         string `json:"stock_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	CurrentQuantity int64  `json:"current_quantity"`
	DesiredQuantity int64  `json:"desired_quantity"`
	Adjustment      int64  `json:"adjustment"` // Con signo: +N comprar, -N vender
}

// RebalancePlan es el resultado de planificar un rebalanceo
type RebalancePlan struct {
	TotalAssets float64         `json:"total_assets"`
	Items       []RebalanceItem `json:"items"`
	NewCash     float64         `json:"new_cash"` // Efectivo resultante tras aplicar los ajustes
}
