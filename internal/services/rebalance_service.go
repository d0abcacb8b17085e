package services

import (
	"math"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
)

// Tolerancia para considerar que la suma de porcentajes objetivo es 100%
const TargetTolerance = 1e-3

// Tolerancia numérica al comparar la desviación contra el umbral: la desviación
// exactamente en el umbral debe disparar aunque el cálculo en coma flotante
// quede apenas por debajo
const thresholdEpsilon = 1e-9

// Todas las funciones de este archivo son puras: operan sobre una foto en memoria
// del portafolio y reciben el total de activos como parámetro explícito, nunca
// desde estado global. Llamarlas dos veces sobre la misma foto produce resultados
// idénticos.

// TotalAssets calcula el total de activos: suma del valor actual de cada
// posición más el efectivo. Con lista vacía devuelve el efectivo.
func TotalAssets(stocks []models.Stock, cash float64) float64 {
	total := cash
	for _, s := range stocks {
		total += s.CurrentValue()
	}
	return total
}

// CurrentPercentage calcula el porcentaje actual que representa una posición
// sobre el total de activos. Devuelve 0 si el total no es positivo.
func CurrentPercentage(stock models.Stock, totalAssets float64) float64 {
	if totalAssets <= 0 {
		return 0
	}
	return stock.CurrentValue() / totalAssets * 100
}

// CombinedTargetPercentage suma los porcentajes objetivo de todas las posiciones
func CombinedTargetPercentage(stocks []models.Stock) float64 {
	total := 0.0
	for _, s := range stocks {
		total += s.TargetPercentage
	}
	return total
}

// CashPercentage calcula el porcentaje del efectivo sobre el total de activos
func CashPercentage(cash, totalAssets float64) float64 {
	if totalAssets <= 0 {
		return 0
	}
	return cash / totalAssets * 100
}

// IsTargetConfigValid verifica que la suma de porcentajes objetivo sea 100%
// (dentro de la tolerancia). Mientras no lo sea, las acciones de rebalanceo
// quedan bloqueadas por política.
func IsTargetConfigValid(stocks []models.Stock) bool {
	return math.Abs(CombinedTargetPercentage(stocks)-100) <= TargetTolerance
}

// NeedsRebalancing decide si una posición se desvió lo suficiente de su objetivo.
//
// Regla canónica:
//   - Si el total de activos no es positivo, no hay nada que evaluar.
//   - Si el objetivo es 0, cualquier tenencia dispara el aviso (es una
//     verificación de presencia, el umbral no aplica).
//   - En el resto de los casos la desviación relativa |(actual-objetivo)/objetivo|
//     dispara cuando es mayor O IGUAL al umbral: el umbral mismo es frontera
//     de disparo.
func NeedsRebalancing(stock models.Stock, totalAssets, threshold float64) bool {
	if totalAssets <= 0 {
		return false
	}

	currentFraction := stock.CurrentValue() / totalAssets
	targetFraction := stock.TargetPercentage / 100

	if targetFraction == 0 {
		// Posición no objetivo: si hay tenencia, hay que liquidarla
		return currentFraction > 0
	}

	changeFraction := (currentFraction - targetFraction) / targetFraction
	return math.Abs(changeFraction)-threshold/100 >= -thresholdEpsilon
}

// OverallNeedsRebalancing indica si alguna posición del portafolio necesita rebalanceo
func OverallNeedsRebalancing(stocks []models.Stock, totalAssets, threshold float64) bool {
	for _, s := range stocks {
		if NeedsRebalancing(s, totalAssets, threshold) {
			return true
		}
	}
	return false
}

// Deviation calcula la desviación relativa de una posición respecto a su
// objetivo, en porcentaje. Para posiciones con objetivo 0 devuelve 0: su
// disparo es por presencia, no por magnitud.
func Deviation(stock models.Stock, totalAssets float64) float64 {
	if totalAssets <= 0 || stock.TargetPercentage == 0 {
		return 0
	}

	currentFraction := stock.CurrentValue() / totalAssets
	targetFraction := stock.TargetPercentage / 100
	return math.Abs((currentFraction-targetFraction)/targetFraction) * 100
}

// MaxDeviation devuelve la mayor desviación entre las posiciones con objetivo
// distinto de 0. Es el valor que se reporta en la notificación de rebalanceo.
func MaxDeviation(stocks []models.Stock, totalAssets float64) float64 {
	max := 0.0
	for _, s := range stocks {
		if d := Deviation(s, totalAssets); d > max {
			max = d
		}
	}
	return max
}

// DesiredQuantity calcula la cantidad de acciones que una posición debería
// tener para alcanzar su porcentaje objetivo. Redondeo estándar: mitades se
// alejan de cero (math.Round). Con objetivo 0 o precio no positivo devuelve 0
// en lugar de fallar, para que una posición mal formada no aborte el plan.
func DesiredQuantity(stock models.Stock, totalAssets float64) int64 {
	if stock.TargetPercentage == 0 || stock.CurrentPrice <= 0 {
		return 0
	}
	desiredValue := totalAssets * stock.TargetPercentage / 100
	return int64(math.Round(desiredValue / float64(stock.CurrentPrice)))
}

// PlanRebalance calcula los ajustes de cantidad para las posiciones
// seleccionadas y el efectivo resultante. Con selección vacía se planifican
// todas las posiciones.
//
// El efectivo nuevo es un valor de ajuste: total de activos antes del plan
// menos el valor de TODAS las posiciones después de aplicar las cantidades
// deseadas. Las posiciones no seleccionadas conservan su valor previo pero
// igual consumen presupuesto del total calculado al momento del plan.
func PlanRebalance(stocks []models.Stock, selected map[string]bool, totalAssets float64) models.RebalancePlan {
	plan := models.RebalancePlan{
		TotalAssets: totalAssets,
		Items:       []models.RebalanceItem{},
	}

	valueAfter := 0.0
	for _, s := range stocks {
		if len(selected) > 0 && !selected[s.ID] {
			valueAfter += s.CurrentValue()
			continue
		}

		desired := DesiredQuantity(s, totalAssets)
		plan.Items = append(plan.Items, models.RebalanceItem{
			StockID:         s.ID,
			Code:            s.Code,
			Name:            s.Name,
			CurrentQuantity: s.Quantity,
			DesiredQuantity: desired,
			Adjustment:      desired - s.Quantity,
		})
		valueAfter += float64(s.CurrentPrice) * float64(desired)
	}

	plan.NewCash = totalAssets - valueAfter
	return plan
}

// BuildPortfolioSummary arma el resumen completo del portafolio a partir de la
// foto actual de posiciones y configuración
func BuildPortfolioSummary(stocks []models.Stock, settings *models.Settings) *models.PortfolioSummary {
	totalAssets := TotalAssets(stocks, settings.Cash)

	summary := &models.PortfolioSummary{
		TotalAssets:    totalAssets,
		Cash:           settings.Cash,
		CashPercentage: CashPercentage(settings.Cash, totalAssets),
		CombinedTarget: CombinedTargetPercentage(stocks),
		Threshold:      settings.Threshold,
		MaxDeviation:   MaxDeviation(stocks, totalAssets),
		Stocks:         []models.StockStatus{},
		Warnings:       []string{},
	}

	for _, s := range stocks {
		needs := NeedsRebalancing(s, totalAssets, settings.Threshold)
		if needs {
			summary.NeedsRebalancing = true
		}
		summary.Stocks = append(summary.Stocks, models.StockStatus{
			Stock:             s,
			CurrentValue:      s.CurrentValue(),
			CurrentPercentage: CurrentPercentage(s, totalAssets),
			Deviation:         Deviation(s, totalAssets),
			NeedsRebalancing:  needs,
		})
	}

	if !IsTargetConfigValid(stocks) {
		summary.Warnings = append(summary.Warnings, models.WarningCombinedTargetInvalid)
	}
	if settings.Cash < 0 {
		summary.Warnings = append(summary.Warnings, models.WarningNegativeCash)
	}
	if summary.NeedsRebalancing {
		summary.Warnings = append(summary.Warnings, models.WarningNeedsRebalancing)
	}

	return summary
}
