package services

import (
	"testing"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stock(id string, target float64, price, quantity int64) models.Stock {
	return models.Stock{
		ID:               id,
		Code:             id,
		TargetPercentage: target,
		CurrentPrice:     price,
		Quantity:         quantity,
	}
}

func TestTotalAssets(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 50, 100, 10), // 1000
		stock("b", 30, 200, 5),  // 1000
	}

	assert.Equal(t, 2500.0, TotalAssets(stocks, 500))
	assert.Equal(t, 500.0, TotalAssets(nil, 500), "sin posiciones el total es el efectivo")
	assert.Equal(t, 0.0, TotalAssets(nil, 0))
}

func TestNeedsRebalancing(t *testing.T) {
	tests := []struct {
		name        string
		stock       models.Stock
		totalAssets float64
		threshold   float64
		want        bool
	}{
		{
			name:        "desviación exactamente en el umbral dispara",
			stock:       stock("a", 10, 1, 1100), // fracción actual 11%, cambio relativo 10%
			totalAssets: 10000,
			threshold:   10,
			want:        true,
		},
		{
			// El cálculo en coma flotante de (0.36-0.30)/0.30 queda apenas
			// debajo de 0.2; la frontera igual debe disparar
			name:        "frontera exacta con redondeo de coma flotante dispara",
			stock:       stock("a", 30, 1, 3600),
			totalAssets: 10000,
			threshold:   20,
			want:        true,
		},
		{
			name:        "desviación justo debajo del umbral no dispara",
			stock:       stock("a", 10, 1, 1099),
			totalAssets: 10000,
			threshold:   10,
			want:        false,
		},
		{
			name:        "posición en su objetivo exacto no dispara",
			stock:       stock("a", 10, 1, 1000),
			totalAssets: 10000,
			threshold:   10,
			want:        false,
		},
		{
			name:        "objetivo 0 con tenencia dispara aunque el umbral sea enorme",
			stock:       stock("a", 0, 100, 1),
			totalAssets: 10000,
			threshold:   100000,
			want:        true,
		},
		{
			name:        "objetivo 0 sin tenencia no dispara",
			stock:       stock("a", 0, 100, 0),
			totalAssets: 10000,
			threshold:   10,
			want:        false,
		},
		{
			name:        "total de activos cero no evalúa nada",
			stock:       stock("a", 10, 1, 1100),
			totalAssets: 0,
			threshold:   10,
			want:        false,
		},
		{
			name:        "total de activos negativo no evalúa nada",
			stock:       stock("a", 0, 100, 1),
			totalAssets: -500,
			threshold:   10,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsRebalancing(tt.stock, tt.totalAssets, tt.threshold))
		})
	}
}

func TestNeedsRebalancingEsDeterminista(t *testing.T) {
	s := stock("a", 10, 1, 1100)
	first := NeedsRebalancing(s, 10000, 10)
	second := NeedsRebalancing(s, 10000, 10)
	assert.Equal(t, first, second)
}

func TestOverallNeedsRebalancing(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 50, 1, 5000),
		stock("b", 50, 1, 4000), // fracción 40%, desviación 20%
	}
	totalAssets := TotalAssets(stocks, 1000)

	assert.True(t, OverallNeedsRebalancing(stocks, totalAssets, 12))
	assert.False(t, OverallNeedsRebalancing(stocks, totalAssets, 25))
}

func TestMaxDeviationIgnoraObjetivoCero(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 50, 1, 4000), // fracción 40%, desviación 20%
		stock("b", 0, 1, 5000),  // dispara por presencia, no aporta desviación
	}
	totalAssets := 10000.0

	assert.InDelta(t, 20.0, MaxDeviation(stocks, totalAssets), 1e-9)
	assert.Equal(t, 0.0, Deviation(stocks[1], totalAssets))
}

func TestIsTargetConfigValid(t *testing.T) {
	assert.True(t, IsTargetConfigValid([]models.Stock{
		stock("a", 60, 1, 0),
		stock("b", 40, 1, 0),
	}))
	assert.True(t, IsTargetConfigValid([]models.Stock{
		stock("a", 100.0005, 1, 0),
	}), "dentro de la tolerancia")
	assert.False(t, IsTargetConfigValid([]models.Stock{
		stock("a", 60, 1, 0),
		stock("b", 39.9, 1, 0),
	}))
	assert.False(t, IsTargetConfigValid(nil), "sin posiciones la suma es 0")
}

func TestDesiredQuantity(t *testing.T) {
	tests := []struct {
		name        string
		stock       models.Stock
		totalAssets float64
		want        int64
	}{
		{"redondeo hacia abajo", stock("a", 25, 300, 0), 10000, 8},  // 2500/300 = 8.33
		{"mitad se aleja de cero", stock("a", 25, 1000, 0), 10000, 3}, // 2500/1000 = 2.5
		{"objetivo 0 devuelve 0", stock("a", 0, 300, 5), 10000, 0},
		{"precio 0 devuelve 0 sin fallar", stock("a", 25, 0, 5), 10000, 0},
		{"precio negativo devuelve 0", stock("a", 25, -10, 5), 10000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DesiredQuantity(tt.stock, tt.totalAssets))
		})
	}
}

func TestPlanRebalanceTodasLasPosiciones(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 40, 100, 10), // 1000
		stock("b", 60, 250, 20), // 5000
	}
	totalAssets := TotalAssets(stocks, 4000) // 10000

	plan := PlanRebalance(stocks, nil, totalAssets)

	require.Len(t, plan.Items, 2)
	assert.Equal(t, int64(40), plan.Items[0].DesiredQuantity) // 4000/100
	assert.Equal(t, int64(30), plan.Items[0].Adjustment)
	assert.Equal(t, int64(24), plan.Items[1].DesiredQuantity) // 6000/250
	assert.Equal(t, int64(4), plan.Items[1].Adjustment)

	// El efectivo absorbe el residuo: valor final + efectivo = total inicial
	valueAfter := 0.0
	for i, item := range plan.Items {
		valueAfter += float64(stocks[i].CurrentPrice) * float64(item.DesiredQuantity)
	}
	assert.InDelta(t, totalAssets, valueAfter+plan.NewCash, 1e-9)
}

func TestPlanRebalanceSeleccionParcial(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 40, 100, 10), // 1000
		stock("b", 60, 250, 20), // 5000
	}
	totalAssets := TotalAssets(stocks, 4000) // 10000

	plan := PlanRebalance(stocks, map[string]bool{"a": true}, totalAssets)

	require.Len(t, plan.Items, 1)
	assert.Equal(t, "a", plan.Items[0].StockID)
	assert.Equal(t, int64(40), plan.Items[0].DesiredQuantity)

	// La posición no seleccionada conserva su valor pero consume presupuesto:
	// 10000 - (40*100 + 5000) = 1000
	assert.InDelta(t, 1000.0, plan.NewCash, 1e-9)
}

func TestPlanRebalanceEsIdempotente(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 40, 100, 10),
		stock("b", 60, 250, 20),
	}
	totalAssets := TotalAssets(stocks, 4000)

	first := PlanRebalance(stocks, nil, totalAssets)

	// Aplicar el plan y volver a planificar sobre el mismo total: las
	// cantidades no cambian y el efectivo queda igual
	for i, item := range first.Items {
		stocks[i].Quantity = item.DesiredQuantity
	}
	second := PlanRebalance(stocks, nil, totalAssets)

	for i := range first.Items {
		assert.Equal(t, first.Items[i].DesiredQuantity, second.Items[i].DesiredQuantity)
		assert.Equal(t, int64(0), second.Items[i].Adjustment)
	}
	assert.InDelta(t, first.NewCash, second.NewCash, 1e-9)
}

func TestBuildPortfolioSummary(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 50, 1, 5000),
		stock("b", 50, 1, 4000),
	}
	settings := &models.Settings{UserID: "u1", Cash: 1000, Threshold: 12}

	summary := BuildPortfolioSummary(stocks, settings)

	assert.Equal(t, 10000.0, summary.TotalAssets)
	assert.InDelta(t, 10.0, summary.CashPercentage, 1e-9)
	assert.InDelta(t, 100.0, summary.CombinedTarget, 1e-9)
	assert.True(t, summary.NeedsRebalancing, "la posición b se desvió 20%")
	assert.InDelta(t, 20.0, summary.MaxDeviation, 1e-9)

	require.Len(t, summary.Stocks, 2)
	assert.False(t, summary.Stocks[0].NeedsRebalancing)
	assert.True(t, summary.Stocks[1].NeedsRebalancing)

	assert.Contains(t, summary.Warnings, models.WarningNeedsRebalancing)
	assert.NotContains(t, summary.Warnings, models.WarningCombinedTargetInvalid)
	assert.NotContains(t, summary.Warnings, models.WarningNegativeCash)
}

func TestBuildPortfolioSummaryAdvertencias(t *testing.T) {
	stocks := []models.Stock{
		stock("a", 60, 1, 5000),
		stock("b", 30, 1, 4000),
	}
	settings := &models.Settings{UserID: "u1", Cash: -500, Threshold: 12}

	summary := BuildPortfolioSummary(stocks, settings)

	assert.Contains(t, summary.Warnings, models.WarningCombinedTargetInvalid)
	assert.Contains(t, summary.Warnings, models.WarningNegativeCash)
}

func TestBuildPortfolioSummaryPortafolioVacio(t *testing.T) {
	settings := &models.Settings{UserID: "u1", Cash: 5000, Threshold: 12}

	summary := BuildPortfolioSummary(nil, settings)

	assert.Equal(t, 5000.0, summary.TotalAssets)
	assert.InDelta(t, 100.0, summary.CashPercentage, 1e-9)
	assert.False(t, summary.NeedsRebalancing)
	assert.Empty(t, summary.Stocks)
}
