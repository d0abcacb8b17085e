package middleware

import (
	"net/http"
	"strconv"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/services"
	"github.com/gin-gonic/gin"
)

// GetPortfolio arma el resumen del portafolio sobre la foto actual de la base:
// total de activos, porcentajes, desviaciones y advertencias
func GetPortfolio(c *gin.Context) {
	userId := c.GetString("userId")

	stocks, err := stockRepo.GetStocksByUser(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener las posiciones"})
		return
	}

	settings, err := settingsRepo.GetSettings(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener la configuración"})
		return
	}

	c.JSON(http.StatusOK, services.BuildPortfolioSummary(stocks, settings))
}

// GetRebalancePlan calcula el plan de ajustes sin aplicarlo. Acepta una lista
// opcional de IDs; vacía significa planificar todas las posiciones. El plan se
// puede consultar aunque la configuración de objetivos sea inválida.
func GetRebalancePlan(c *gin.Context) {
	userId := c.GetString("userId")

	var request struct {
		StockIDs []string `json:"stock_ids"`
	}

	// El cuerpo es opcional: sin selección se planifican todas las posiciones
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	stocks, err := stockRepo.GetStocksByUser(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener las posiciones"})
		return
	}

	settings, err := settingsRepo.GetSettings(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener la configuración"})
		return
	}

	selected := make(map[string]bool, len(request.StockIDs))
	for _, id := range request.StockIDs {
		selected[id] = true
	}

	totalAssets := services.TotalAssets(stocks, settings.Cash)
	plan := services.PlanRebalance(stocks, selected, totalAssets)

	c.JSON(http.StatusOK, plan)
}

// ExecuteRebalance calcula el plan y lo aplica en una sola transacción.
// Se rechaza si la suma de objetivos no es 100% o si el efectivo resultante
// sería negativo.
func ExecuteRebalance(c *gin.Context) {
	userId := c.GetString("userId")

	var request struct {
		StockIDs []string `json:"stock_ids"`
	}

	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	stocks, err := stockRepo.GetStocksByUser(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener las posiciones"})
		return
	}

	settings, err := settingsRepo.GetSettings(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener la configuración"})
		return
	}

	if !services.IsTargetConfigValid(stocks) {
		c.JSON(http.StatusConflict, gin.H{
			"error":           "La suma de porcentajes objetivo debe ser 100%",
			"combined_target": services.CombinedTargetPercentage(stocks),
		})
		return
	}

	selected := make(map[string]bool, len(request.StockIDs))
	for _, id := range request.StockIDs {
		selected[id] = true
	}

	totalAssets := services.TotalAssets(stocks, settings.Cash)
	plan := services.PlanRebalance(stocks, selected, totalAssets)

	if plan.NewCash < 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "El plan dejaría el efectivo en negativo",
			"new_cash": plan.NewCash,
		})
		return
	}

	if err := stockRepo.ApplyRebalance(userId, plan.Items, plan.NewCash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al aplicar el rebalanceo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rebalanceo aplicado exitosamente",
		"plan":    plan,
	})
}

// RefreshPortfolio dispara un ciclo de actualización manual para el usuario
func RefreshPortfolio(c *gin.Context) {
	userId := c.GetString("userId")

	updater := GetPriceUpdater()
	if updater == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "El servicio de actualización no está disponible"})
		return
	}

	if err := updater.RefreshUserByID(userId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar los precios"})
		return
	}

	summary, _ := updater.GetCachedSummary(userId)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Precios actualizados exitosamente",
		"summary":      summary,
		"last_updated": updater.GetLastUpdated(),
	})
}

// GetLastUpdated devuelve cuándo terminó el último ciclo de actualización y el
// último resumen cacheado del usuario, si existe
func GetLastUpdated(c *gin.Context) {
	userId := c.GetString("userId")

	updater := GetPriceUpdater()
	if updater == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "El servicio de actualización no está disponible"})
		return
	}

	response := gin.H{"last_updated": updater.GetLastUpdated()}
	if summary, exists := updater.GetCachedSummary(userId); exists {
		response["summary"] = summary
	}

	c.JSON(http.StatusOK, response)
}

// GetNotifications devuelve el historial de eventos de notificación del usuario
func GetNotifications(c *gin.Context) {
	userId := c.GetString("userId")

	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Límite inválido"})
			return
		}
		limit = parsed
	}

	events, err := eventRepo.GetEventsByUser(userId, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener las notificaciones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": events})
}
