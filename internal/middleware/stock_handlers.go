package middleware

import (
	"log"
	"net/http"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/database"
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/repository"
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/services"
	"github.com/gin-gonic/gin"
)

var (
	stockRepo    *repository.StockRepository
	settingsRepo *repository.SettingsRepository
	eventRepo    *repository.EventRepository
	brokerClient *services.BrokerClient
)

// InitPortfolio inicializa los repositorios del portafolio y el cliente del broker
func InitPortfolio() {
	stockRepo = repository.NewStockRepository(database.DB)
	settingsRepo = repository.NewSettingsRepository(database.DB)
	eventRepo = repository.NewEventRepository(database.DB)
	brokerClient = services.NewBrokerClient()
}

// CreateStock crea una nueva posición. Si el broker responde, completa el
// nombre y el precio actual; si falla, la posición se crea igual con los datos
// enviados y el refresco los completará después.
func CreateStock(c *gin.Context) {
	userId := c.GetString("userId")

	var stock models.Stock
	if err := c.ShouldBindJSON(&stock); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if stock.Category != "" && !models.IsValidCategory(stock.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Categoría inválida"})
		return
	}
	if stock.Category == "" {
		stock.Category = models.CategoryEquity
	}
	if stock.TargetPercentage < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El porcentaje objetivo no puede ser negativo"})
		return
	}
	if stock.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La cantidad no puede ser negativa"})
		return
	}

	stock.UserID = userId

	if name, err := brokerClient.GetStockName(stock.Code); err == nil && name != "" {
		stock.Name = name
	}
	if quote, err := brokerClient.GetStockQuote(stock.Code); err == nil && quote.Price > 0 {
		stock.CurrentPrice = quote.Price
		stock.DailyVariation = quote.DailyVariation
	}

	if err := stockRepo.CreateStock(&stock); err != nil {
		log.Printf("Error al crear posición: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear la posición"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Posición creada exitosamente",
		"stock":   stock,
	})
}

// GetStocks devuelve todas las posiciones del usuario
func GetStocks(c *gin.Context) {
	userId := c.GetString("userId")

	stocks, err := stockRepo.GetStocksByUser(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener las posiciones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stocks": stocks})
}

// GetStock devuelve una posición por su ID
func GetStock(c *gin.Context) {
	userId := c.GetString("userId")
	id := c.Param("id")

	stock, err := stockRepo.GetStockByID(userId, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Posición no encontrada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stock": stock})
}

// UpdateStock actualiza los campos editables de una posición. El ID y la fecha
// de creación se conservan siempre.
func UpdateStock(c *gin.Context) {
	userId := c.GetString("userId")
	id := c.Param("id")

	existing, err := stockRepo.GetStockByID(userId, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Posición no encontrada"})
		return
	}

	var update struct {
		Name             *string  `json:"name"`
		Code             *string  `json:"code"`
		TargetPercentage *float64 `json:"target_percentage"`
		CurrentPrice     *int64   `json:"current_price"`
		Quantity         *int64   `json:"quantity"`
		Category         *string  `json:"category"`
	}

	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if update.Name != nil {
		existing.Name = *update.Name
	}
	if update.Code != nil {
		existing.Code = *update.Code
	}
	if update.TargetPercentage != nil {
		if *update.TargetPercentage < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El porcentaje objetivo no puede ser negativo"})
			return
		}
		existing.TargetPercentage = *update.TargetPercentage
	}
	if update.CurrentPrice != nil {
		existing.CurrentPrice = *update.CurrentPrice
	}
	if update.Quantity != nil {
		if *update.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "La cantidad no puede ser negativa"})
			return
		}
		existing.Quantity = *update.Quantity
	}
	if update.Category != nil {
		if !models.IsValidCategory(*update.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Categoría inválida"})
			return
		}
		existing.Category = *update.Category
	}

	if err := stockRepo.UpdateStock(existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la posición"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Posición actualizada exitosamente",
		"stock":   existing,
	})
}

// DeleteStock elimina una posición
func DeleteStock(c *gin.Context) {
	userId := c.GetString("userId")
	id := c.Param("id")

	if _, err := stockRepo.GetStockByID(userId, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Posición no encontrada"})
		return
	}

	if err := stockRepo.DeleteStock(userId, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar la posición"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Posición eliminada exitosamente"})
}

// DeleteStocks elimina varias posiciones en una sola operación
func DeleteStocks(c *gin.Context) {
	userId := c.GetString("userId")

	var request struct {
		IDs []string `json:"ids" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := stockRepo.DeleteStocks(userId, request.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar las posiciones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Posiciones eliminadas exitosamente"})
}

// ResetPortfolio restaura el set inicial de posiciones y la configuración por defecto
func ResetPortfolio(c *gin.Context) {
	userId := c.GetString("userId")

	stocks, err := stockRepo.ResetStocks(userId)
	if err != nil {
		log.Printf("Error al restaurar portafolio para %s: %v", userId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al restaurar el portafolio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Portafolio restaurado exitosamente",
		"stocks":  stocks,
	})
}
