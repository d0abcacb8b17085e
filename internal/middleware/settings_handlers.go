package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSettings devuelve la configuración del usuario y el vencimiento del token
// del broker para diagnóstico
func GetSettings(c *gin.Context) {
	userId := c.GetString("userId")

	settings, err := settingsRepo.GetSettings(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener la configuración"})
		return
	}

	response := gin.H{"settings": settings}

	if exp := brokerClient.TokenExpiration(); !exp.IsZero() {
		response["broker_token_expiration"] = exp
	}

	c.JSON(http.StatusOK, response)
}

// UpdateSettings actualiza el efectivo y el umbral de desviación. El umbral
// debe ser mayor que cero; el efectivo admite cualquier valor, incluso
// negativo (apalancamiento), que el resumen reporta como advertencia.
func UpdateSettings(c *gin.Context) {
	userId := c.GetString("userId")

	var update struct {
		Cash      *float64 `json:"cash"`
		Threshold *float64 `json:"threshold" binding:"omitempty,gt=0"`
	}

	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := settingsRepo.GetSettings(userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener la configuración"})
		return
	}

	settings.UserID = userId
	if update.Cash != nil {
		settings.Cash = *update.Cash
	}
	if update.Threshold != nil {
		settings.Threshold = *update.Threshold
	}

	if err := settingsRepo.SaveSettings(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar la configuración"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Configuración actualizada exitosamente",
		"settings": settings,
	})
}
