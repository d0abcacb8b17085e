package middleware

import (
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/services"
)

var priceUpdater *services.PriceUpdater

// SetPriceUpdater guarda la instancia del ciclo de actualización para que los
// handlers puedan disparar actualizaciones manuales y leer el estado cacheado
func SetPriceUpdater(updater *services.PriceUpdater) {
	priceUpdater = updater
}

// GetPriceUpdater devuelve la instancia del ciclo de actualización
func GetPriceUpdater() *services.PriceUpdater {
	return priceUpdater
}
