package main

import (
	"log"
	"os"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/database"
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/middleware"
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/repository"
	routes "github.com/AgusMolinaCode/Portfolio_Api.git/internal/server"
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Cronograma por defecto: días hábiles a las 10:00
const defaultRefreshSchedule = "0 10 * * 1-5"

func main() {
	// Cargar variables de entorno
	if err := godotenv.Load(); err != nil {
		log.Printf("No se pudo cargar el archivo .env: %v", err)
	}

	// Crear el router de Gin
	router := gin.Default()

	// Configurar CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Admin-Key"}
	config.AllowCredentials = true
	config.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(config))

	// Inicializar base de datos
	if err := database.InitDB(); err != nil {
		log.Fatalf("Error al inicializar la base de datos: %v", err)
	}
	defer database.DB.Close()

	// Inicializar auth y repositorios del portafolio
	middleware.InitAuth()
	middleware.InitClerk()
	middleware.InitPortfolio()

	// Armar el notificador: siempre email, webhook firmado si está configurado
	notifiers := []services.Notifier{services.NewEmailNotifier()}
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		webhookNotifier, err := services.NewWebhookNotifier(url, os.Getenv("NOTIFY_WEBHOOK_SECRET"))
		if err != nil {
			log.Fatalf("Error al configurar el notificador de webhooks: %v", err)
		}
		notifiers = append(notifiers, webhookNotifier)
	}
	notifier := services.NewCompositeNotifier(notifiers...)

	// Programar el ciclo de actualización de precios
	schedule := os.Getenv("REFRESH_SCHEDULE")
	if schedule == "" {
		schedule = defaultRefreshSchedule
	}

	priceUpdater := services.NewPriceUpdater(
		schedule,
		repository.NewStockRepository(database.DB),
		repository.NewSettingsRepository(database.DB),
		repository.NewUserRepository(database.DB),
		repository.NewEventRepository(database.DB),
		services.NewBrokerClient(),
		notifier,
	)
	if err := priceUpdater.Start(); err != nil {
		log.Fatalf("Error al programar el ciclo de actualización: %v", err)
	}
	defer priceUpdater.Stop()

	// Hacer disponible el actualizador de precios para los handlers
	middleware.SetPriceUpdater(priceUpdater)

	// Configurar las rutas
	routes.RegisterRoutes(router)

	// Iniciar el servidor
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Error al iniciar el servidor: %v", err)
	}
}
