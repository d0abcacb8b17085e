package routes

import (
	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes configura todas las rutas del API. Las rutas protegidas usan
// Clerk cuando hay clave configurada; si no, el JWT propio.
func RegisterRoutes(router *gin.Engine) {
	authMiddleware := middleware.AuthMiddleware()
	if middleware.ClerkEnabled() {
		authMiddleware = middleware.ClerkAuthMiddleware()
	}

	router.POST("/signup", middleware.Signup)
	router.POST("/login", middleware.Login)
	router.POST("/logout", authMiddleware, middleware.Logout)

	router.POST("/request-reset-password", middleware.RequestResetPassword)
	router.POST("/reset-password", middleware.ResetPassword)

	// Webhook de sincronización de usuarios de Clerk (verificado por firma)
	router.POST("/webhooks/clerk", middleware.ClerkWebhookHandler)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.PUT("/users", middleware.UpdateUser)
		protected.DELETE("/users", middleware.DeleteUser)

		protected.POST("/stocks", middleware.CreateStock)
		protected.GET("/stocks", middleware.GetStocks)
		protected.GET("/stocks/:id", middleware.GetStock)
		protected.PUT("/stocks/:id", middleware.UpdateStock)
		protected.DELETE("/stocks/:id", middleware.DeleteStock)
		protected.POST("/stocks/delete", middleware.DeleteStocks)
		protected.POST("/stocks/reset", middleware.ResetPortfolio)

		protected.GET("/settings", middleware.GetSettings)
		protected.PUT("/settings", middleware.UpdateSettings)

		protected.GET("/portfolio", middleware.GetPortfolio)
		protected.POST("/portfolio/rebalance-plan", middleware.GetRebalancePlan)
		protected.POST("/portfolio/rebalance", middleware.ExecuteRebalance)
		protected.POST("/portfolio/refresh", middleware.RefreshPortfolio)
		protected.GET("/portfolio/last-updated", middleware.GetLastUpdated)

		protected.GET("/notifications", middleware.GetNotifications)
	}

	// Rutas de admin
	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth())
	{
		admin.GET("/users", middleware.GetUsers)
		admin.GET("/users/:id", middleware.GetUser)
		admin.DELETE("/users/:id", middleware.DeleteUserByAdmin)
		admin.GET("/users/email/:email", middleware.GetUserByEmail)
	}
}
