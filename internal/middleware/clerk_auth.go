package middleware

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
	"github.com/clerk/clerk-sdk-go/v2"
	clerkjwt "github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
)

var userClient *user.Client

// InitClerk inicializa el cliente de Clerk. Si CLERK_SECRET_KEY no está
// definida la autenticación con Clerk queda deshabilitada y se usa JWT propio.
func InitClerk() {
	secretKey := os.Getenv("CLERK_SECRET_KEY")
	if secretKey == "" {
		log.Printf("CLERK_SECRET_KEY no definida. Autenticación con Clerk deshabilitada.")
		return
	}

	clerk.SetKey(secretKey)

	config := &clerk.ClientConfig{}
	config.Key = &secretKey
	userClient = user.NewClient(config)

	log.Printf("Clerk inicializado correctamente")
}

// ClerkEnabled indica si hay una clave de Clerk configurada
func ClerkEnabled() bool {
	return userClient != nil
}

// ClerkAuthMiddleware valida tokens de sesión emitidos por Clerk
func ClerkAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userClient == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Autenticación con Clerk no disponible"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token no proporcionado"})
			c.Abort()
			return
		}

		tokenString := strings.Replace(authHeader, "Bearer ", "", 1)

		claims, err := clerkjwt.Verify(c.Request.Context(), &clerkjwt.VerifyParams{
			Token: tokenString,
		})
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido"})
			c.Abort()
			return
		}

		if claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido: no se pudo extraer el ID del usuario"})
			c.Abort()
			return
		}

		c.Set("userId", claims.Subject)
		c.Next()
	}
}

// ClerkWebhookHandler sincroniza altas y bajas de usuarios de Clerk con la
// base local. La firma del webhook se verifica con Svix.
func ClerkWebhookHandler(c *gin.Context) {
	webhookSecret := os.Getenv("CLERK_WEBHOOK_SECRET")
	if webhookSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret no configurado"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo leer el cuerpo de la petición"})
		return
	}

	wh, err := svix.NewWebhook(webhookSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al inicializar la verificación del webhook"})
		return
	}

	if err := wh.Verify(body, c.Request.Header); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Firma del webhook inválida"})
		return
	}

	var webhookData map[string]interface{}
	if err := json.Unmarshal(body, &webhookData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payload JSON inválido"})
		return
	}

	eventType, ok := webhookData["type"].(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta el tipo de evento"})
		return
	}

	switch eventType {
	case "user.created":
		handleClerkUserCreated(c, webhookData)
	case "user.deleted":
		handleClerkUserDeleted(c, webhookData)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Evento recibido pero no manejado"})
	}
}

func handleClerkUserCreated(c *gin.Context, webhookData map[string]interface{}) {
	data, ok := webhookData["data"].(map[string]interface{})
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estructura del webhook inválida"})
		return
	}

	userID, ok := data["id"].(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta el ID del usuario"})
		return
	}

	primaryEmail := ""
	if emailAddresses, ok := data["email_addresses"].([]interface{}); ok {
		for _, emailAddr := range emailAddresses {
			if emailMap, ok := emailAddr.(map[string]interface{}); ok {
				if emailMap["email_address"] != nil {
					primaryEmail = emailMap["email_address"].(string)
					break
				}
			}
		}
	}
	if primaryEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se encontró un email válido"})
		return
	}

	firstName, _ := data["first_name"].(string)
	lastName, _ := data["last_name"].(string)
	fullName := strings.TrimSpace(firstName + " " + lastName)
	if fullName == "" {
		fullName = strings.Split(primaryEmail, "@")[0]
	}

	newUser := &models.User{
		ID:        userID,
		Email:     primaryEmail,
		Name:      fullName,
		Password:  "",
		CreatedAt: time.Now(),
	}

	if err := userRepo.CreateUser(newUser); err != nil {
		log.Printf("Error al crear usuario de Clerk en la base: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear usuario"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usuario creado exitosamente"})
}

func handleClerkUserDeleted(c *gin.Context, webhookData map[string]interface{}) {
	data, ok := webhookData["data"].(map[string]interface{})
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estructura del webhook inválida"})
		return
	}

	userID, ok := data["id"].(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta el ID del usuario"})
		return
	}

	if err := userRepo.DeleteUser(userID); err != nil {
		log.Printf("Error al eliminar usuario de Clerk de la base: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar usuario"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado exitosamente"})
}
