package middleware

import (
	"net/http"
	"os"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UpdateUser actualiza el email y nombre del usuario autenticado
func UpdateUser(c *gin.Context) {
	userId := c.GetString("userId")

	var update struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := userRepo.GetUserById(userId)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	user.Email = update.Email
	user.Name = update.Name

	if err := userRepo.UpdateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar usuario"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Usuario actualizado exitosamente",
		"user":    user,
	})
}

// DeleteUser elimina la cuenta del usuario autenticado
func DeleteUser(c *gin.Context) {
	userId := c.GetString("userId")

	if err := userRepo.DeleteUser(userId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar usuario"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado exitosamente"})
}

// RequestResetPassword genera un token temporal y envía el correo de
// recuperación. Siempre responde éxito para no revelar qué emails existen.
func RequestResetPassword(c *gin.Context) {
	var request struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := userRepo.GetUserByEmail(request.Email); err == nil {
		token, err := GenerateResetToken(request.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar el token"})
			return
		}

		if err := services.SendPasswordResetEmail(request.Email, token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al enviar el email"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Si el email existe, se enviaron las instrucciones"})
}

// ResetPassword valida el token de recuperación y actualiza la contraseña
func ResetPassword(c *gin.Context) {
	var reset struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&reset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := jwt.Parse(reset.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
		return
	}

	claims := token.Claims.(jwt.MapClaims)
	email, ok := claims["email"].(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido"})
		return
	}

	if err := userRepo.UpdatePassword(email, reset.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la contraseña"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contraseña actualizada exitosamente"})
}
