package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUsers devuelve todos los usuarios registrados (solo admin)
func GetUsers(c *gin.Context) {
	users, err := userRepo.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener usuarios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser devuelve un usuario por su ID (solo admin)
func GetUser(c *gin.Context) {
	id := c.Param("id")

	user, err := userRepo.GetUserById(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserByEmail devuelve un usuario por su email (solo admin)
func GetUserByEmail(c *gin.Context) {
	email := c.Param("email")

	user, err := userRepo.GetUserByEmail(email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUserByAdmin elimina un usuario por su ID (solo admin)
func DeleteUserByAdmin(c *gin.Context) {
	id := c.Param("id")

	if _, err := userRepo.GetUserById(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	if err := userRepo.DeleteUser(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar usuario"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado exitosamente"})
}
