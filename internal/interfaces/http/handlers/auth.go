// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http/middleware"
)

// AuthHandler handles session check endpoints
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Check handles GET /auth/check
func (h *AuthHandler) Check(c *gin.Context) {
	data := gin.H{
		"isAuthenticated": middleware.IsAuthenticated(c),
	}
	if email, ok := middleware.GetUserEmailFromContext(c); ok {
		data["email"] = email
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session checked successfully",
		"data":    data,
	})
}
