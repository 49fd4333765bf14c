// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rubybelly/lechon-cart/internal/config"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http/handlers"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http/middleware"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http/session"
)

// Dependencies are the services the API routes are built from
type Dependencies struct {
	Config   *config.Config
	Sessions *session.Registry
	// Catalog is nil when no catalog database is configured
	Catalog handlers.Catalog
	Tokens  middleware.TokenValidator
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	rg.Use(middleware.OptionalAuthMiddleware(deps.Tokens))

	SetupAuthRoutes(rg)
	SetupCartRoutes(rg, deps)
	if deps.Catalog != nil {
		SetupCatalogRoutes(rg, deps.Catalog)
	}
}

// SetupAuthRoutes sets up session check routes
func SetupAuthRoutes(rg *gin.RouterGroup) {
	authHandler := handlers.NewAuthHandler()

	auth := rg.Group("/auth")
	{
		auth.GET("/check", authHandler.Check)
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Sessions, deps.Catalog, deps.Config)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:priceId", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:priceId", cartHandler.RemoveFromCart)
	}
}

// SetupCatalogRoutes sets up menu routes
func SetupCatalogRoutes(rg *gin.RouterGroup, catalog handlers.Catalog) {
	catalogHandler := handlers.NewCatalogHandler(catalog)

	menu := rg.Group("/catalog")
	{
		menu.GET("", catalogHandler.GetOfferings)
		menu.GET("/:type/:priceId", catalogHandler.GetOffering)
	}
}
