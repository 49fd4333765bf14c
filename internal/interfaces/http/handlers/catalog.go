// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rubybelly/lechon-cart/internal/domain/cart"
	"github.com/rubybelly/lechon-cart/internal/domain/catalog"
)

// CatalogHandler handles menu endpoints
type CatalogHandler struct {
	catalog Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetOfferings handles GET /catalog?type=
func (h *CatalogHandler) GetOfferings(c *gin.Context) {
	productType := cart.ProductType(c.Query("type"))
	if productType != "" && !productType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product type",
		})
		return
	}

	offerings, err := h.catalog.List(c.Request.Context(), productType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve offerings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Offerings retrieved successfully",
		"data":    offerings,
	})
}

// GetOffering handles GET /catalog/:type/:priceId
func (h *CatalogHandler) GetOffering(c *gin.Context) {
	productType := cart.ProductType(c.Param("type"))
	if !productType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product type",
		})
		return
	}

	offering, err := h.catalog.Get(c.Request.Context(), c.Param("priceId"), productType)
	if errors.Is(err, catalog.ErrOfferingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Offering not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve offering",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Offering retrieved successfully",
		"data":    offering,
	})
}
