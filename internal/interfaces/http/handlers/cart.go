// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rubybelly/lechon-cart/internal/config"
	"github.com/rubybelly/lechon-cart/internal/domain/cart"
	"github.com/rubybelly/lechon-cart/internal/domain/catalog"
	"github.com/rubybelly/lechon-cart/internal/interfaces/http/session"
)

// Catalog resolves offerings and their live stock
type Catalog interface {
	List(ctx context.Context, productType cart.ProductType) ([]catalog.Offering, error)
	Get(ctx context.Context, priceID string, productType cart.ProductType) (*catalog.Offering, error)
	Lookup(ctx context.Context, priceID string, productType cart.ProductType) (cart.Product, error)
}

// CartHandler handles cart endpoints
type CartHandler struct {
	sessions  *session.Registry
	catalog   Catalog
	cookie    string
	cookieTTL time.Duration
	secure    bool
}

// NewCartHandler creates a new cart handler. A nil catalog makes add
// requests carry the full product payload.
func NewCartHandler(sessions *session.Registry, catalog Catalog, cfg *config.Config) *CartHandler {
	return &CartHandler{
		sessions:  sessions,
		catalog:   catalog,
		cookie:    cfg.Cart.SessionCookie,
		cookieTTL: cfg.Cart.SessionTTL,
		secure:    cfg.IsProduction(),
	}
}

// AddItemRequest is the body of POST /cart/items
type AddItemRequest struct {
	PriceID     string           `json:"priceid"`
	ProductType cart.ProductType `json:"productType"`
	Quantity    int              `json:"quantity"`
	// Product is used as-is when no catalog is configured
	Product *cart.Product `json:"product,omitempty"`
}

// UpdateItemRequest is the body of PUT /cart/items/:priceId
type UpdateItemRequest struct {
	ProductType cart.ProductType `json:"productType" binding:"required"`
	Quantity    int              `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	var state cart.State
	h.sessions.Do(c.Request.Context(), h.getOrCreateSessionID(c), func(store *cart.Store) {
		state = store.Snapshot()
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    state,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, ok := h.resolveProduct(c, &req)
	if !ok {
		return
	}

	var (
		outcome cart.Outcome
		state   cart.State
	)
	h.sessions.Do(c.Request.Context(), h.getOrCreateSessionID(c), func(store *cart.Store) {
		outcome = store.AddToCart(product, req.Quantity)
		state = store.Snapshot()
	})

	h.respond(c, outcome, state, "Item added to cart successfully")
}

// UpdateCartItem handles PUT /cart/items/:priceId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var (
		outcome cart.Outcome
		state   cart.State
	)
	h.sessions.Do(c.Request.Context(), h.getOrCreateSessionID(c), func(store *cart.Store) {
		outcome = store.UpdateQuantity(c.Param("priceId"), req.Quantity, req.ProductType)
		state = store.Snapshot()
	})

	h.respond(c, outcome, state, "Cart item updated successfully")
}

// RemoveFromCart handles DELETE /cart/items/:priceId?productType=
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productType := cart.ProductType(c.Query("productType"))
	if !productType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product type",
		})
		return
	}

	var state cart.State
	h.sessions.Do(c.Request.Context(), h.getOrCreateSessionID(c), func(store *cart.Store) {
		store.RemoveFromCart(c.Param("priceId"), productType)
		state = store.Snapshot()
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    state,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	var state cart.State
	h.sessions.Do(c.Request.Context(), h.getOrCreateSessionID(c), func(store *cart.Store) {
		store.ClearCart()
		state = store.Snapshot()
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    state,
	})
}

func (h *CartHandler) resolveProduct(c *gin.Context, req *AddItemRequest) (cart.Product, bool) {
	if h.catalog == nil {
		if req.Product == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Product payload is required",
			})
			return cart.Product{}, false
		}
		return *req.Product, true
	}

	if req.PriceID == "" || !req.ProductType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "priceid and a valid productType are required",
		})
		return cart.Product{}, false
	}

	product, err := h.catalog.Lookup(c.Request.Context(), req.PriceID, req.ProductType)
	if errors.Is(err, catalog.ErrOfferingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return cart.Product{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to look up product",
		})
		return cart.Product{}, false
	}
	return product, true
}

func (h *CartHandler) respond(c *gin.Context, outcome cart.Outcome, state cart.State, message string) {
	switch outcome.Verdict {
	case cart.Accepted:
		c.JSON(http.StatusOK, gin.H{
			"message": message,
			"data":    state,
		})
	case cart.RejectedInsufficientStock:
		c.JSON(http.StatusConflict, gin.H{
			"error":     cart.Notice(outcome),
			"available": outcome.Ceiling,
			"data":      state,
		})
	default:
		status := http.StatusBadRequest
		if errors.Is(outcome.Err, cart.ErrItemNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error": outcome.Err.Error(),
			"data":  state,
		})
	}
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(h.cookie)
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		c.SetCookie(h.cookie, sessionID, int(h.cookieTTL.Seconds()), "/", "", h.secure, true)
	}

	return sessionID
}
