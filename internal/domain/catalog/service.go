// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rubybelly/lechon-cart/internal/domain/cart"
	"gorm.io/gorm"
)

// ErrOfferingNotFound is returned when no active offering matches
var ErrOfferingNotFound = errors.New("offering not found")

// Service reads offerings and their live stock
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns active offerings, optionally filtered by product type
func (s *Service) List(ctx context.Context, productType cart.ProductType) ([]Offering, error) {
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if productType != "" {
		query = query.Where("product_type = ?", productType)
	}

	var offerings []Offering
	if err := query.Order("product_type, name").Find(&offerings).Error; err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}
	return offerings, nil
}

// Get returns one active offering by price id and product type
func (s *Service) Get(ctx context.Context, priceID string, productType cart.ProductType) (*Offering, error) {
	var offering Offering
	err := s.db.WithContext(ctx).
		Where("price_id = ? AND product_type = ? AND is_active = ?", priceID, productType, true).
		First(&offering).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offering: %w", err)
	}
	return &offering, nil
}

// Lookup returns the cart payload for an offering with its current stock
func (s *Service) Lookup(ctx context.Context, priceID string, productType cart.ProductType) (cart.Product, error) {
	offering, err := s.Get(ctx, priceID, productType)
	if err != nil {
		return cart.Product{}, err
	}
	return offering.ToProduct(), nil
}
