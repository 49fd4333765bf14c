// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/rubybelly/lechon-cart/internal/domain/cart"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Offering is one priced product a customer can put in the cart
type Offering struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	PriceID     string           `gorm:"not null;size:64;uniqueIndex:idx_offerings_price_type" json:"priceid"`
	ProductType cart.ProductType `gorm:"not null;size:16;uniqueIndex:idx_offerings_price_type" json:"productType"`
	Name        string           `gorm:"not null;size:255" json:"name"`
	Description string           `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string           `gorm:"size:500" json:"imageUrl,omitempty"`
	Price       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`

	// AvailableQuantity is the servings left for viands
	AvailableQuantity *int `json:"availableQuantity,omitempty"`
	// Quantity is the lot size of a lechon offering
	Quantity *int `json:"quantity,omitempty"`

	IsActive  bool           `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Offering) TableName() string {
	return "offerings"
}

// ToProduct converts the offering into the payload AddToCart expects
func (o Offering) ToProduct() cart.Product {
	p := cart.Product{
		PriceID:           o.PriceID,
		ProductType:       o.ProductType,
		Name:              o.Name,
		Price:             o.Price,
		ImageURL:          o.ImageURL,
		AvailableQuantity: o.AvailableQuantity,
		Quantity:          o.Quantity,
	}
	if o.ProductType == cart.Viands {
		p.ImageSrc = o.ImageURL
	}
	return p
}
