package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientStock is wrapped by every *InsufficientStockError
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrItemNotFound means no line matches the (price id, product type) pair
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrInvalidQuantity means the requested quantity is below 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrUnknownProductType means the product type is neither viands nor lechon
	ErrUnknownProductType = errors.New("unknown product type")
	// ErrMissingPriceID means the product carries no price id
	ErrMissingPriceID = errors.New("price id is required")
)

// InsufficientStockError reports a quantity above the applicable ceiling
type InsufficientStockError struct {
	PriceID     string
	ProductType ProductType
	Name        string
	Requested   int
	Ceiling     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %q: requested %d, available %d",
		e.ProductType, e.PriceID, e.Requested, e.Ceiling)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
