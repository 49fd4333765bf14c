package cart

import (
	"errors"
	"fmt"
)

// Notice returns the customer-facing message for a stock rejection, or an
// empty string when the outcome needs no message.
func Notice(o Outcome) string {
	var stockErr *InsufficientStockError
	if !errors.As(o.Err, &stockErr) {
		return ""
	}
	if stockErr.ProductType == Viands {
		return fmt.Sprintf("Sorry, only %d servings available for %s", stockErr.Ceiling, stockErr.Name)
	}
	return fmt.Sprintf("Sorry, only %d items available", stockErr.Ceiling)
}
