package cart

import (
	"github.com/shopspring/decimal"
)

// Verdict is the result class of a cart mutation
type Verdict int

const (
	Accepted Verdict = iota
	RejectedInsufficientStock
	RejectedInvalid
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedInsufficientStock:
		return "rejected_insufficient_stock"
	case RejectedInvalid:
		return "rejected_invalid"
	default:
		return "unknown"
	}
}

// Outcome describes what a mutation did. On rejection the cart is unchanged.
type Outcome struct {
	Verdict Verdict
	// Ceiling is the stock limit that was exceeded, set only for
	// RejectedInsufficientStock
	Ceiling int
	// Item is the line as it stands after an accepted mutation
	Item LineItem
	Err  error
}

// Accepted reports whether the mutation was applied
func (o Outcome) Accepted() bool {
	return o.Verdict == Accepted
}

func accepted(item LineItem) Outcome {
	return Outcome{Verdict: Accepted, Item: item}
}

func rejectedInvalid(err error) Outcome {
	return Outcome{Verdict: RejectedInvalid, Err: err}
}

func rejectedStock(priceID string, productType ProductType, name string, requested, ceiling int) Outcome {
	return Outcome{
		Verdict: RejectedInsufficientStock,
		Ceiling: ceiling,
		Err: &InsufficientStockError{
			PriceID:     priceID,
			ProductType: productType,
			Name:        name,
			Requested:   requested,
			Ceiling:     ceiling,
		},
	}
}

// ceiling returns the stock limit a product payload imposes. Viands use the
// live servings count; lechon uses the servings count when non-zero, else its
// lot size. bounded is false when the payload carries no usable limit.
func (p Product) ceiling() (limit int, bounded bool) {
	if p.ProductType == Viands {
		if p.AvailableQuantity == nil {
			return 0, false
		}
		return *p.AvailableQuantity, true
	}
	if p.AvailableQuantity != nil && *p.AvailableQuantity != 0 {
		return *p.AvailableQuantity, true
	}
	if p.Quantity != nil {
		return *p.Quantity, true
	}
	return 0, false
}

// ceiling returns the limit stored on the line itself
func (l LineItem) ceiling() (limit int, bounded bool) {
	stored := l.MaxQuantity
	if l.ProductType == Viands {
		stored = l.AvailableQuantity
	}
	if stored == nil {
		return 0, false
	}
	return *stored, true
}

// EvaluateAdd computes the item list that results from adding requested
// units of p. A zero request means DefaultQuantity. items is never modified;
// on rejection it is returned as is.
//
// A brand-new lechon line is accepted without comparing the request to its
// ceiling. Merges into an existing lechon line are checked.
func EvaluateAdd(items []LineItem, p Product, requested int) ([]LineItem, Outcome) {
	if requested == 0 {
		requested = DefaultQuantity
	}
	switch {
	case requested < 0:
		return items, rejectedInvalid(ErrInvalidQuantity)
	case p.PriceID == "":
		return items, rejectedInvalid(ErrMissingPriceID)
	case !p.ProductType.Valid():
		return items, rejectedInvalid(ErrUnknownProductType)
	}

	limit, bounded := p.ceiling()

	if idx := indexOf(items, p.PriceID, p.ProductType); idx >= 0 {
		newQuantity := items[idx].Quantity + requested
		if bounded && newQuantity > limit {
			return items, rejectedStock(p.PriceID, p.ProductType, p.Name, newQuantity, limit)
		}

		line := cloneLine(items[idx])
		line.Quantity = newQuantity
		if p.ProductType == Viands {
			line.AvailableQuantity = copyIntPtr(p.AvailableQuantity)
		} else {
			line.MaxQuantity = limitPtr(limit, bounded)
		}

		next := cloneItems(items)
		next[idx] = line
		return next, accepted(line)
	}

	if p.ProductType == Viands && bounded && requested > limit {
		return items, rejectedStock(p.PriceID, p.ProductType, p.Name, requested, limit)
	}

	line := newLine(p, requested, limit, bounded)
	next := append(cloneItems(items), line)
	return next, accepted(line)
}

// EvaluateUpdate computes the item list after setting the quantity of the
// matching line. The ceiling comes from the line itself.
func EvaluateUpdate(items []LineItem, priceID string, quantity int, productType ProductType) ([]LineItem, Outcome) {
	idx := indexOf(items, priceID, productType)
	if idx < 0 {
		return items, rejectedInvalid(ErrItemNotFound)
	}
	if quantity < 1 {
		return items, rejectedInvalid(ErrInvalidQuantity)
	}

	current := items[idx]
	if limit, bounded := current.ceiling(); bounded && quantity > limit {
		return items, rejectedStock(priceID, productType, current.Name, quantity, limit)
	}

	line := cloneLine(current)
	line.Quantity = quantity

	next := cloneItems(items)
	next[idx] = line
	return next, accepted(line)
}

// EvaluateRemove returns items without the matching line
func EvaluateRemove(items []LineItem, priceID string, productType ProductType) []LineItem {
	next := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.matches(priceID, productType) {
			continue
		}
		next = append(next, item)
	}
	return next
}

// Total sums price × quantity over items
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count sums the quantities over items
func Count(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func newLine(p Product, quantity, limit int, bounded bool) LineItem {
	line := LineItem{
		PriceID:           p.PriceID,
		ProductType:       p.ProductType,
		Name:              p.Name,
		ImageURL:          p.ImageURL,
		Price:             p.Price,
		Quantity:          quantity,
		AvailableQuantity: copyIntPtr(p.AvailableQuantity),
		Extra:             cloneExtra(p.Extra),
	}
	switch p.ProductType {
	case Viands:
		if p.ImageSrc != "" {
			line.ImageURL = p.ImageSrc
		}
	case Lechon:
		line.MaxQuantity = limitPtr(limit, bounded)
	}
	return line
}

func indexOf(items []LineItem, priceID string, productType ProductType) int {
	for i, item := range items {
		if item.matches(priceID, productType) {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	next := make([]LineItem, len(items), len(items)+1)
	copy(next, items)
	return next
}

func cloneLine(l LineItem) LineItem {
	l.AvailableQuantity = copyIntPtr(l.AvailableQuantity)
	l.MaxQuantity = copyIntPtr(l.MaxQuantity)
	l.Extra = cloneExtra(l.Extra)
	return l
}

func limitPtr(limit int, bounded bool) *int {
	if !bounded {
		return nil
	}
	return intPtr(limit)
}
