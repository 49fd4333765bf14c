// internal/domain/cart/entity.go
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductType selects the stock policy applied to a line item
type ProductType string

const (
	// Viands are portion-limited dishes capped by the live servings count
	Viands ProductType = "viands"
	// Lechon is sold in fixed lots capped by a per-order maximum
	Lechon ProductType = "lechon"
)

// Valid reports whether t is one of the known product types
func (t ProductType) Valid() bool {
	return t == Viands || t == Lechon
}

// DefaultQuantity is used when AddToCart is called without a quantity
const DefaultQuantity = 1

// Product is the catalog payload handed to AddToCart. The stock fields are
// trusted as supplied by the caller at call time.
type Product struct {
	PriceID     string          `json:"priceid"`
	ProductType ProductType     `json:"productType"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	ImageSrc    string          `json:"imageSrc,omitempty"`

	// AvailableQuantity is the live servings count for viands. Lechon uses it
	// as its ceiling when present and non-zero.
	AvailableQuantity *int `json:"availableQuantity,omitempty"`
	// Quantity is the lot size of a lechon offering, the fallback ceiling
	Quantity *int `json:"quantity,omitempty"`

	// Extra holds descriptive fields the store passes through untouched
	Extra map[string]json.RawMessage `json:"-"`
}

// LineItem is one entry of the cart, unique per (PriceID, ProductType)
type LineItem struct {
	PriceID           string
	ProductType       ProductType
	Name              string
	ImageURL          string
	Price             decimal.Decimal
	Quantity          int
	AvailableQuantity *int // viands ceiling, refreshed on every add
	MaxQuantity       *int // lechon ceiling, captured on add

	Extra map[string]json.RawMessage
}

// Subtotal returns price × quantity for the line
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// matches implements the identity rule: price id AND product type
func (l LineItem) matches(priceID string, productType ProductType) bool {
	return l.PriceID == priceID && l.ProductType == productType
}

// State is a read-only view of the cart
type State struct {
	Items []LineItem
	Total decimal.Decimal
	Count int
}

// MarshalJSON renders the total as a JSON number
func (s State) MarshalJSON() ([]byte, error) {
	items := s.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(struct {
		Items []LineItem  `json:"items"`
		Total json.Number `json:"total"`
		Count int         `json:"count"`
	}{
		Items: items,
		Total: json.Number(s.Total.String()),
		Count: s.Count,
	})
}

var lineItemFields = []string{
	"priceid", "productType", "name", "imageUrl", "price",
	"quantity", "availableQuantity", "maxQuantity",
}

var productFields = []string{
	"priceid", "productType", "name", "imageUrl", "imageSrc", "price",
	"availableQuantity", "quantity",
}

// lineItemJSON is the persisted layout of a line item
type lineItemJSON struct {
	PriceID           string      `json:"priceid"`
	ProductType       ProductType `json:"productType"`
	Name              string      `json:"name,omitempty"`
	ImageURL          string      `json:"imageUrl,omitempty"`
	Price             json.Number `json:"price"`
	Quantity          int         `json:"quantity"`
	AvailableQuantity *int        `json:"availableQuantity,omitempty"`
	MaxQuantity       *int        `json:"maxQuantity,omitempty"`
}

// MarshalJSON writes the known fields plus any passthrough fields
func (l LineItem) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(lineItemJSON{
		PriceID:           l.PriceID,
		ProductType:       l.ProductType,
		Name:              l.Name,
		ImageURL:          l.ImageURL,
		Price:             json.Number(l.Price.String()),
		Quantity:          l.Quantity,
		AvailableQuantity: l.AvailableQuantity,
		MaxQuantity:       l.MaxQuantity,
	})
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, l.Extra, lineItemFields)
}

// UnmarshalJSON reads the known fields and keeps the rest in Extra
func (l *LineItem) UnmarshalJSON(data []byte) error {
	var raw lineItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	price, err := parsePrice(raw.Price)
	if err != nil {
		return err
	}
	extra, err := splitExtra(data, lineItemFields)
	if err != nil {
		return err
	}

	*l = LineItem{
		PriceID:           raw.PriceID,
		ProductType:       raw.ProductType,
		Name:              raw.Name,
		ImageURL:          raw.ImageURL,
		Price:             price,
		Quantity:          raw.Quantity,
		AvailableQuantity: raw.AvailableQuantity,
		MaxQuantity:       raw.MaxQuantity,
		Extra:             extra,
	}
	return nil
}

// UnmarshalJSON reads a product payload and keeps unknown fields in Extra
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		PriceID           string      `json:"priceid"`
		ProductType       ProductType `json:"productType"`
		Name              string      `json:"name"`
		Price             json.Number `json:"price"`
		ImageURL          string      `json:"imageUrl"`
		ImageSrc          string      `json:"imageSrc"`
		AvailableQuantity *int        `json:"availableQuantity"`
		Quantity          *int        `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	price, err := parsePrice(raw.Price)
	if err != nil {
		return err
	}
	extra, err := splitExtra(data, productFields)
	if err != nil {
		return err
	}

	*p = Product{
		PriceID:           raw.PriceID,
		ProductType:       raw.ProductType,
		Name:              raw.Name,
		Price:             price,
		ImageURL:          raw.ImageURL,
		ImageSrc:          raw.ImageSrc,
		AvailableQuantity: raw.AvailableQuantity,
		Quantity:          raw.Quantity,
		Extra:             extra,
	}
	return nil
}

func parsePrice(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", n, err)
	}
	return price, nil
}

func splitExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func mergeExtra(data []byte, extra map[string]json.RawMessage, known []string) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	reserved := make(map[string]struct{}, len(known))
	for _, k := range known {
		reserved[k] = struct{}{}
	}
	for k, v := range extra {
		if _, ok := reserved[k]; ok {
			continue
		}
		all[k] = v
	}
	return json.Marshal(all)
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}
