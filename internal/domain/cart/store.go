// internal/domain/cart/store.go
package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store owns the cart of one browsing context. It is not safe for
// concurrent use; callers serialize operations on a Store.
type Store struct {
	storage        LocalStorage
	key            string
	persistTimeout time.Duration
	log            *logrus.Entry

	async  bool
	writer *writeBehind

	items []LineItem
	total decimal.Decimal
}

// Option configures a Store
type Option func(*Store)

// WithStorageKey overrides DefaultStorageKey
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the entry persistence failures are logged to
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Store) {
		if entry != nil {
			s.log = entry
		}
	}
}

// WithPersistTimeout bounds every storage call
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// WithWriteBehind makes mutations return without waiting for storage.
// Pending writes are applied by a background goroutine until Close.
func WithWriteBehind() Option {
	return func(s *Store) {
		s.async = true
	}
}

// NewStore creates a store and rehydrates it from storage. A missing or
// unreadable saved cart yields an empty cart.
func NewStore(ctx context.Context, storage LocalStorage, opts ...Option) *Store {
	s := &Store{
		storage:        storage,
		key:            DefaultStorageKey,
		persistTimeout: 3 * time.Second,
		log:            logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}
	s.log = s.log.WithField("component", "cart")

	s.items = s.load(ctx)
	s.total = Total(s.items)

	if s.async {
		s.writer = newWriteBehind(s.storage, s.key, s.persistTimeout, s.log)
	}
	return s
}

func (s *Store) load(ctx context.Context) []LineItem {
	ctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	raw, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read saved cart, starting empty")
		return []LineItem{}
	}
	if !ok {
		return []LineItem{}
	}

	items, err := DecodeItems(raw)
	if err != nil {
		s.log.WithError(err).Warn("Discarding unreadable saved cart")
		return []LineItem{}
	}
	return items
}

// AddToCart adds requested units of p, merging into an existing line with the
// same price id and product type. A zero request adds DefaultQuantity.
func (s *Store) AddToCart(p Product, requested int) Outcome {
	next, outcome := EvaluateAdd(s.items, p, requested)
	s.finish("add", p.PriceID, p.ProductType, next, outcome)
	return outcome
}

// UpdateQuantity sets the quantity of an existing line
func (s *Store) UpdateQuantity(priceID string, quantity int, productType ProductType) Outcome {
	next, outcome := EvaluateUpdate(s.items, priceID, quantity, productType)
	s.finish("update", priceID, productType, next, outcome)
	return outcome
}

// RemoveFromCart drops the matching line. Removing an absent line is a no-op.
func (s *Store) RemoveFromCart(priceID string, productType ProductType) {
	s.commit(EvaluateRemove(s.items, priceID, productType))
}

// ClearCart empties the cart and erases the saved copy
func (s *Store) ClearCart() {
	s.items = []LineItem{}
	s.total = decimal.Zero
	s.persist(write{remove: true})
}

// Items returns a copy of the current line items
func (s *Store) Items() []LineItem {
	items := make([]LineItem, len(s.items))
	for i, item := range s.items {
		items[i] = cloneLine(item)
	}
	return items
}

// Total returns Σ price × quantity over the current items
func (s *Store) Total() decimal.Decimal {
	return s.total
}

// Count returns the number of units in the cart
func (s *Store) Count() int {
	return Count(s.items)
}

// Snapshot returns items, total and count together
func (s *Store) Snapshot() State {
	return State{
		Items: s.Items(),
		Total: s.total,
		Count: s.Count(),
	}
}

// Close flushes pending writes. Later mutations persist synchronously.
func (s *Store) Close() {
	if s.writer != nil {
		s.writer.close()
		s.writer = nil
	}
	s.async = false
}

func (s *Store) finish(op, priceID string, productType ProductType, next []LineItem, outcome Outcome) {
	entry := s.log.WithFields(logrus.Fields{
		"op":           op,
		"price_id":     priceID,
		"product_type": productType,
		"verdict":      outcome.Verdict.String(),
	})
	if !outcome.Accepted() {
		entry.WithError(outcome.Err).Debug("Cart mutation rejected")
		return
	}
	s.commit(next)
	entry.WithField("quantity", outcome.Item.Quantity).Debug("Cart mutation applied")
}

func (s *Store) commit(next []LineItem) {
	s.items = next
	s.total = Total(next)

	value, err := EncodeItems(next)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode cart")
		return
	}
	s.persist(write{value: value})
}

// persist hands w to the write-behind goroutine, or applies it inline.
// Failures are logged and never undo the in-memory change.
func (s *Store) persist(w write) {
	if s.writer != nil {
		s.writer.submit(w)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	if err := applyWrite(ctx, s.storage, s.key, w); err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("Failed to persist cart")
	}
}
