package cart

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	getItemFunc    func(ctx context.Context, key string) (string, bool, error)
	setItemFunc    func(ctx context.Context, key, value string) error
	removeItemFunc func(ctx context.Context, key string) error
}

func (f *fakeStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if f.getItemFunc != nil {
		return f.getItemFunc(ctx, key)
	}
	return "", false, nil
}

func (f *fakeStorage) SetItem(ctx context.Context, key, value string) error {
	if f.setItemFunc != nil {
		return f.setItemFunc(ctx, key, value)
	}
	return nil
}

func (f *fakeStorage) RemoveItem(ctx context.Context, key string) error {
	if f.removeItemFunc != nil {
		return f.removeItemFunc(ctx, key)
	}
	return nil
}

func ptr(v int) *int { return &v }

func viand(priceID string, price int64, available int) Product {
	return Product{
		PriceID:           priceID,
		ProductType:       Viands,
		Name:              "Dinuguan",
		Price:             decimal.NewFromInt(price),
		AvailableQuantity: ptr(available),
	}
}

func lechon(priceID string, price int64, lot int) Product {
	return Product{
		PriceID:     priceID,
		ProductType: Lechon,
		Name:        "Lechon Belly",
		Price:       decimal.NewFromInt(price),
		Quantity:    ptr(lot),
	}
}

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	return NewStore(context.Background(), storage), storage
}

func assertTotalConsistent(t *testing.T, s *Store) {
	t.Helper()
	assert.True(t, Total(s.Items()).Equal(s.Total()), "total %s does not match items", s.Total())
}

func TestAddToCart_ViandsDefaultQuantityThenOverflow(t *testing.T) {
	s, _ := newTestStore(t)

	outcome := s.AddToCart(viand("P1", 10, 5), 0)
	require.True(t, outcome.Accepted())

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(s.Total()))

	outcome = s.AddToCart(viand("P1", 10, 5), 5)
	assert.Equal(t, RejectedInsufficientStock, outcome.Verdict)
	assert.Equal(t, 5, outcome.Ceiling)
	assert.ErrorIs(t, outcome.Err, ErrInsufficientStock)

	items = s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(s.Total()))
}

func TestAddToCart_ViandsNewLineAboveStockRejected(t *testing.T) {
	s, storage := newTestStore(t)

	outcome := s.AddToCart(viand("P1", 10, 2), 3)
	assert.Equal(t, RejectedInsufficientStock, outcome.Verdict)
	assert.Equal(t, 2, outcome.Ceiling)
	assert.Empty(t, s.Items())

	_, ok, _ := storage.GetItem(context.Background(), DefaultStorageKey)
	assert.False(t, ok, "rejected add must not persist")
}

func TestAddToCart_ViandsRefreshesAvailability(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.AddToCart(viand("P1", 10, 5), 2).Accepted())
	require.True(t, s.AddToCart(viand("P1", 10, 8), 3).Accepted())

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	require.NotNil(t, items[0].AvailableQuantity)
	assert.Equal(t, 8, *items[0].AvailableQuantity)

	// the refreshed ceiling now governs updates
	assert.True(t, s.UpdateQuantity("P1", 8, Viands).Accepted())
	assert.False(t, s.UpdateQuantity("P1", 9, Viands).Accepted())
}

func TestAddToCart_SamePriceIDDifferentTypeNotMerged(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.AddToCart(viand("P1", 10, 5), 1).Accepted())
	require.True(t, s.AddToCart(lechon("P1", 100, 3), 1).Accepted())

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, Viands, items[0].ProductType)
	assert.Equal(t, Lechon, items[1].ProductType)
	assert.True(t, decimal.NewFromInt(110).Equal(s.Total()))
	assertTotalConsistent(t, s)
}

func TestAddToCart_NewLechonLineSkipsCeilingCheck(t *testing.T) {
	s, _ := newTestStore(t)

	outcome := s.AddToCart(lechon("L1", 100, 2), 5)
	require.True(t, outcome.Accepted())
	require.NotNil(t, outcome.Item.MaxQuantity)
	assert.Equal(t, 2, *outcome.Item.MaxQuantity)
	assert.Equal(t, 5, outcome.Item.Quantity)

	// merging into the existing line is checked
	outcome = s.AddToCart(lechon("L1", 100, 2), 1)
	assert.Equal(t, RejectedInsufficientStock, outcome.Verdict)
	assert.Equal(t, 2, outcome.Ceiling)
	assert.Equal(t, 5, s.Items()[0].Quantity)
}

func TestAddToCart_LechonCeilingPrefersAvailableQuantity(t *testing.T) {
	s, _ := newTestStore(t)

	p := lechon("L1", 100, 10)
	p.AvailableQuantity = ptr(3)
	require.True(t, s.AddToCart(p, 2).Accepted())
	assert.Equal(t, 3, *s.Items()[0].MaxQuantity)

	outcome := s.AddToCart(p, 2)
	assert.Equal(t, RejectedInsufficientStock, outcome.Verdict)
	assert.Equal(t, 3, outcome.Ceiling)

	// a zero servings count falls back to the lot size
	p.AvailableQuantity = ptr(0)
	outcome = s.AddToCart(p, 2)
	require.True(t, outcome.Accepted())
	assert.Equal(t, 4, outcome.Item.Quantity)
	assert.Equal(t, 10, *outcome.Item.MaxQuantity)
}

func TestAddToCart_InvalidRequests(t *testing.T) {
	s, _ := newTestStore(t)

	tests := []struct {
		name      string
		product   Product
		requested int
		err       error
	}{
		{"negative quantity", viand("P1", 10, 5), -1, ErrInvalidQuantity},
		{"missing price id", viand("", 10, 5), 1, ErrMissingPriceID},
		{"unknown type", Product{PriceID: "X", ProductType: "dessert"}, 1, ErrUnknownProductType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := s.AddToCart(tt.product, tt.requested)
			assert.Equal(t, RejectedInvalid, outcome.Verdict)
			assert.ErrorIs(t, outcome.Err, tt.err)
			assert.Empty(t, Notice(outcome))
		})
	}
	assert.Empty(t, s.Items())
}

func TestUpdateQuantity_LechonMaxQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.AddToCart(lechon("P2", 100, 3), 1).Accepted())

	outcome := s.UpdateQuantity("P2", 3, Lechon)
	require.True(t, outcome.Accepted())
	assert.Equal(t, 3, s.Items()[0].Quantity)

	outcome = s.UpdateQuantity("P2", 4, Lechon)
	assert.Equal(t, RejectedInsufficientStock, outcome.Verdict)
	assert.Equal(t, 3, outcome.Ceiling)
	assert.Equal(t, 3, s.Items()[0].Quantity)
	assert.True(t, decimal.NewFromInt(300).Equal(s.Total()))
}

func TestUpdateQuantity_RejectsMissingAndBelowOne(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.AddToCart(viand("P1", 10, 5), 2).Accepted())

	outcome := s.UpdateQuantity("P1", 0, Viands)
	assert.Equal(t, RejectedInvalid, outcome.Verdict)
	assert.ErrorIs(t, outcome.Err, ErrInvalidQuantity)

	outcome = s.UpdateQuantity("P1", 1, Lechon)
	assert.Equal(t, RejectedInvalid, outcome.Verdict)
	assert.ErrorIs(t, outcome.Err, ErrItemNotFound)

	assert.Equal(t, 2, s.Items()[0].Quantity)
}

func TestUpdateQuantity_OnlyTouchesMatchingLine(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.AddToCart(viand("P1", 10, 5), 1).Accepted())
	require.True(t, s.AddToCart(viand("P2", 20, 5), 1).Accepted())

	require.True(t, s.UpdateQuantity("P2", 4, Viands).Accepted())

	items := s.Items()
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 4, items[1].Quantity)
	assert.True(t, decimal.NewFromInt(90).Equal(s.Total()))
}

func TestRemoveFromCart(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.AddToCart(viand("P1", 10, 5), 1).Accepted())
	require.True(t, s.AddToCart(lechon("P1", 100, 3), 1).Accepted())

	s.RemoveFromCart("missing", Viands)
	assert.Len(t, s.Items(), 2)

	s.RemoveFromCart("P1", Lechon)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, Viands, items[0].ProductType)
	assert.True(t, decimal.NewFromInt(10).Equal(s.Total()))
}

func TestClearCart_RemovesSavedKey(t *testing.T) {
	s, storage := newTestStore(t)
	require.True(t, s.AddToCart(viand("P1", 10, 5), 2).Accepted())

	_, ok, _ := storage.GetItem(context.Background(), DefaultStorageKey)
	require.True(t, ok)

	s.ClearCart()
	assert.Empty(t, s.Items())
	assert.True(t, decimal.Zero.Equal(s.Total()))
	assert.Equal(t, 0, s.Count())

	_, ok, _ = storage.GetItem(context.Background(), DefaultStorageKey)
	assert.False(t, ok, "clear must remove the key rather than write an empty list")

	reloaded := NewStore(context.Background(), storage)
	assert.Empty(t, reloaded.Items())
	assert.True(t, decimal.Zero.Equal(reloaded.Total()))
}

func TestNewStore_RehydratesSavedCart(t *testing.T) {
	s, storage := newTestStore(t)
	require.True(t, s.AddToCart(viand("P1", 10, 5), 2).Accepted())
	require.True(t, s.AddToCart(lechon("L1", 250, 3), 1).Accepted())

	reloaded := NewStore(context.Background(), storage)
	assert.Equal(t, s.Items(), reloaded.Items())
	assert.True(t, decimal.NewFromInt(270).Equal(reloaded.Total()))

	// the restored lechon ceiling is still enforced
	assert.False(t, reloaded.UpdateQuantity("L1", 4, Lechon).Accepted())
}

func TestNewStore_FailsSoft(t *testing.T) {
	t.Run("unparseable", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.SetItem(context.Background(), DefaultStorageKey, "{not json"))

		s := NewStore(context.Background(), storage)
		assert.Empty(t, s.Items())
		assert.True(t, decimal.Zero.Equal(s.Total()))
	})

	t.Run("null", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.SetItem(context.Background(), DefaultStorageKey, "null"))

		s := NewStore(context.Background(), storage)
		assert.Empty(t, s.Items())
	})

	t.Run("read error", func(t *testing.T) {
		storage := &fakeStorage{
			getItemFunc: func(ctx context.Context, key string) (string, bool, error) {
				return "", false, errors.New("storage unavailable")
			},
		}

		s := NewStore(context.Background(), storage)
		assert.Empty(t, s.Items())
	})
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	storage := &fakeStorage{
		setItemFunc: func(ctx context.Context, key, value string) error {
			return errors.New("quota exceeded")
		},
		removeItemFunc: func(ctx context.Context, key string) error {
			return errors.New("quota exceeded")
		},
	}
	s := NewStore(context.Background(), storage)

	require.True(t, s.AddToCart(viand("P1", 10, 5), 3).Accepted())
	assert.Equal(t, 3, s.Items()[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(s.Total()))

	s.ClearCart()
	assert.Empty(t, s.Items())
}

func TestPersistFailureKeepsMutation_WriteBehind(t *testing.T) {
	var attempts atomic.Int32
	storage := &fakeStorage{
		setItemFunc: func(ctx context.Context, key, value string) error {
			attempts.Add(1)
			return errors.New("quota exceeded")
		},
	}
	logger, hook := logtest.NewNullLogger()
	s := NewStore(context.Background(), storage, WithWriteBehind(), WithLogger(logrus.NewEntry(logger)))

	require.True(t, s.AddToCart(viand("P1", 10, 5), 3).Accepted())
	require.True(t, s.AddToCart(lechon("L1", 100, 2), 1).Accepted())
	s.Close()

	assert.GreaterOrEqual(t, attempts.Load(), int32(1))
	require.Len(t, s.Items(), 2)
	assert.Equal(t, 3, s.Items()[0].Quantity)
	assert.True(t, decimal.NewFromInt(130).Equal(s.Total()))
	assert.Equal(t, 4, s.Count())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Failed to persist cart", entry.Message)
}

func TestWithStorageKey(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewStore(context.Background(), storage, WithStorageKey("order"))
	require.True(t, s.AddToCart(viand("P1", 10, 5), 1).Accepted())

	_, ok, _ := storage.GetItem(context.Background(), "order")
	assert.True(t, ok)
	_, ok, _ = storage.GetItem(context.Background(), DefaultStorageKey)
	assert.False(t, ok)
}

func TestWithWriteBehind_FlushesOnClose(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewStore(context.Background(), storage, WithWriteBehind())

	require.True(t, s.AddToCart(viand("P1", 10, 5), 1).Accepted())
	require.True(t, s.AddToCart(viand("P1", 10, 5), 2).Accepted())
	require.True(t, s.AddToCart(lechon("L1", 100, 2), 1).Accepted())
	s.Close()

	raw, ok, err := storage.GetItem(context.Background(), DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok)

	items, err := DecodeItems(raw)
	require.NoError(t, err)
	assert.Equal(t, s.Items(), items)

	// after Close writes go straight to storage
	s.ClearCart()
	_, ok, _ = storage.GetItem(context.Background(), DefaultStorageKey)
	assert.False(t, ok)
}

func TestTotalTracksEveryMutation(t *testing.T) {
	s, _ := newTestStore(t)

	p := viand("P1", 0, 10)
	p.Price = decimal.RequireFromString("12.35")
	l := lechon("L1", 0, 4)
	l.Price = decimal.RequireFromString("1999.99")

	steps := []func(){
		func() { s.AddToCart(p, 3) },
		func() { s.AddToCart(l, 1) },
		func() { s.AddToCart(p, 20) },
		func() { s.UpdateQuantity("L1", 4, Lechon) },
		func() { s.UpdateQuantity("P1", 7, Viands) },
		func() { s.RemoveFromCart("P1", Viands) },
		func() { s.AddToCart(p, 1) },
	}
	for _, step := range steps {
		step()
		assertTotalConsistent(t, s)
	}

	assert.Equal(t, "8012.31", s.Total().StringFixed(2))
	assert.Equal(t, 5, s.Count())
}

func TestNotice(t *testing.T) {
	s, _ := newTestStore(t)

	outcome := s.AddToCart(viand("P1", 10, 2), 3)
	assert.Equal(t, "Sorry, only 2 servings available for Dinuguan", Notice(outcome))

	require.True(t, s.AddToCart(lechon("L1", 100, 1), 1).Accepted())
	outcome = s.UpdateQuantity("L1", 2, Lechon)
	assert.Equal(t, "Sorry, only 1 items available", Notice(outcome))

	assert.Empty(t, Notice(s.AddToCart(viand("P2", 10, 2), 1)))
}
