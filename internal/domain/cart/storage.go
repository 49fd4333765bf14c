package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultStorageKey is the slot the cart is persisted under
const DefaultStorageKey = "cart"

// LocalStorage is a key-value slot owned by one browsing context
type LocalStorage interface {
	// GetItem returns the stored value and whether the key exists
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// MemoryStorage is an in-process LocalStorage. It is safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// EncodeItems serializes items in the persisted layout: a JSON array
func EncodeItems(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart items: %w", err)
	}
	return string(data), nil
}

// DecodeItems parses a persisted cart. A JSON null decodes to an empty cart.
func DecodeItems(raw string) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

// write is one persistence request. remove erases the key instead of setting it.
type write struct {
	remove bool
	value  string
}

func applyWrite(ctx context.Context, storage LocalStorage, key string, w write) error {
	if w.remove {
		return storage.RemoveItem(ctx, key)
	}
	return storage.SetItem(ctx, key, w.value)
}

// writeBehind applies writes on a background goroutine. Only the latest
// pending write is kept: every write carries the full cart, so an older one
// is superseded by a newer one.
type writeBehind struct {
	storage LocalStorage
	key     string
	timeout time.Duration
	log     *logrus.Entry

	mu      sync.Mutex
	pending *write

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newWriteBehind(storage LocalStorage, key string, timeout time.Duration, log *logrus.Entry) *writeBehind {
	w := &writeBehind{
		storage: storage,
		key:     key,
		timeout: timeout,
		log:     log,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// submit queues w and returns immediately
func (wb *writeBehind) submit(w write) {
	wb.mu.Lock()
	wb.pending = &w
	wb.mu.Unlock()

	select {
	case wb.wake <- struct{}{}:
	default:
	}
}

func (wb *writeBehind) run() {
	defer close(wb.stopped)
	for {
		select {
		case <-wb.wake:
			wb.flush()
		case <-wb.done:
			wb.flush()
			return
		}
	}
}

func (wb *writeBehind) flush() {
	wb.mu.Lock()
	w := wb.pending
	wb.pending = nil
	wb.mu.Unlock()

	if w == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wb.timeout)
	defer cancel()

	if err := applyWrite(ctx, wb.storage, wb.key, *w); err != nil {
		wb.log.WithError(err).WithField("key", wb.key).Warn("Failed to persist cart")
	}
}

// close applies any pending write and stops the goroutine
func (wb *writeBehind) close() {
	wb.once.Do(func() { close(wb.done) })
	<-wb.stopped
}
