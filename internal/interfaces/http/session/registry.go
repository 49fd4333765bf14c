// internal/interfaces/http/session/registry.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rubybelly/lechon-cart/internal/domain/cart"
	"github.com/sirupsen/logrus"
)

// StorageFactory returns the local storage of one browsing context. It must
// return the same backing data for the same session id on every call.
type StorageFactory func(sessionID string) cart.LocalStorage

// MemoryStorages keeps one in-process storage per session id for the life
// of the process, so a store rebuilt after idling finds its saved cart.
type MemoryStorages struct {
	mu   sync.Mutex
	byID map[string]*cart.MemoryStorage
}

// NewMemoryStorages creates an empty set of per-session storages
func NewMemoryStorages() *MemoryStorages {
	return &MemoryStorages{byID: make(map[string]*cart.MemoryStorage)}
}

// Storage returns the storage of sessionID, creating it on first use
func (m *MemoryStorages) Storage(sessionID string) cart.LocalStorage {
	m.mu.Lock()
	defer m.mu.Unlock()

	storage, ok := m.byID[sessionID]
	if !ok {
		storage = cart.NewMemoryStorage()
		m.byID[sessionID] = storage
	}
	return storage
}

// Session holds the single cart store of a browsing context
type Session struct {
	mu     sync.Mutex
	store  *cart.Store
	closed bool
}

// release flushes and closes the store. It returns once pending writes are
// applied; later calls are no-ops.
func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.store.Close()
}

// Registry keeps one cart store per session and releases idle ones
type Registry struct {
	mu sync.Mutex
	// sessions holds every store not yet released, including ones whose
	// cache entry expired while the eviction callback is still pending
	sessions map[string]*Session
	cache    *ttlcache.Cache[string, *Session]
	storage  StorageFactory
	opts     []cart.Option
	log      *logrus.Entry
}

// NewRegistry creates a registry whose stores are dropped after ttl without use
func NewRegistry(ttl time.Duration, storage StorageFactory, log *logrus.Entry, opts ...cart.Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		cache:    ttlcache.New[string, *Session](ttlcache.WithTTL[string, *Session](ttl)),
		storage:  storage,
		opts:     opts,
		log:      log,
	}

	r.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Session]) {
		sess := item.Value()
		sess.release()
		r.forget(item.Key(), sess)
		r.log.WithFields(logrus.Fields{
			"session": item.Key(),
			"reason":  reason,
		}).Debug("Released cart session")
	})

	go r.cache.Start()
	return r
}

// Do runs fn with exclusive access to the session's store, creating and
// rehydrating the store on first use
func (r *Registry) Do(ctx context.Context, sessionID string, fn func(store *cart.Store)) {
	for {
		sess := r.get(ctx, sessionID)

		sess.mu.Lock()
		if sess.closed {
			// evicted between lookup and lock; the next get builds a fresh store
			sess.mu.Unlock()
			continue
		}
		fn(sess.store)
		sess.mu.Unlock()
		return
	}
}

func (r *Registry) get(ctx context.Context, sessionID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item := r.cache.Get(sessionID); item != nil {
		return item.Value()
	}

	// Eviction callbacks run asynchronously. Flush the previous store here
	// so the new one rehydrates from its final write.
	if old, ok := r.sessions[sessionID]; ok {
		old.release()
		delete(r.sessions, sessionID)
	}
	r.cache.Delete(sessionID)

	opts := append([]cart.Option{
		cart.WithLogger(r.log.WithField("session", sessionID)),
	}, r.opts...)
	sess := &Session{
		store: cart.NewStore(ctx, r.storage(sessionID), opts...),
	}
	r.sessions[sessionID] = sess
	r.cache.Set(sessionID, sess, ttlcache.DefaultTTL)
	return sess
}

// forget drops sess unless a newer store already took its place
func (r *Registry) forget(sessionID string, sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[sessionID] == sess {
		delete(r.sessions, sessionID)
	}
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close stops expiry and flushes every store
func (r *Registry) Close() {
	r.cache.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, sess := range r.sessions {
		sess.release()
		delete(r.sessions, id)
	}
	r.cache.DeleteAll()
}
