package levels

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"cache-manager/config"
	"cache-manager/internal/common/errors"
	"cache-manager/internal/common/logging"
	"cache-manager/model"
)

// Memory implements a thread-safe LRU level with per-entry TTLs. A background
// sweep removes expired entries on a fixed period; lookups also drop expired
// entries lazily so a stale entry is never returned between sweeps.
type Memory struct {
	maxKeys     int
	defaultTTL  time.Duration
	checkPeriod time.Duration

	items   map[string]*memoryItem
	lruList *list.List
	mu      sync.RWMutex

	evictions int64

	logger   logging.Logger
	stopChan chan struct{}
}

type memoryItem struct {
	key     string
	entry   *model.Entry
	element *list.Element
}

// NewMemory creates the in-process level and starts its expiry sweep.
func NewMemory(cfg config.MemoryConfig, logger logging.Logger) *Memory {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000 // Default key bound
	}
	checkPeriod := cfg.CheckPeriod()
	if checkPeriod <= 0 {
		checkPeriod = time.Minute
	}

	m := &Memory{
		maxKeys:     maxKeys,
		defaultTTL:  cfg.DefaultTTL(),
		checkPeriod: checkPeriod,
		items:       make(map[string]*memoryItem),
		lruList:     list.New(),
		logger:      logger,
		stopChan:    make(chan struct{}),
	}

	// Start sweep goroutine
	go m.sweep()

	return m
}

// Name returns "l1".
func (m *Memory) Name() string {
	return L1
}

// Get retrieves the entry stored under key. The returned entry is a copy,
// so callers may mutate it without affecting the stored one.
func (m *Memory) Get(ctx context.Context, key string) (*model.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, exists := m.items[key]
	if !exists {
		return nil, false
	}

	// Check if expired
	if item.entry.Expired(time.Now()) {
		m.removeItem(item)
		return nil, false
	}

	// Move to front (most recently used)
	m.lruList.MoveToFront(item.element)

	return item.entry.Clone(), true
}

// Set stores a copy of entry under key, stamping its expiry from ttl.
func (m *Memory) Set(ctx context.Context, key string, entry *model.Entry, ttl time.Duration) error {
	if entry == nil {
		return errors.InternalError("cannot store a nil cache entry", nil)
	}

	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	stored := entry.Clone()
	stored.Key = key
	if ttl > 0 {
		stored.ExpiresAt = time.Now().Add(ttl)
	} else {
		stored.ExpiresAt = time.Time{} // Never expires
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check if item already exists
	if existing, exists := m.items[key]; exists {
		existing.entry = stored
		m.lruList.MoveToFront(existing.element)
		return nil
	}

	// Create new item
	item := &memoryItem{
		key:   key,
		entry: stored,
	}

	// Add to front of LRU list
	item.element = m.lruList.PushFront(item)
	m.items[key] = item

	// Check if we need to evict items
	if m.lruList.Len() > m.maxKeys {
		m.evictLRU()
	}

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item, exists := m.items[key]; exists {
		m.removeItem(item)
	}

	return nil
}

// Scan returns the keys of live entries that begin with prefix.
func (m *Memory) Scan(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	keys := make([]string, 0, len(m.items))
	for key, item := range m.items {
		if item.entry.Expired(now) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Ping always succeeds for the in-process level.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close stops the expiry sweep. Close is idempotent.
func (m *Memory) Close() error {
	select {
	case <-m.stopChan:
		// Already stopped
	default:
		close(m.stopChan)
	}
	return nil
}

// Size returns the current number of stored entries, including any that
// have expired but not been swept yet.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Evictions returns how many entries were removed to honor the key bound.
func (m *Memory) Evictions() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.evictions
}

// Ensure Memory implements the level interfaces
var (
	_ Level            = (*Memory)(nil)
	_ EvictionReporter = (*Memory)(nil)
)

// removeItem removes an item from both the map and LRU list
func (m *Memory) removeItem(item *memoryItem) {
	delete(m.items, item.key)
	m.lruList.Remove(item.element)
}

// evictLRU removes the least recently used item
func (m *Memory) evictLRU() {
	element := m.lruList.Back()
	if element == nil {
		return
	}

	item := element.Value.(*memoryItem)
	m.removeItem(item)
	m.evictions++

	m.logger.Debug("Evicted least recently used entry",
		logging.String("level", L1),
		logging.String("key", item.key),
	)
}

// sweep periodically removes expired entries
func (m *Memory) sweep() {
	ticker := time.NewTicker(m.checkPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stopChan:
			return
		}
	}
}

// removeExpired removes all expired entries
func (m *Memory) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var expired []*memoryItem

	// Find expired items
	for _, item := range m.items {
		if item.entry.Expired(now) {
			expired = append(expired, item)
		}
	}

	// Remove expired items
	for _, item := range expired {
		m.removeItem(item)
	}

	if len(expired) > 0 {
		m.logger.Debug("Removed expired entries",
			logging.String("level", L1),
			logging.Int("count", len(expired)),
		)
	}
}
