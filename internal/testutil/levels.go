// Package testutil provides scriptable test doubles for orchestrator tests.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"cache-manager/levels"
	"cache-manager/model"
)

// FakeLevel implements levels.Level over a plain map, with per-method error
// injection: FailOn("Set", err) makes every Set fail until Recover. Gets
// under an injected error report a miss, matching the Level contract.
type FakeLevel struct {
	name string

	mu            sync.Mutex
	entries       map[string]*model.Entry
	ttls          map[string]time.Duration
	errOnMethod   map[string]error
	callsByMethod map[string]int
	closed        bool
}

// NewFakeLevel creates an empty fake level with the given name.
func NewFakeLevel(name string) *FakeLevel {
	return &FakeLevel{
		name:          name,
		entries:       make(map[string]*model.Entry),
		ttls:          make(map[string]time.Duration),
		errOnMethod:   make(map[string]error),
		callsByMethod: make(map[string]int),
	}
}

func (f *FakeLevel) Name() string {
	return f.name
}

func (f *FakeLevel) Get(_ context.Context, key string) (*model.Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callsByMethod["Get"]++
	if f.errOnMethod["Get"] != nil {
		return nil, false
	}

	entry, ok := f.entries[key]
	if !ok {
		return nil, false
	}
	return entry.Clone(), true
}

func (f *FakeLevel) Set(_ context.Context, key string, entry *model.Entry, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callsByMethod["Set"]++
	if err := f.errOnMethod["Set"]; err != nil {
		return err
	}

	clone := entry.Clone()
	clone.Key = key
	f.entries[key] = clone
	f.ttls[key] = ttl
	return nil
}

func (f *FakeLevel) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callsByMethod["Delete"]++
	if err := f.errOnMethod["Delete"]; err != nil {
		return err
	}

	delete(f.entries, key)
	delete(f.ttls, key)
	return nil
}

func (f *FakeLevel) Scan(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callsByMethod["Scan"]++
	if err := f.errOnMethod["Scan"]; err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(f.entries))
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *FakeLevel) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callsByMethod["Ping"]++
	return f.errOnMethod["Ping"]
}

func (f *FakeLevel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return f.errOnMethod["Close"]
}

// FailOn makes every call to the named method fail with err until Recover.
func (f *FakeLevel) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errOnMethod[method] = err
}

// FailAll downs the level: every operation fails with err.
func (f *FakeLevel) FailAll(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, method := range []string{"Get", "Set", "Delete", "Scan", "Ping"} {
		f.errOnMethod[method] = err
	}
}

// Recover clears every injected error.
func (f *FakeLevel) Recover() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errOnMethod = make(map[string]error)
}

// Seed inserts an entry directly, bypassing error injection and counters.
func (f *FakeLevel) Seed(key string, entry *model.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	clone := entry.Clone()
	clone.Key = key
	f.entries[key] = clone
}

// Has reports whether the level currently holds key.
func (f *FakeLevel) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

// EntryFor returns a copy of the stored entry, or nil when absent.
func (f *FakeLevel) EntryFor(key string) *model.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[key]
	if !ok {
		return nil
	}
	return entry.Clone()
}

// TTLFor returns the TTL passed with the most recent Set for key.
func (f *FakeLevel) TTLFor(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

// Len returns the number of stored entries.
func (f *FakeLevel) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Calls returns how many times the named method ran.
func (f *FakeLevel) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callsByMethod[method]
}

// Closed reports whether Close has been called.
func (f *FakeLevel) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var _ levels.Level = (*FakeLevel)(nil)
