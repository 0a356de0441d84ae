package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// entry is the in-memory record. seq orders usages strictly so recency
// ties never depend on clock granularity.
type entry struct {
	text        string
	translation string
	hitCount    int
	lastUsed    time.Time
	seq         uint64
}

// FrequencyCache is a bounded, frequency-ranked translation cache. When an
// insert pushes it past capacity, the entry with the lowest hit count is
// evicted, ties broken least-recently-used. All mutations are serialized
// behind one mutex, so lookup-then-insert races between workers cannot
// lose updates.
//
// Every mutation is written through to the configured Store under the same
// lock, so the durable snapshot always reflects the latest mutation and
// concurrent saves cannot land out of order. Persistence failures are
// logged and non-fatal; the in-memory state stays authoritative for the
// session.
type FrequencyCache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int
	seq      uint64
	store    Store
	log      zerolog.Logger
}

// FrequencyCacheOption configures a FrequencyCache.
type FrequencyCacheOption func(*FrequencyCache)

// WithStore attaches a persistence backend. The snapshot is loaded during
// construction; a missing or unreadable snapshot yields an empty cache.
func WithStore(store Store) FrequencyCacheOption {
	return func(c *FrequencyCache) { c.store = store }
}

// WithLogger sets the logger for persistence failures.
func WithLogger(log zerolog.Logger) FrequencyCacheOption {
	return func(c *FrequencyCache) { c.log = log }
}

// NewFrequencyCache creates a cache bounded to capacity entries. A
// capacity of 0 or less uses DefaultCapacity.
func NewFrequencyCache(capacity int, opts ...FrequencyCacheOption) *FrequencyCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &FrequencyCache{
		entries:  make(map[string]*entry),
		capacity: capacity,
		log:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.load()
	return c
}

func (c *FrequencyCache) load() {
	if c.store == nil {
		return
	}

	stored, err := c.store.Load()
	if err != nil {
		c.log.Warn().Err(err).Msg("cache store unreadable, starting empty")
		return
	}

	// Replay in recency order so seq reflects the persisted LastUsed.
	keys := make([]string, 0, len(stored))
	for key := range stored {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return stored[keys[i]].LastUsed.Before(stored[keys[j]].LastUsed)
	})

	for _, key := range keys {
		se := stored[key]
		if se.HitCount < 1 {
			se.HitCount = 1
		}
		c.seq++
		c.entries[key] = &entry{
			text:        se.Text,
			translation: se.Translation,
			hitCount:    se.HitCount,
			lastUsed:    se.LastUsed,
			seq:         c.seq,
		}
	}
	c.evictLocked()
}

// Lookup returns the cached translation for key. It does not change the
// entry's ranking; every usage is accounted through Record.
func (c *FrequencyCache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	return e.translation, true
}

// Peek returns a copy of the full entry for key, for inspection.
func (c *FrequencyCache) Peek(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Text:        e.text,
		Translation: e.translation,
		HitCount:    e.hitCount,
		LastUsed:    e.lastUsed,
	}, true
}

// Record inserts a translation for key, or increments the existing
// entry's hit count, then applies eviction. The whole read-modify-write
// is atomic.
func (c *FrequencyCache) Record(key, text, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	if e, ok := c.entries[key]; ok {
		e.hitCount++
		e.lastUsed = time.Now()
		e.seq = c.seq
	} else {
		c.entries[key] = &entry{
			text:        text,
			translation: translation,
			hitCount:    1,
			lastUsed:    time.Now(),
			seq:         c.seq,
		}
		c.evictLocked()
	}

	c.persistLocked()
}

// evictLocked removes lowest-ranked entries until the bound holds.
// Must be called with the lock held.
func (c *FrequencyCache) evictLocked() {
	for len(c.entries) > c.capacity {
		var victim string
		var victimEntry *entry
		for key, e := range c.entries {
			if victimEntry == nil ||
				e.hitCount < victimEntry.hitCount ||
				(e.hitCount == victimEntry.hitCount && e.seq < victimEntry.seq) {
				victim = key
				victimEntry = e
			}
		}
		delete(c.entries, victim)
	}
}

// Len returns the number of cached entries.
func (c *FrequencyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry and persists the empty snapshot.
func (c *FrequencyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.persistLocked()
}

// History returns the cached source strings ordered by hit count
// descending, ties broken by most recent use.
func (c *FrequencyCache) History() []HistoryEntry {
	c.mu.Lock()
	entries := make([]entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, *e)
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].hitCount != entries[j].hitCount {
			return entries[i].hitCount > entries[j].hitCount
		}
		return entries[i].seq > entries[j].seq
	})

	history := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		history[i] = HistoryEntry{Text: e.text, Count: e.hitCount}
	}
	return history
}

// snapshotLocked copies the current state for persistence.
// Must be called with the lock held.
func (c *FrequencyCache) snapshotLocked() map[string]StoredEntry {
	snapshot := make(map[string]StoredEntry, len(c.entries))
	for key, e := range c.entries {
		snapshot[key] = StoredEntry{
			Text:        e.text,
			Translation: e.translation,
			HitCount:    e.hitCount,
			LastUsed:    e.lastUsed,
		}
	}
	return snapshot
}

// persistLocked saves the current state. Saving under the lock keeps saves
// ordered with their mutations; the snapshot is at most capacity entries,
// so the write stays cheap. Must be called with the lock held.
func (c *FrequencyCache) persistLocked() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(c.snapshotLocked()); err != nil {
		c.log.Warn().Err(err).Msg("cache persist failed")
	}
}
