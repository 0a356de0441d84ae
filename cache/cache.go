// Package cache provides the bounded, frequency-ranked translation cache
// and its persistence backends.
package cache

import "time"

// DefaultCapacity is the cache bound when none is configured.
const DefaultCapacity = 15

// Entry is a cached translation together with its usage ranking state.
// Entries are owned by the cache and only ever mutated through it.
type Entry struct {
	Text        string    // Normalized source text
	Translation string    // Translated payload
	HitCount    int       // Usage count, >= 1, non-decreasing until eviction
	LastUsed    time.Time // Last lookup or record for this key
}

// StoredEntry is the persisted form of an Entry.
type StoredEntry struct {
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
	HitCount    int       `json:"hit_count"`
	LastUsed    time.Time `json:"last_used"`
}

// Store is a persistence backend for cache snapshots. A Load error means
// the stored data was unreadable; the cache logs it and starts empty. A
// missing store is not an error and loads as an empty snapshot.
type Store interface {
	Load() (map[string]StoredEntry, error)
	Save(entries map[string]StoredEntry) error
}
