// Package model defines the data types shared by the cache manager, its
// storage levels, and its background workers.
package model

import "time"

// Entry is the stored representation of a cached value: the serialized
// payload plus the metadata needed to expire and decode it. Each storage
// level owns its own copy of an entry; levels never share one by reference.
type Entry struct {
	Key            string    `json:"key"`
	Payload        []byte    `json:"payload"`
	Compressed     bool      `json:"compressed"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	OriginalSize   int       `json:"original_size"`
	CompressedSize int       `json:"compressed_size,omitempty"`
}

// Expired reports whether the entry's TTL has passed at the given instant.
// Entries with a zero ExpiresAt never expire.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Clone returns a deep copy of the entry, including the payload bytes.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Payload != nil {
		clone.Payload = make([]byte, len(e.Payload))
		copy(clone.Payload, e.Payload)
	}
	return &clone
}
