package model

import "time"

// Strategy bundles the caching policy for one category of data: which
// levels to use (in lookup order; promotion runs in the reverse order),
// how long entries live per level, whether payloads are compressed, whether
// the category participates in warming, and which invalidation rules apply.
//
// Strategies are immutable once registered; the registry stores a copy and
// re-registration under the same name replaces the prior strategy
// atomically.
type Strategy struct {
	Name              string                   `json:"name"`
	Levels            []string                 `json:"levels"`
	TTL               map[string]time.Duration `json:"ttl_per_level"`
	Compression       bool                     `json:"compression"`
	Warming           bool                     `json:"warming"`
	InvalidationRules []string                 `json:"invalidation_rules,omitempty"`
}

// LevelTTL returns the TTL configured for the named level, or zero when
// the level has no TTL entry.
func (s Strategy) LevelTTL(level string) time.Duration {
	return s.TTL[level]
}

// Clone returns a deep copy of the strategy.
func (s Strategy) Clone() Strategy {
	clone := s
	if s.Levels != nil {
		clone.Levels = make([]string, len(s.Levels))
		copy(clone.Levels, s.Levels)
	}
	if s.TTL != nil {
		clone.TTL = make(map[string]time.Duration, len(s.TTL))
		for level, ttl := range s.TTL {
			clone.TTL[level] = ttl
		}
	}
	if s.InvalidationRules != nil {
		clone.InvalidationRules = make([]string, len(s.InvalidationRules))
		copy(clone.InvalidationRules, s.InvalidationRules)
	}
	return clone
}
