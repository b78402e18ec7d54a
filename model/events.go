package model

import "time"

// EventType identifies a cache lifecycle event.
type EventType string

const (
	EventHit         EventType = "hit"
	EventMiss        EventType = "miss"
	EventSet         EventType = "set"
	EventDelete      EventType = "delete"
	EventInvalidated EventType = "invalidated"
	EventHealth      EventType = "health"
	EventMetrics     EventType = "metrics"
)

// Event carries the details of one cache lifecycle event. Fields beyond
// Type and Timestamp are populated per event type: Key/Level/Strategy for
// operation events, Rule/Count for invalidations, Health for probe results,
// Stats for metrics samples.
type Event struct {
	Type      EventType     `json:"type"`
	Key       string        `json:"key,omitempty"`
	Level     string        `json:"level,omitempty"`
	Strategy  string        `json:"strategy,omitempty"`
	Rule      string        `json:"rule,omitempty"`
	Count     int           `json:"count,omitempty"`
	Health    *HealthReport `json:"health,omitempty"`
	Stats     *Stats        `json:"stats,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Handler receives cache events. Handlers for one event run in
// registration order; ordering across events is not guaranteed.
type Handler func(Event)
