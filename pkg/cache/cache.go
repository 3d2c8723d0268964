// Package cache stores routing outcomes and rendered artifacts for the life
// of a process.
//
// Entries are keyed by content hash: the same design routed with the same
// options always maps to the same key, so a repeated request is served
// without running the order search again. Nothing is written to disk.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries. Zero means the entry never expires.
const (
	TTLOutcome  = time.Hour
	TTLArtifact = time.Hour
	TTLResult   = 24 * time.Hour
)

// Cache is a byte-oriented key/value store.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// OutcomeKeyOpts are the option fields that change a routing outcome.
type OutcomeKeyOpts struct {
	Strategy string `json:"strategy"`
	Limit    int    `json:"limit"`
	MaxNets  int    `json:"max_nets"`
}

// Keyer builds cache keys.
type Keyer interface {
	// OutcomeKey keys the routing outcome of a design.
	OutcomeKey(designHash string, opts OutcomeKeyOpts) string
	// ArtifactKey keys one rendered format of an outcome.
	ArtifactKey(outcomeHash, format string) string
	// ResultKey keys a stored result by its ID.
	ResultKey(id string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// OutcomeKey implements Keyer.
func (DefaultKeyer) OutcomeKey(designHash string, opts OutcomeKeyOpts) string {
	return hashKey("outcome", designHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(outcomeHash, format string) string {
	return hashKey("artifact", outcomeHash, format)
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(id string) string {
	return "result:" + id
}
