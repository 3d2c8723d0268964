package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// Cache cannot collide. The HTTP server uses it to keep its stored results
// apart from entries written by an embedded pipeline.
//
// Example usage:
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// OutcomeKey generates a prefixed outcome key.
func (k *ScopedKeyer) OutcomeKey(designHash string, opts OutcomeKeyOpts) string {
	return k.prefix + k.inner.OutcomeKey(designHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(outcomeHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(outcomeHash, format)
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(id string) string {
	return k.prefix + k.inner.ResultKey(id)
}
