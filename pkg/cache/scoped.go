package cache

// DefaultKeyPrefix scopes the router's keys in shared backends. Bump the
// version when the cached solution format changes.
const DefaultKeyPrefix = "mazeroute:v1:"

// ScopedKeyer wraps a Keyer with a prefix, so several deployments or
// schema versions can share one backend without seeing each other's
// entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), DefaultKeyPrefix)
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

// RouteKey generates a prefixed key for routing results.
func (k *ScopedKeyer) RouteKey(inputHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(inputHash, opts)
}

// RenderKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) RenderKey(solutionHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(solutionHash, opts)
}
