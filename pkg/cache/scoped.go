package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each tenant its
// own namespace in a shared backend.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "team:finance:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner. A nil inner uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SeriesKey returns the prefixed series key.
func (k *ScopedKeyer) SeriesKey(payloadHash, period string) string {
	return k.prefix + k.inner.SeriesKey(payloadHash, period)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(seriesHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(seriesHash, opts)
}
