package cache

import "strings"

// ScopedKeyer prefixes every key of an inner Keyer. Renderer output changes
// between releases, so the CLI scopes keys by build version and a new binary
// never serves artifacts drawn by an old one.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer scopes inner (a DefaultKeyer when nil) under scope. The
// scope is joined to keys with a colon.
func NewScopedKeyer(inner Keyer, scope string) *ScopedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, scope: strings.TrimSuffix(scope, ":")}
}

// Scope returns the prefix without its separator.
func (k *ScopedKeyer) Scope() string { return k.scope }

func (k *ScopedKeyer) ProfileKey(contentHash string, opts ProfileKeyOpts) string {
	return k.wrap(k.inner.ProfileKey(contentHash, opts))
}

func (k *ScopedKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return k.wrap(k.inner.ArtifactKey(contentHash, opts))
}

func (k *ScopedKeyer) wrap(key string) string {
	if k.scope == "" {
		return key
	}
	return k.scope + ":" + key
}
