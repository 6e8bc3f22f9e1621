// Package storage holds the string key/value port that persists session
// collections, plus its memory, redis and SQL backends.
package storage

import (
	"context"
	"strings"
)

// Store is a string key/value store. Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

const scopeSeparator = ":"

type scoped struct {
	inner  Store
	prefix string
}

// Scoped namespaces every key under the given scope, typically a session id.
// An empty scope returns the store unchanged.
func Scoped(store Store, scope string) Store {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return store
	}
	return &scoped{inner: store, prefix: "session" + scopeSeparator + scope + scopeSeparator}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}
