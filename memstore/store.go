// Package memstore provides a transient in-memory document store, mainly for
// tests and ephemeral configuration. It satisfies the prefs Store contract:
// consistent snapshots, serialized atomic transactions and an exactly-once
// change stream.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/andreyvit/prefs"
)

type Options struct {
	Logf func(format string, args ...any)
}

// Store holds one document of type D in memory. D values are treated as
// immutable: Transact bodies must return updated copies, never mutate the
// document they are given.
type Store[D any] struct {
	opt Options

	mu     sync.Mutex
	doc    D
	closed bool

	bcast prefs.Broadcaster[D]
}

func New[D any](initial D, opt Options) *Store[D] {
	return &Store[D]{opt: opt, doc: initial}
}

func (s *Store[D]) Snapshot(ctx context.Context) (D, error) {
	var zero D
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return zero, fmt.Errorf("memstore: store closed")
	}
	return s.doc, nil
}

func (s *Store[D]) Transact(ctx context.Context, body func(D) (D, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("memstore: store closed")
	}

	doc, err := body(s.doc)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		// Cancelled before commit: nothing is applied.
		return err
	}
	s.doc = doc
	s.logf("committed transaction")
	s.bcast.Publish(doc)
	return nil
}

func (s *Store[D]) Changes(ctx context.Context) <-chan D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bcast.Subscribe(ctx, s.doc)
}

// Close marks the store closed; subsequent operations fail. Outstanding
// change subscribers are left to their contexts.
func (s *Store[D]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store[D]) logf(format string, args ...any) {
	if s.opt.Logf != nil {
		s.opt.Logf("memstore: "+format, args...)
	}
}
