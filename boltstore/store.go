// Package boltstore provides a persistent document store on top of Bolt.
// The whole document lives under a single key in a single bucket, encoded
// with msgpack; Bolt supplies atomicity and durability, and the current
// document is mirrored in memory so snapshots are cheap.
package boltstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/andreyvit/prefs"
)

const defaultBucket = "prefs"

var docKey = []byte("doc")

type Options struct {
	Logf func(format string, args ...any)

	// Bucket overrides the bucket name, letting several stores share one
	// Bolt file.
	Bucket string

	// IsTesting trades durability for speed (NoSync), like a throwaway
	// test database wants.
	IsTesting bool
}

// Store persists one document of type D in a Bolt database. D values are
// treated as immutable once handed out.
type Store[D any] struct {
	bdb    *bbolt.DB
	opt    Options
	bucket []byte

	mu     sync.Mutex
	doc    D // decoded mirror of the committed document
	closed bool

	bcast prefs.Broadcaster[D]
}

// Open opens (creating as needed) the Bolt file at path and loads the stored
// document, falling back to initial when none has been committed yet.
func Open[D any](path string, initial D, opt Options) (*Store[D], error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("boltstore: %w", err)
	}

	s := &Store[D]{bdb: bdb, opt: opt, bucket: []byte(defaultBucket), doc: initial}
	if opt.Bucket != "" {
		s.bucket = []byte(opt.Bucket)
	}

	err = bdb.Update(func(btx *bbolt.Tx) error {
		b, err := btx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		raw := b.Get(docKey)
		if raw == nil {
			return nil
		}
		var doc D
		if err := msgpack.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("stored document: %w", err)
		}
		s.doc = doc
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("boltstore: %w", err)
	}
	return s, nil
}

// Bolt returns the underlying Bolt database.
func (s *Store[D]) Bolt() *bbolt.DB {
	return s.bdb
}

func (s *Store[D]) Snapshot(ctx context.Context) (D, error) {
	var zero D
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return zero, fmt.Errorf("boltstore: store closed")
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
		return fmt.Errorf("boltstore: store closed")
	}

	doc, err := body(s.doc)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		// Cancelled before commit: the Bolt transaction never starts.
		return err
	}

	raw, err := msgpack.Marshal(doc)
	if err != nil {
		return fmt.Errorf("boltstore: encoding document: %w", err)
	}
	err = s.bdb.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(s.bucket).Put(docKey, raw)
	})
	if err != nil {
		return fmt.Errorf("boltstore: %w", err)
	}

	s.doc = doc
	s.logf("committed %d bytes", len(raw))
	s.bcast.Publish(doc)
	return nil
}

func (s *Store[D]) Changes(ctx context.Context) <-chan D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bcast.Subscribe(ctx, s.doc)
}

func (s *Store[D]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.bdb.Close()
}

func (s *Store[D]) logf(format string, args ...any) {
	if s.opt.Logf != nil {
		s.opt.Logf("boltstore: "+format, args...)
	}
}
