package prefs

import (
	"context"
	"fmt"
	"runtime/debug"
)

// ReadTx is a batch read scope: a view over the one snapshot captured when
// the enclosing Read call began. Any number of Get calls over any number of
// fields observe the same point-in-time document; the scope never refreshes.
//
// A ReadTx is only valid inside the block it was passed to (except for
// scopes emitted by Watch, which wrap standalone snapshots) and must not be
// shared outside it.
type ReadTx[D any] struct {
	st   Store[D]
	doc  D
	done bool
}

// WriteTx is a batch write scope: every Set, Delete and Reset threads its
// mutation through the same evolving document, and all of them commit
// together or not at all. Later writes to the same field override earlier
// ones.
type WriteTx[D any] struct {
	st      Store[D]
	doc     D
	done    bool
	touched []fieldInvalidator
}

// EditTx combines a read view and a write scope over one transaction: a Get
// after a Set in the same scope observes the just-written value, not the
// pre-transaction snapshot.
type EditTx[D any] struct {
	WriteTx[D]
}

// Doc returns the document as seen by this scope.
func (tx *ReadTx[D]) Doc() D {
	tx.check()
	return tx.doc
}

// Doc returns the document as mutated so far within this scope.
func (tx *EditTx[D]) Doc() D {
	tx.check()
	return tx.doc
}

func (tx *ReadTx[D]) check() {
	if tx.done {
		panic(fmt.Errorf("prefs: %w", ErrTxFinished))
	}
}

func (tx *WriteTx[D]) check() {
	if tx.done {
		panic(fmt.Errorf("prefs: %w", ErrTxFinished))
	}
}

func (tx *ReadTx[D]) finish()  { tx.done = true }
func (tx *WriteTx[D]) finish() { tx.done = true }

// reader is the read capability a scope grants to Get. Only scopes created
// by this package implement it.
type reader[D any] interface {
	readDoc() (Store[D], D)
}

// writer is the write capability a scope grants to Set, Delete and Reset.
type writer[D any] interface {
	applyWrite(st Store[D], f fieldInvalidator, mut func(D) D)
}

func (tx *ReadTx[D]) readDoc() (Store[D], D) {
	tx.check()
	return tx.st, tx.doc
}

func (tx *EditTx[D]) readDoc() (Store[D], D) {
	tx.check()
	return tx.st, tx.doc
}

func (tx *WriteTx[D]) applyWrite(st Store[D], f fieldInvalidator, mut func(D) D) {
	tx.check()
	checkSameStore(tx.st, st)
	tx.doc = mut(tx.doc)
	tx.touched = append(tx.touched, f)
}

func checkSameStore[D any](txStore, fieldStore Store[D]) {
	if txStore != fieldStore {
		panic(fmt.Errorf("prefs: %w", ErrForeignField))
	}
}

// Get reads a field against the scope's document view. Inside a ReadTx this
// is the frozen snapshot; inside an EditTx it reflects writes already made in
// the same scope.
func Get[D, F any](tx reader[D], f *Field[D, F]) F {
	st, doc := tx.readDoc()
	checkSameStore(st, f.st)
	return f.acc.read(doc)
}

// Set writes a field into the scope's evolving document.
func Set[D, F any](tx writer[D], f *Field[D, F], value F) {
	tx.applyWrite(f.st, f, func(doc D) D {
		return f.acc.write(doc, value)
	})
}

// Delete removes a flat field's key, or resets a nested field to its default.
func Delete[D, F any](tx writer[D], f *Field[D, F]) {
	tx.applyWrite(f.st, f, func(doc D) D {
		return f.acc.clear(doc)
	})
}

// Reset writes a field's default value.
func Reset[D, F any](tx writer[D], f *Field[D, F]) {
	Set(tx, f, f.def)
}

// Update sets a field to transform(current) evaluated against the scope's
// evolving document view.
func Update[D, F any](tx *EditTx[D], f *Field[D, F], transform func(F) F) {
	Set[D, F](tx, f, transform(Get[D, F](tx, f)))
}

// Read acquires one snapshot, runs fn against a scope frozen at that
// snapshot, and returns fn's error. A panic inside fn is converted into an
// error. No mutation is possible.
func Read[D any](ctx context.Context, st Store[D], fn func(tx *ReadTx[D]) error) error {
	readBatchesTotal.Inc()
	doc, err := st.Snapshot(ctx)
	if err != nil {
		return err
	}
	tx := &ReadTx[D]{st: st, doc: doc}
	defer tx.finish()
	return safelyCall(func() error { return fn(tx) })
}

// Write opens one transaction, runs fn against a write scope, and commits the
// resulting document. If fn returns an error or panics, the transaction is
// aborted and none of the scope's mutations are applied.
func Write[D any](ctx context.Context, st Store[D], fn func(tx *WriteTx[D]) error) error {
	writeBatchesTotal.Inc()
	var touched []fieldInvalidator
	err := st.Transact(ctx, func(doc D) (D, error) {
		tx := &WriteTx[D]{st: st, doc: doc}
		defer tx.finish()
		if err := safelyCall(func() error { return fn(tx) }); err != nil {
			return doc, err
		}
		touched = tx.touched
		return tx.doc, nil
	})
	if err != nil {
		return err
	}
	for _, f := range touched {
		f.invalidate()
	}
	return nil
}

// Edit opens one transaction, runs fn against a combined read/write scope
// seeded with the transaction's own snapshot, and commits the resulting
// document. Same all-or-nothing contract as Write.
func Edit[D any](ctx context.Context, st Store[D], fn func(tx *EditTx[D]) error) error {
	editBatchesTotal.Inc()
	var touched []fieldInvalidator
	err := st.Transact(ctx, func(doc D) (D, error) {
		tx := &EditTx[D]{WriteTx[D]{st: st, doc: doc}}
		defer tx.finish()
		if err := safelyCall(func() error { return fn(tx) }); err != nil {
			return doc, err
		}
		touched = tx.touched
		return tx.doc, nil
	})
	if err != nil {
		return err
	}
	for _, f := range touched {
		f.invalidate()
	}
	return nil
}

// Watch returns a stream of read scopes, one per committed document change,
// the first reflecting the current state. Granularity is the whole document:
// every commit emits, whether or not a given field changed. The channel
// closes when ctx is done.
func Watch[D any](ctx context.Context, st Store[D]) <-chan *ReadTx[D] {
	in := st.Changes(ctx)
	out := make(chan *ReadTx[D])
	go func() {
		defer close(out)
		for doc := range in {
			select {
			case out <- &ReadTx[D]{st: st, doc: doc}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// MustRead is Read with a background context, panicking on store faults.
func MustRead[D any](st Store[D], fn func(tx *ReadTx[D]) error) {
	ensure(Read(context.Background(), st, fn))
}

// MustWrite is Write with a background context, panicking on store faults.
func MustWrite[D any](st Store[D], fn func(tx *WriteTx[D]) error) {
	ensure(Write(context.Background(), st, fn))
}

// MustEdit is Edit with a background context, panicking on store faults.
func MustEdit[D any](st Store[D], fn func(tx *EditTx[D]) error) {
	ensure(Edit(context.Background(), st, fn))
}

type panicked struct {
	reason interface{}
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func (p panicked) Unwrap() error {
	if err, ok := p.reason.(error); ok {
		return err
	}
	return nil
}

func safelyCall(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked{p, string(debug.Stack())}
		}
	}()
	return fn()
}
