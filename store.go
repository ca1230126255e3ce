package prefs

import "context"

// Store is the transactional document store a field layer sits on top of.
// The document type D is the store's unit of atomic mutation; implementations
// must treat D values as immutable once handed out.
//
// Reference implementations live in the memstore and boltstore subpackages.
type Store[D any] interface {
	// Snapshot returns a cheap, consistent read of the whole document.
	Snapshot(ctx context.Context) (D, error)

	// Changes returns a stream that emits the current document immediately,
	// then a new document once per committed transaction, until ctx is done.
	// Every observer sees each commit exactly once, in commit order.
	Changes(ctx context.Context) <-chan D

	// Transact supplies body the current document and atomically commits
	// whatever document it returns. Concurrent calls are serialized. If body
	// returns an error, nothing is committed and the error is returned as is.
	Transact(ctx context.Context, body func(D) (D, error)) error
}
