package prefs

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/queue"
)

// Broadcaster fans committed documents out to change subscribers. Store
// adapters embed one to implement Changes: each subscriber gets an unbounded
// queue, so a slow consumer delays nobody and still sees every commit exactly
// once, in order.
//
// Publish calls must be serialized by the adapter (they naturally are, since
// the transact path is serialized) and ordered against Subscribe so that the
// current-state emission precedes any later commit.
type Broadcaster[D any] struct {
	mu   sync.Mutex
	subs map[*queue.ConcurrentQueue]struct{}
}

// Subscribe registers a new subscriber whose first emission is current. The
// returned channel closes when ctx is done.
func (b *Broadcaster[D]) Subscribe(ctx context.Context, current D) <-chan D {
	q := queue.NewConcurrentQueue(16)
	q.Start()

	// Pushing the current document under the same lock keeps it ordered
	// before any concurrent Publish.
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[*queue.ConcurrentQueue]struct{})
	}
	b.subs[q] = struct{}{}
	q.ChanIn() <- current
	b.mu.Unlock()

	out := make(chan D)
	go func() {
		defer close(out)
		defer func() {
			b.mu.Lock()
			delete(b.subs, q)
			b.mu.Unlock()
			q.Stop()
		}()
		for {
			select {
			case v, ok := <-q.ChanOut():
				if !ok {
					return
				}
				select {
				case out <- v.(D):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Publish delivers a committed document to every subscriber.
func (b *Broadcaster[D]) Publish(doc D) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for q := range b.subs {
		q.ChanIn() <- doc
	}
}
