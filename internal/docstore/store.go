// Package docstore is the shared document store the game is synchronized
// through. Every client mutates a game by running a transaction against its
// key; the store executes the read-check-write atomically per key, and
// subscriptions deliver the new document to every watcher after a commit.
package docstore

import (
	"context"

	"cooptrick/internal/domain"
)

// TxnFunc receives the current document (exists=false when the key is
// unseen) and returns the document to write. Return write=false to skip the
// write and commit nothing; return an error to abort.
type TxnFunc func(cur domain.Game, exists bool) (next domain.Game, write bool, err error)

// Unsubscribe stops a subscription. In-flight writes are unaffected.
type Unsubscribe func()

type Store interface {
	// Get reads the current document for id.
	Get(ctx context.Context, id string) (domain.Game, bool, error)

	// Subscribe delivers every committed document for id, starting with
	// the current one when it exists. fn is called from a single goroutine
	// per subscription.
	Subscribe(ctx context.Context, id string, fn func(domain.Game)) (Unsubscribe, error)

	// Transaction runs fn atomically against id: no other writer can
	// interleave between the read and the write for the same key.
	Transaction(ctx context.Context, id string, fn TxnFunc) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing connections.
	Close()
}
