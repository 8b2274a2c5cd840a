// Package pebble implements the document-store backend variant. Each entity
// kind lives in its own keyspace of JSON documents; edge kinds keep secondary
// index keys so lookups by either side are single prefix scans. There are no
// transactions across entity kinds: Atomic applies operations independently
// and callers must rely on idempotent steps, not rollback.
package pebble

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/tduarte/shorts-server/internal/model"
)

var _ model.Backend = (*Backend)(nil)

// Backend is the document-store primary-store variant.
type Backend struct {
	db      *pebble.DB
	users   *userStore
	shorts  *shortStore
	likes   *likeStore
	follows *followStore
}

// Open opens (or creates) the document store at path.
func Open(path string) (*Backend, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db: %w", err)
	}

	b := &Backend{db: db}
	b.users = &userStore{db: db}
	b.shorts = &shortStore{db: db}
	b.likes = &likeStore{db: db}
	b.follows = &followStore{db: db}
	return b, nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Users() model.UserStore     { return b.users }
func (b *Backend) Shorts() model.ShortStore   { return b.shorts }
func (b *Backend) Likes() model.LikeStore     { return b.likes }
func (b *Backend) Follows() model.FollowStore { return b.follows }

// Atomic runs fn without atomicity across entity kinds: each operation
// applies independently and already-applied operations stay applied when fn
// fails. This is the document-store contract; callers needing all-or-nothing
// semantics must use the relational variant.
func (b *Backend) Atomic(ctx context.Context, fn func(model.Backend) error) error {
	return fn(b)
}

// keyUpperBound returns the smallest key greater than every key with the
// given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func prefixIter(db *pebble.DB, prefix string) (*pebble.Iterator, error) {
	p := []byte(prefix)
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: p,
		UpperBound: keyUpperBound(p),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	return iter, nil
}
