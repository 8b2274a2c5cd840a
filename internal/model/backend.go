package model

import "context"

// Backend is the primary store: one typed store per entity kind, chosen at
// construction time.
//
// Atomic runs fn against a view of the backend. The relational variant
// executes fn inside a single ACID transaction; the document variant runs it
// as independent best-effort operations with no atomicity across entity
// kinds. Callers that need all-or-nothing semantics only get them under the
// relational variant and must keep every step idempotent otherwise.
type Backend interface {
	Users() UserStore
	Shorts() ShortStore
	Likes() LikeStore
	Follows() FollowStore
	Atomic(ctx context.Context, fn func(b Backend) error) error
}
