package model

import "context"

// LikeStore defines persistence operations for like edges.
// Upsert and DeleteOne are idempotent: at most one edge exists per
// (user, short) pair and removing an absent edge is not an error.
type LikeStore interface {
	Upsert(ctx context.Context, like Like) error
	DeleteOne(ctx context.Context, like Like) error
	ListByShort(ctx context.Context, shortID string) ([]Like, error)
	CountByShort(ctx context.Context, shortID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]Like, error)
}

// Like is a (user, short) edge. OwnerID denormalizes the short's owner so
// per-user cleanup can filter without a join.
type Like struct {
	UserID  string `json:"userId"`
	ShortID string `json:"shortId"`
	OwnerID string `json:"ownerId"`
}
