package model

import "context"

// FollowStore defines persistence operations for follow edges.
// Same idempotency contract as LikeStore.
type FollowStore interface {
	Upsert(ctx context.Context, f Following) error
	DeleteOne(ctx context.Context, f Following) error
	Followers(ctx context.Context, userID string) ([]string, error)
	Followees(ctx context.Context, userID string) ([]string, error)
	ListByUser(ctx context.Context, userID string) ([]Following, error)
}

// Following is a (follower, followee) edge.
type Following struct {
	Follower string `json:"follower"`
	Followee string `json:"followee"`
}
