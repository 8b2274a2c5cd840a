package postgres

import (
	"context"
	"fmt"

	"github.com/tduarte/shorts-server/internal/model"
)

var _ model.LikeStore = (*LikeRepository)(nil)

type LikeRepository struct {
	db querier
}

func NewLikeRepository(db querier) *LikeRepository {
	return &LikeRepository{
		db: db,
	}
}

func (r *LikeRepository) Upsert(ctx context.Context, like model.Like) error {
	// At most one edge per (user, short) pair; re-liking is a no-op.
	query := `INSERT INTO likes (user_id, short_id, owner_id)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_id, short_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, like.UserID, like.ShortID, like.OwnerID); err != nil {
		return fmt.Errorf("failed to upsert like: %w", err)
	}
	return nil
}

func (r *LikeRepository) DeleteOne(ctx context.Context, like model.Like) error {
	const query = `DELETE FROM likes WHERE user_id = $1 AND short_id = $2`
	if _, err := r.db.Exec(ctx, query, like.UserID, like.ShortID); err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (r *LikeRepository) ListByShort(ctx context.Context, shortID string) ([]model.Like, error) {
	query := `SELECT user_id, short_id, owner_id FROM likes WHERE short_id = $1 ORDER BY user_id`
	return r.list(ctx, query, shortID)
}

func (r *LikeRepository) CountByShort(ctx context.Context, shortID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM likes WHERE short_id = $1`
	if err := r.db.QueryRow(ctx, query, shortID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// ListByUser returns every like edge referencing the user: likes made by the
// user and likes received on the user's shorts (via the denormalized owner).
func (r *LikeRepository) ListByUser(ctx context.Context, userID string) ([]model.Like, error) {
	query := `SELECT user_id, short_id, owner_id FROM likes
			  WHERE user_id = $1 OR owner_id = $1`
	return r.list(ctx, query, userID)
}

func (r *LikeRepository) list(ctx context.Context, query string, args ...any) ([]model.Like, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	var likes []model.Like
	for rows.Next() {
		var like model.Like
		if err := rows.Scan(&like.UserID, &like.ShortID, &like.OwnerID); err != nil {
			return nil, err
		}
		likes = append(likes, like)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return likes, nil
}
