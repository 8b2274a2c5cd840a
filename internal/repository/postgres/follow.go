package postgres

import (
	"context"
	"fmt"

	"github.com/tduarte/shorts-server/internal/model"
)

var _ model.FollowStore = (*FollowRepository)(nil)

type FollowRepository struct {
	db querier
}

func NewFollowRepository(db querier) *FollowRepository {
	return &FollowRepository{
		db: db,
	}
}

func (r *FollowRepository) Upsert(ctx context.Context, f model.Following) error {
	query := `INSERT INTO following (follower, followee)
			  VALUES ($1, $2)
			  ON CONFLICT (follower, followee) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, f.Follower, f.Followee); err != nil {
		return fmt.Errorf("failed to upsert follow: %w", err)
	}
	return nil
}

func (r *FollowRepository) DeleteOne(ctx context.Context, f model.Following) error {
	const query = `DELETE FROM following WHERE follower = $1 AND followee = $2`
	if _, err := r.db.Exec(ctx, query, f.Follower, f.Followee); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

func (r *FollowRepository) Followers(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT follower FROM following WHERE followee = $1 ORDER BY follower`
	return r.listIDs(ctx, query, userID)
}

func (r *FollowRepository) Followees(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT followee FROM following WHERE follower = $1 ORDER BY followee`
	return r.listIDs(ctx, query, userID)
}

// ListByUser returns every follow edge referencing the user on either side.
func (r *FollowRepository) ListByUser(ctx context.Context, userID string) ([]model.Following, error) {
	query := `SELECT follower, followee FROM following
			  WHERE follower = $1 OR followee = $1`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	var edges []model.Following
	for rows.Next() {
		var f model.Following
		if err := rows.Scan(&f.Follower, &f.Followee); err != nil {
			return nil, err
		}
		edges = append(edges, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return edges, nil
}

func (r *FollowRepository) listIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow edges: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
