package postgres

import (
	"context"
	"fmt"

	"github.com/tduarte/shorts-server/internal/model"
)

var _ model.ShortStore = (*ShortRepository)(nil)

type ShortRepository struct {
	db querier
}

func NewShortRepository(db querier) *ShortRepository {
	return &ShortRepository{
		db: db,
	}
}

func (r *ShortRepository) Insert(ctx context.Context, short model.Short) (model.Short, error) {
	query := `INSERT INTO shorts (short_id, owner_id, blob_url, ts)
			  VALUES ($1, $2, $3, $4)
			  RETURNING short_id, owner_id, blob_url, ts`

	var saved model.Short
	err := r.db.QueryRow(ctx, query,
		short.ID, short.OwnerID, short.BlobURL, short.Timestamp,
	).Scan(&saved.ID, &saved.OwnerID, &saved.BlobURL, &saved.Timestamp)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return model.Short{}, mapped
		}
		return model.Short{}, fmt.Errorf("failed to insert short: %w", err)
	}

	return saved, nil
}

func (r *ShortRepository) GetOne(ctx context.Context, id string) (model.Short, error) {
	var short model.Short
	query := `SELECT short_id, owner_id, blob_url, ts FROM shorts WHERE short_id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&short.ID, &short.OwnerID, &short.BlobURL, &short.Timestamp,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return model.Short{}, mapped
		}
		return model.Short{}, fmt.Errorf("failed to get short by id: %w", err)
	}

	return short, nil
}

func (r *ShortRepository) DeleteOne(ctx context.Context, id string) error {
	const query = `DELETE FROM shorts WHERE short_id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete short: %w", err)
	}
	return nil
}

func (r *ShortRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Short, error) {
	query := `SELECT short_id, owner_id, blob_url, ts FROM shorts
			  WHERE owner_id = $1
			  ORDER BY ts DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shorts by owner: %w", err)
	}
	defer rows.Close()

	var shorts []model.Short
	for rows.Next() {
		var short model.Short
		if err := rows.Scan(&short.ID, &short.OwnerID, &short.BlobURL, &short.Timestamp); err != nil {
			return nil, err
		}
		shorts = append(shorts, short)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shorts, nil
}
