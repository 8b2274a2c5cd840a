package pebble

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/tduarte/shorts-server/internal/model"
)

const (
	followPrefix   = "follow:"   // follow:<follower>:<followee>
	followeePrefix = "followee:" // followee:<followee>:<follower>
)

var _ model.FollowStore = (*followStore)(nil)

type followStore struct {
	db *pebble.DB
}

func followKeys(f model.Following) [][]byte {
	return [][]byte{
		[]byte(followPrefix + f.Follower + ":" + f.Followee),
		[]byte(followeePrefix + f.Followee + ":" + f.Follower),
	}
}

func (s *followStore) Upsert(ctx context.Context, f model.Following) error {
	doc, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode follow: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	for _, key := range followKeys(f) {
		if err := batch.Set(key, doc, nil); err != nil {
			return fmt.Errorf("failed to stage follow write: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to upsert follow: %w", err)
	}
	return nil
}

func (s *followStore) DeleteOne(ctx context.Context, f model.Following) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, key := range followKeys(f) {
		if err := batch.Delete(key, nil); err != nil {
			return fmt.Errorf("failed to stage follow delete: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

func (s *followStore) Followers(ctx context.Context, userID string) ([]string, error) {
	edges, err := s.scan(followeePrefix + userID + ":")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.Follower)
	}
	return ids, nil
}

func (s *followStore) Followees(ctx context.Context, userID string) ([]string, error) {
	edges, err := s.scan(followPrefix + userID + ":")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.Followee)
	}
	return ids, nil
}

func (s *followStore) ListByUser(ctx context.Context, userID string) ([]model.Following, error) {
	outgoing, err := s.scan(followPrefix + userID + ":")
	if err != nil {
		return nil, err
	}
	incoming, err := s.scan(followeePrefix + userID + ":")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(outgoing)+len(incoming))
	edges := make([]model.Following, 0, len(outgoing)+len(incoming))
	for _, f := range append(outgoing, incoming...) {
		k := f.Follower + "\x00" + f.Followee
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		edges = append(edges, f)
	}
	return edges, nil
}

func (s *followStore) scan(prefix string) ([]model.Following, error) {
	iter, err := prefixIter(s.db, prefix)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var edges []model.Following
	for iter.First(); iter.Valid(); iter.Next() {
		var f model.Following
		if err := json.Unmarshal(iter.Value(), &f); err != nil {
			return nil, fmt.Errorf("failed to decode follow: %w", err)
		}
		edges = append(edges, f)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan follows: %w", err)
	}
	return edges, nil
}
