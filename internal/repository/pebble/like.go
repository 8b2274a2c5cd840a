package pebble

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/tduarte/shorts-server/internal/model"
)

// Like edges are stored under three keys so lookups by short, by liker and
// by short-owner are all single prefix scans. The keys for one edge are
// written and deleted through a batch, which is atomic within this one
// entity kind only.
const (
	likePrefix      = "like:"      // like:<shortId>:<userId>
	likeUserPrefix  = "likeUser:"  // likeUser:<userId>:<shortId>
	likeOwnerPrefix = "likeOwner:" // likeOwner:<ownerId>:<shortId>:<userId>
)

var _ model.LikeStore = (*likeStore)(nil)

type likeStore struct {
	db *pebble.DB
}

func likeKeys(l model.Like) [][]byte {
	return [][]byte{
		[]byte(likePrefix + l.ShortID + ":" + l.UserID),
		[]byte(likeUserPrefix + l.UserID + ":" + l.ShortID),
		[]byte(likeOwnerPrefix + l.OwnerID + ":" + l.ShortID + ":" + l.UserID),
	}
}

func (s *likeStore) Upsert(ctx context.Context, like model.Like) error {
	doc, err := json.Marshal(like)
	if err != nil {
		return fmt.Errorf("failed to encode like: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	for _, key := range likeKeys(like) {
		if err := batch.Set(key, doc, nil); err != nil {
			return fmt.Errorf("failed to stage like write: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to upsert like: %w", err)
	}
	return nil
}

func (s *likeStore) DeleteOne(ctx context.Context, like model.Like) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, key := range likeKeys(like) {
		if err := batch.Delete(key, nil); err != nil {
			return fmt.Errorf("failed to stage like delete: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (s *likeStore) ListByShort(ctx context.Context, shortID string) ([]model.Like, error) {
	return s.scan(likePrefix + shortID + ":")
}

func (s *likeStore) CountByShort(ctx context.Context, shortID string) (int64, error) {
	likes, err := s.ListByShort(ctx, shortID)
	if err != nil {
		return 0, err
	}
	return int64(len(likes)), nil
}

func (s *likeStore) ListByUser(ctx context.Context, userID string) ([]model.Like, error) {
	made, err := s.scan(likeUserPrefix + userID + ":")
	if err != nil {
		return nil, err
	}
	received, err := s.scan(likeOwnerPrefix + userID + ":")
	if err != nil {
		return nil, err
	}

	// A self-like shows up in both scans; keep one edge per (user, short).
	seen := make(map[string]struct{}, len(made)+len(received))
	edges := make([]model.Like, 0, len(made)+len(received))
	for _, l := range append(made, received...) {
		k := l.UserID + "\x00" + l.ShortID
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		edges = append(edges, l)
	}
	return edges, nil
}

func (s *likeStore) scan(prefix string) ([]model.Like, error) {
	iter, err := prefixIter(s.db, prefix)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var likes []model.Like
	for iter.First(); iter.Valid(); iter.Next() {
		var like model.Like
		if err := json.Unmarshal(iter.Value(), &like); err != nil {
			return nil, fmt.Errorf("failed to decode like: %w", err)
		}
		likes = append(likes, like)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan likes: %w", err)
	}
	return likes, nil
}
