package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/tduarte/shorts-server/internal/model"
)

const shortPrefix = "short:"

var _ model.ShortStore = (*shortStore)(nil)

type shortStore struct {
	db *pebble.DB

	// Same discipline as userStore: the existence check and the write must
	// not interleave across concurrent inserts of one id.
	insertMu sync.Mutex
}

func shortKey(id string) []byte { return []byte(shortPrefix + id) }

func (s *shortStore) Insert(ctx context.Context, short model.Short) (model.Short, error) {
	key := shortKey(short.ID)

	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	_, closer, err := s.db.Get(key)
	if err == nil {
		closer.Close()
		return model.Short{}, model.ErrConflict
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return model.Short{}, fmt.Errorf("failed to check short existence: %w", err)
	}

	doc, err := json.Marshal(short)
	if err != nil {
		return model.Short{}, fmt.Errorf("failed to encode short: %w", err)
	}
	if err := s.db.Set(key, doc, pebble.Sync); err != nil {
		return model.Short{}, fmt.Errorf("failed to insert short: %w", err)
	}
	return short, nil
}

func (s *shortStore) GetOne(ctx context.Context, id string) (model.Short, error) {
	raw, closer, err := s.db.Get(shortKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return model.Short{}, model.ErrNotFound
		}
		return model.Short{}, fmt.Errorf("failed to get short: %w", err)
	}
	defer closer.Close()

	var short model.Short
	if err := json.Unmarshal(raw, &short); err != nil {
		return model.Short{}, fmt.Errorf("failed to decode short: %w", err)
	}
	return short, nil
}

func (s *shortStore) DeleteOne(ctx context.Context, id string) error {
	if err := s.db.Delete(shortKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete short: %w", err)
	}
	return nil
}

// ListByOwner scans the owner's id range directly: short ids are
// "<ownerId>+<random>", so every short of a user shares one key prefix.
func (s *shortStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Short, error) {
	iter, err := prefixIter(s.db, shortPrefix+ownerID+"+")
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var shorts []model.Short
	for iter.First(); iter.Valid(); iter.Next() {
		var short model.Short
		if err := json.Unmarshal(iter.Value(), &short); err != nil {
			return nil, fmt.Errorf("failed to decode short: %w", err)
		}
		shorts = append(shorts, short)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan shorts: %w", err)
	}

	sort.Slice(shorts, func(i, j int) bool { return shorts[i].Timestamp > shorts[j].Timestamp })
	return shorts, nil
}
