package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/tduarte/shorts-server/internal/model"
)

const userPrefix = "user:"

var _ model.UserStore = (*userStore)(nil)

type userStore struct {
	db *pebble.DB

	// Serializes Insert's existence check against its write. Pebble has no
	// unique-key constraint, so without this two concurrent inserts of the
	// same id could both pass the check.
	insertMu sync.Mutex
}

func userKey(id string) []byte { return []byte(userPrefix + id) }

func (s *userStore) Insert(ctx context.Context, user model.User) (model.User, error) {
	key := userKey(user.ID)

	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	_, closer, err := s.db.Get(key)
	if err == nil {
		closer.Close()
		return model.User{}, model.ErrConflict
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to check user existence: %w", err)
	}

	doc, err := json.Marshal(user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.db.Set(key, doc, pebble.Sync); err != nil {
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *userStore) GetOne(ctx context.Context, id string) (model.User, error) {
	raw, closer, err := s.db.Get(userKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	defer closer.Close()

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return model.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

func (s *userStore) UpdateOne(ctx context.Context, user model.User) (model.User, error) {
	if _, err := s.GetOne(ctx, user.ID); err != nil {
		return model.User{}, err
	}

	doc, err := json.Marshal(user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.db.Set(userKey(user.ID), doc, pebble.Sync); err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userStore) DeleteOne(ctx context.Context, id string) error {
	// Deleting an absent document is a no-op in pebble, which is exactly
	// the idempotency the cascade needs.
	if err := s.db.Delete(userKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *userStore) Search(ctx context.Context, pattern string) ([]model.User, error) {
	iter, err := prefixIter(s.db, userPrefix)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	needle := strings.ToUpper(pattern)
	var users []model.User
	for iter.First(); iter.Valid(); iter.Next() {
		var user model.User
		if err := json.Unmarshal(iter.Value(), &user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		if strings.Contains(strings.ToUpper(user.ID), needle) {
			users = append(users, user)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}
