// Package mocks provides test doubles for the model interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tduarte/shorts-server/internal/model"
)

type UserStore struct{ mock.Mock }

func (m *UserStore) Insert(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetOne(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpdateOne(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) DeleteOne(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserStore) Search(ctx context.Context, pattern string) ([]model.User, error) {
	args := m.Called(ctx, pattern)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

type ShortStore struct{ mock.Mock }

func (m *ShortStore) Insert(ctx context.Context, short model.Short) (model.Short, error) {
	args := m.Called(ctx, short)
	if fn, ok := args.Get(0).(func(context.Context, model.Short) (model.Short, error)); ok {
		return fn(ctx, short)
	}
	return args.Get(0).(model.Short), args.Error(1)
}

func (m *ShortStore) GetOne(ctx context.Context, id string) (model.Short, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Short), args.Error(1)
}

func (m *ShortStore) DeleteOne(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ShortStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Short, error) {
	args := m.Called(ctx, ownerID)
	shorts, _ := args.Get(0).([]model.Short)
	return shorts, args.Error(1)
}

type LikeStore struct{ mock.Mock }

func (m *LikeStore) Upsert(ctx context.Context, like model.Like) error {
	return m.Called(ctx, like).Error(0)
}

func (m *LikeStore) DeleteOne(ctx context.Context, like model.Like) error {
	return m.Called(ctx, like).Error(0)
}

func (m *LikeStore) ListByShort(ctx context.Context, shortID string) ([]model.Like, error) {
	args := m.Called(ctx, shortID)
	likes, _ := args.Get(0).([]model.Like)
	return likes, args.Error(1)
}

func (m *LikeStore) CountByShort(ctx context.Context, shortID string) (int64, error) {
	args := m.Called(ctx, shortID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LikeStore) ListByUser(ctx context.Context, userID string) ([]model.Like, error) {
	args := m.Called(ctx, userID)
	likes, _ := args.Get(0).([]model.Like)
	return likes, args.Error(1)
}

type FollowStore struct{ mock.Mock }

func (m *FollowStore) Upsert(ctx context.Context, f model.Following) error {
	return m.Called(ctx, f).Error(0)
}

func (m *FollowStore) DeleteOne(ctx context.Context, f model.Following) error {
	return m.Called(ctx, f).Error(0)
}

func (m *FollowStore) Followers(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *FollowStore) Followees(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *FollowStore) ListByUser(ctx context.Context, userID string) ([]model.Following, error) {
	args := m.Called(ctx, userID)
	edges, _ := args.Get(0).([]model.Following)
	return edges, args.Error(1)
}

// Backend bundles the store mocks behind the model.Backend interface.
// Atomic runs the callback against the same stores, like the document
// variant does.
type Backend struct {
	UserStore   *UserStore
	ShortStore  *ShortStore
	LikeStore   *LikeStore
	FollowStore *FollowStore
}

func NewBackend() *Backend {
	return &Backend{
		UserStore:   &UserStore{},
		ShortStore:  &ShortStore{},
		LikeStore:   &LikeStore{},
		FollowStore: &FollowStore{},
	}
}

func (b *Backend) Users() model.UserStore     { return b.UserStore }
func (b *Backend) Shorts() model.ShortStore   { return b.ShortStore }
func (b *Backend) Likes() model.LikeStore     { return b.LikeStore }
func (b *Backend) Follows() model.FollowStore { return b.FollowStore }

func (b *Backend) Atomic(ctx context.Context, fn func(model.Backend) error) error {
	return fn(b)
}

func (b *Backend) AssertExpectations(t mock.TestingT) {
	b.UserStore.AssertExpectations(t)
	b.ShortStore.AssertExpectations(t)
	b.LikeStore.AssertExpectations(t)
	b.FollowStore.AssertExpectations(t)
}
