package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tduarte/shorts-server/internal/cache"
	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/mocks"
	"github.com/tduarte/shorts-server/internal/model"
)

type usersFixture struct {
	backend *mocks.Backend
	storage *mocks.BlobStorage
	session *mocks.SessionManager
	cache   *mocks.MemCache
	users   *Users
}

func newUsersFixture() *usersFixture {
	backend := mocks.NewBackend()
	storage := &mocks.BlobStorage{}
	session := &mocks.SessionManager{}
	mem := mocks.NewMemCache()
	log := logger.New(0)
	aside := cache.NewAside(mem, time.Minute, log)
	cascade := NewCascade(backend, aside, storage, log)

	return &usersFixture{
		backend: backend,
		storage: storage,
		session: session,
		cache:   mem,
		users:   NewUsers(backend, aside, session, cascade, log),
	}
}

func TestUsers_CreateUser_InvalidID(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	for _, id := range []string{"", "al+ice", "al:ice", "al/ice"} {
		_, err := f.users.CreateUser(ctx, model.User{ID: id, Password: "p", Email: "e", DisplayName: "d"})
		assert.ErrorIs(t, err, model.ErrBadRequest, "id %q", id)
	}
	f.backend.UserStore.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestUsers_CreateUser_MissingFields(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	_, err := f.users.CreateUser(ctx, model.User{ID: "alice", Password: "p"})
	assert.ErrorIs(t, err, model.ErrBadRequest)
}

func TestUsers_CreateUser_Success(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	u := model.User{ID: "alice", Password: "p", Email: "a@b.c", DisplayName: "Alice"}
	f.backend.UserStore.On("Insert", mock.Anything, u).Return(u, nil)

	created, err := f.users.CreateUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u, created)
	assert.True(t, f.cache.Contains(cache.UserKey("alice")))
}

func TestUsers_CreateUser_Conflict(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	u := model.User{ID: "alice", Password: "p", Email: "a@b.c", DisplayName: "Alice"}
	f.backend.UserStore.On("Insert", mock.Anything, u).Return(model.User{}, model.ErrConflict)

	_, err := f.users.CreateUser(ctx, u)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestUsers_GetUser(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	u := model.User{ID: "alice", Password: "p"}
	f.backend.UserStore.On("GetOne", mock.Anything, "alice").Return(u, nil).Once()
	f.backend.UserStore.On("GetOne", mock.Anything, "nobody").Return(model.User{}, model.ErrNotFound)

	got, err := f.users.GetUser(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	// Second read is served from the cache: GetOne is mocked Once.
	_, err = f.users.GetUser(ctx, "alice", "p")
	require.NoError(t, err)

	_, err = f.users.GetUser(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.users.GetUser(ctx, "nobody", "p")
	assert.ErrorIs(t, err, model.ErrNotFound)

	f.backend.UserStore.AssertExpectations(t)
}

func TestUsers_UpdateUser_RefreshesCache(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	u := model.User{ID: "alice", Password: "p", DisplayName: "Alice"}
	updated := model.User{ID: "alice", Password: "p", DisplayName: "Alice B."}
	f.backend.UserStore.On("GetOne", mock.Anything, "alice").Return(u, nil).Once()
	f.backend.UserStore.On("UpdateOne", mock.Anything, updated).Return(updated, nil)

	got, err := f.users.UpdateUser(ctx, "alice", "p", model.User{DisplayName: "Alice B."})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.DisplayName)

	// The overwritten cache entry serves the next read.
	got, err = f.users.GetUser(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.DisplayName)
}

func TestUsers_SearchUsers_StripsPasswords(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	f.backend.UserStore.On("Search", mock.Anything, "ali").Return([]model.User{
		{ID: "alice", Password: "secret"},
		{ID: "alicia", Password: "secret"},
	}, nil)

	users, err := f.users.SearchUsers(ctx, "ali")
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
}

func TestUsers_Login(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	f.backend.UserStore.On("GetOne", mock.Anything, "alice").Return(model.User{ID: "alice", Password: "p"}, nil)
	f.session.On("GenerateAccessToken", "alice").Return("jwt-token", nil)

	token, err := f.users.Login(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)

	_, err = f.users.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestUsers_DeleteUser_CascadesEmptyAccount(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	u := model.User{ID: "alice", Password: "p"}
	f.backend.UserStore.On("GetOne", mock.Anything, "alice").Return(u, nil)
	f.backend.ShortStore.On("ListByOwner", mock.Anything, "alice").Return(nil, nil)
	f.backend.LikeStore.On("ListByUser", mock.Anything, "alice").Return(nil, nil)
	f.backend.FollowStore.On("ListByUser", mock.Anything, "alice").Return(nil, nil)
	f.storage.On("DeleteAll", mock.Anything, "alice/").Return(nil)
	f.backend.UserStore.On("DeleteOne", mock.Anything, "alice").Return(nil)

	deleted, err := f.users.DeleteUser(ctx, "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, u, deleted)
	assert.False(t, f.cache.Contains(cache.UserKey("alice")))

	f.backend.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestUsers_DeleteUser_WrongPasswordHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture()

	f.backend.UserStore.On("GetOne", mock.Anything, "alice").Return(model.User{ID: "alice", Password: "p"}, nil)

	_, err := f.users.DeleteUser(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, model.ErrForbidden)

	f.backend.UserStore.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "DeleteAll", mock.Anything, mock.Anything)
}
