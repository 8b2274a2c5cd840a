package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tduarte/shorts-server/internal/cache"
	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/mocks"
	"github.com/tduarte/shorts-server/internal/model"
	"github.com/tduarte/shorts-server/internal/repository/pebble"
	"github.com/tduarte/shorts-server/internal/service"
	"github.com/tduarte/shorts-server/internal/storage/fs"
	"github.com/tduarte/shorts-server/internal/token"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	backend, err := pebble.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	storage, err := fs.New(t.TempDir())
	require.NoError(t, err)

	log := logger.New(0)
	aside := cache.NewAside(mocks.NewMemCache(), time.Minute, log)
	codec := token.NewCodec("router-secret")
	session := token.NewJWT("router-jwt-secret")
	cascade := service.NewCascade(backend, aside, storage, log)

	users := service.NewUsers(backend, aside, session, cascade, log)
	shorts := service.NewShorts(backend, aside, cascade, codec, "http://localhost:8080", log)
	blobs := service.NewBlobs(storage, codec, log)

	return NewRouter(NewUsersHandler(users, session), NewShortsHandler(shorts), NewBlobsHandler(blobs), log)
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[V any](t *testing.T, rec *httptest.ResponseRecorder) V {
	t.Helper()
	var v V
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRouter_UserLifecycle(t *testing.T) {
	h := newTestRouter(t)

	alice := model.User{ID: "alice", Password: "pa", Email: "alice@example.com", DisplayName: "Alice"}

	rec := doJSON(t, h, http.MethodPost, "/users", alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.User](t, rec)
	assert.Empty(t, created.Password)

	rec = doJSON(t, h, http.MethodPost, "/users", alice)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/users/alice?pwd=pa", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/users/alice?pwd=wrong", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/users/ghost?pwd=pa", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/users/alice?pwd=pa", model.User{DisplayName: "Alice B."})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.User](t, rec)
	assert.Equal(t, "Alice B.", updated.DisplayName)

	rec = doJSON(t, h, http.MethodGet, "/users?query=ali", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]model.User](t, rec)
	require.Len(t, found, 1)
	assert.Empty(t, found[0].Password)

	rec = doJSON(t, h, http.MethodPost, "/users/alice/login?pwd=pa", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["token"])

	rec = doJSON(t, h, http.MethodDelete, "/users/alice?pwd=pa", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/users/alice?pwd=pa", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_SessionProfile(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/users", model.User{ID: "alice", Password: "pa", Email: "alice@example.com", DisplayName: "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/users/alice/login?pwd=pa", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessionToken := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, sessionToken)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var profile model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.ID)
	assert.Empty(t, profile.Password)

	// No header and a forged token are both rejected.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_BlobsDeleteAll(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/users", model.User{ID: "alice", Password: "pa", Email: "alice@example.com", DisplayName: "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/shorts/alice?pwd=pa", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	short := decode[model.Short](t, rec)

	blobPath := strings.TrimPrefix(short.BlobURL, "http://localhost:8080")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, blobPath, bytes.NewReader([]byte("media bytes"))))
	require.Equal(t, http.StatusNoContent, w.Code)

	// A per-short token does not authorize bulk deletion.
	shortToken := strings.SplitN(blobPath, "?token=", 2)[1]
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/blobs/alice/blobs?token="+shortToken, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	userToken := token.NewCodec("router-secret").Issue("alice")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/blobs/alice/blobs?token="+userToken, nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, blobPath, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ShortsAndBlobs(t *testing.T) {
	h := newTestRouter(t)

	for _, u := range []model.User{
		{ID: "alice", Password: "pa", Email: "a@example.com", DisplayName: "Alice"},
		{ID: "bob", Password: "pb", Email: "b@example.com", DisplayName: "Bob"},
	} {
		rec := doJSON(t, h, http.MethodPost, "/users", u)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/shorts/alice?pwd=pa", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	short := decode[model.Short](t, rec)
	require.True(t, strings.HasPrefix(short.ID, "alice+"))

	// The blob URL returned at creation works as-is against the API.
	blobPath := strings.TrimPrefix(short.BlobURL, "http://localhost:8080")
	req := httptest.NewRequest(http.MethodPost, blobPath, bytes.NewReader([]byte("media bytes")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, blobPath, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "media bytes", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/blobs/"+short.ID+"?token=bogus", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	rec = doJSON(t, h, http.MethodPut, "/shorts/"+short.ID+"/bob/likes?pwd=pb", true)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/shorts/"+short.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[model.Short](t, rec)
	assert.Equal(t, int64(1), view.TotalLikes)

	rec = doJSON(t, h, http.MethodPut, "/shorts/bob/alice/followers?pwd=pb", true)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/shorts/bob/feed?pwd=pb", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[[]model.Short](t, rec)
	require.Len(t, feed, 1)
	assert.Equal(t, short.ID, feed[0].ID)

	rec = doJSON(t, h, http.MethodDelete, "/shorts/"+short.ID+"?pwd=pa", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/shorts/"+short.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
