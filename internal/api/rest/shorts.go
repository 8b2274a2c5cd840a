package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tduarte/shorts-server/internal/model"
	"github.com/tduarte/shorts-server/internal/service"
)

// ShortsHandler exposes shorts and their social edges over HTTP.
type ShortsHandler struct {
	shorts *service.Shorts
}

func NewShortsHandler(shorts *service.Shorts) *ShortsHandler {
	return &ShortsHandler{shorts: shorts}
}

func (h *ShortsHandler) CreateShort(w http.ResponseWriter, r *http.Request) {
	short, err := h.shorts.CreateShort(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, short)
}

func (h *ShortsHandler) GetShort(w http.ResponseWriter, r *http.Request) {
	short, err := h.shorts.GetShort(r.Context(), r.PathValue("shortId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, short)
}

func (h *ShortsHandler) DeleteShort(w http.ResponseWriter, r *http.Request) {
	if err := h.shorts.DeleteShort(r.Context(), r.PathValue("shortId"), r.URL.Query().Get("pwd")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShortsHandler) GetShorts(w http.ResponseWriter, r *http.Request) {
	ids, err := h.shorts.GetShorts(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// Like toggles a like edge: the body is a JSON boolean, true to like and
// false to unlike.
func (h *ShortsHandler) Like(w http.ResponseWriter, r *http.Request) {
	var liked bool
	if err := json.NewDecoder(r.Body).Decode(&liked); err != nil {
		writeError(w, fmt.Errorf("%w: invalid body", model.ErrBadRequest))
		return
	}

	shortID, userID := r.PathValue("shortId"), r.PathValue("userId")
	pwd := r.URL.Query().Get("pwd")

	var err error
	if liked {
		err = h.shorts.Like(r.Context(), shortID, userID, pwd)
	} else {
		err = h.shorts.Unlike(r.Context(), shortID, userID, pwd)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShortsHandler) Likes(w http.ResponseWriter, r *http.Request) {
	ids, err := h.shorts.Likes(r.Context(), r.PathValue("shortId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// Follow toggles a follow edge, same body convention as Like.
func (h *ShortsHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var following bool
	if err := json.NewDecoder(r.Body).Decode(&following); err != nil {
		writeError(w, fmt.Errorf("%w: invalid body", model.ErrBadRequest))
		return
	}

	follower, followee := r.PathValue("userId1"), r.PathValue("userId2")
	pwd := r.URL.Query().Get("pwd")

	var err error
	if following {
		err = h.shorts.Follow(r.Context(), follower, followee, pwd)
	} else {
		err = h.shorts.Unfollow(r.Context(), follower, followee, pwd)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShortsHandler) Followers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.shorts.Followers(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *ShortsHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.shorts.GetFeed(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
