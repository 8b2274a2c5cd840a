package rest

import (
	"io"
	"net/http"

	"github.com/tduarte/shorts-server/internal/service"
)

// BlobsHandler serves short media, gated by the capability token carried in
// the query string.
type BlobsHandler struct {
	blobs *service.Blobs
}

func NewBlobsHandler(blobs *service.Blobs) *BlobsHandler {
	return &BlobsHandler{blobs: blobs}
}

func (h *BlobsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	err := h.blobs.Upload(r.Context(), r.PathValue("shortId"), r.URL.Query().Get("token"), r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlobsHandler) Download(w http.ResponseWriter, r *http.Request) {
	reader, err := h.blobs.Download(r.Context(), r.PathValue("shortId"), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, reader)
}

func (h *BlobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.blobs.Delete(r.Context(), r.PathValue("shortId"), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll removes every blob of a user; the token must be issued for the
// user id itself, not for any single blob.
func (h *BlobsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	err := h.blobs.DeleteAll(r.Context(), r.PathValue("userId"), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
