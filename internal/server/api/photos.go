package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/airframe/internal/store"
)

// PhotoHandler serves the gallery.
type PhotoHandler struct {
	store *store.Store
	log   *slog.Logger
}

// NewPhotoHandler creates a PhotoHandler backed by s.
func NewPhotoHandler(s *store.Store, log *slog.Logger) *PhotoHandler {
	return &PhotoHandler{store: s, log: log}
}

type listPhotosResponse struct {
	Photos []*store.Photo `json:"photos"`
}

// List handles GET /api/photos.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.store.Photos().List()
	if err != nil {
		h.log.Error("list photos failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list photos")
		return
	}
	if photos == nil {
		photos = []*store.Photo{}
	}
	writeJSON(w, http.StatusOK, listPhotosResponse{Photos: photos})
}

// Get handles GET /api/photos/{id} and returns the media itself.
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if p.Kind == store.MediaVideo {
		w.Header().Set("Content-Type", p.MIME)
		http.ServeFile(w, r, p.Path)
		return
	}

	w.Header().Set("Content-Type", p.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(p.Data)
}

// Delete handles DELETE /api/photos/{id}.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.store.Photos().Delete(p.ID); err != nil {
		h.log.Error("delete photo failed", slog.String("id", p.ID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to delete photo")
		return
	}
	if p.Path != "" {
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.log.Warn("remove recording failed", slog.String("path", p.Path), slog.String("error", err.Error()))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotoHandler) lookup(w http.ResponseWriter, r *http.Request) (*store.Photo, bool) {
	id := chi.URLParam(r, "id")
	p, err := h.store.Photos().Get(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "photo not found")
		return nil, false
	}
	if err != nil {
		h.log.Error("get photo failed", slog.String("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to get photo")
		return nil, false
	}
	return p, true
}
