package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ayusman/airframe/internal/store"
)

// ActionHandler serves the action log.
type ActionHandler struct {
	store *store.Store
	log   *slog.Logger
}

// NewActionHandler creates an ActionHandler backed by s.
func NewActionHandler(s *store.Store, log *slog.Logger) *ActionHandler {
	return &ActionHandler{store: s, log: log}
}

type listActionsResponse struct {
	Actions []store.ActionEntry `json:"actions"`
	Counts  map[string]int      `json:"counts"`
}

// List handles GET /api/actions?limit=N.
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.store.ActionLog().Recent(limit)
	if err != nil {
		h.log.Error("list actions failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list actions")
		return
	}
	counts, err := h.store.ActionLog().Counts()
	if err != nil {
		h.log.Error("count actions failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to count actions")
		return
	}

	if entries == nil {
		entries = []store.ActionEntry{}
	}
	writeJSON(w, http.StatusOK, listActionsResponse{Actions: entries, Counts: counts})
}
