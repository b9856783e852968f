package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/airframe/internal/app"
	"github.com/ayusman/airframe/internal/detector"
	"github.com/ayusman/airframe/internal/filter"
	"github.com/ayusman/airframe/internal/gesture"
)

// maxFrameBytes bounds a landmark frame upload.
const maxFrameBytes = 1 << 20

// StudioHandler exposes the studio state, landmark ingestion and manual actions.
type StudioHandler struct {
	app *app.App
	log *slog.Logger
}

// NewStudioHandler creates a StudioHandler for a.
func NewStudioHandler(a *app.App, log *slog.Logger) *StudioHandler {
	return &StudioHandler{app: a, log: log}
}

// State handles GET /api/state.
func (h *StudioHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.State())
}

type frameResponse struct {
	Accepted bool `json:"accepted"`
	Hands    int  `json:"hands"`
}

// SubmitFrame handles POST /api/frames. The body is one landmark frame in the
// detector wire format; frames without a timestamp are stamped on arrival.
func (h *StudioHandler) SubmitFrame(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	frame, err := detector.DecodeFrame(body, time.Now())
	if err == nil {
		err = h.app.SubmitFrame(frame)
	}
	if err != nil {
		h.log.Debug("frame rejected", slog.String("error", err.Error()))
		status := http.StatusBadRequest
		if errors.Is(err, detector.ErrInvalidLandmarks) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, frameResponse{Accepted: true, Hands: len(frame.Hands)})
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type filterResponse struct {
	Filter  filter.Kind `json:"filter"`
	Message string      `json:"message"`
}

// SetFilter handles PUT /api/filter.
func (h *StudioHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	kind, err := filter.ParseKind(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fb, err := h.app.SetFilter(kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, filterResponse{Filter: kind, Message: fb.Message})
}

// Trigger handles POST /api/actions/{action}.
func (h *StudioHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	action, ok := gesture.ParseAction(chi.URLParam(r, "action"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	fb := h.app.Trigger(r.Context(), action)
	status := http.StatusOK
	if fb.Error != "" {
		status = http.StatusConflict
	}
	writeJSON(w, status, fb)
}
