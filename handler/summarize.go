package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sumanize/sumanize"
	"github.com/sumanize/sumanize/summarize"
)

// SummarizeHandler serves the summarization endpoints. They sit on an open
// route prefix but still require a session; the handler authenticates each
// call through the engine.
//
// SummarizeHandler instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SummarizeHandler struct {
	engine  *sumanize.Engine
	service *summarize.Service
}

func NewSummarizeHandler(engine *sumanize.Engine, service *summarize.Service) *SummarizeHandler {
	return &SummarizeHandler{engine: engine, service: service}
}

// Summarize runs one summarization for the authenticated caller.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	identity, ok := authenticate(h.engine, w, r)
	if !ok {
		return
	}

	var input summarize.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	summary, err := h.service.Summarize(r.Context(), identity.ID, input)
	if err != nil {
		h.writeSummarizeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// History returns the caller's recent summaries, newest first.
func (h *SummarizeHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authenticate(h.engine, w, r)
	if !ok {
		return
	}

	summaries, err := h.service.History(r.Context(), identity.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}

func (h *SummarizeHandler) writeSummarizeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sumanize.ErrUsageLimited):
		writeError(w, http.StatusTooManyRequests, "daily limit reached")
	case errors.Is(err, summarize.ErrEmptyInput),
		errors.Is(err, summarize.ErrUnsupportedKind),
		errors.Is(err, summarize.ErrInvalidYouTubeLink):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, summarize.ErrInputTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "input too large")
	case errors.Is(err, summarize.ErrCompleterUnavailable):
		writeError(w, http.StatusBadGateway, "summarization temporarily unavailable")
	case errors.Is(err, sumanize.ErrCacheUnavailable):
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
