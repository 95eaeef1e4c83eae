package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tanagerlabs/birdtag/pkg/birdtag/ingest"
)

// IngestHandler accepts storage-event batches over HTTP, for deployments
// where bucket notifications arrive through a webhook rather than a queue.
type IngestHandler struct {
	processor *ingest.Processor
	logger    *slog.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(processor *ingest.Processor, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{processor: processor, logger: logger}
}

// Routes returns the routes for ingest
func (h *IngestHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/events", h.HandleEvent)
	return r
}

// HandleEvent processes a storage event batch and reports per-item
// outcomes. Any failed item makes the response 207.
func (h *IngestHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event ingest.StorageEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON", err.Error())
		return
	}
	if len(event.Items) == 0 {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "items is required", "")
		return
	}

	results := h.processor.HandleEvent(r.Context(), event)
	failed := 0
	for _, result := range results {
		if result.Status == ingest.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		render.Status(r, http.StatusMultiStatus)
	}
	render.JSON(w, r, map[string]any{
		"results": results,
		"failed":  failed,
	})
}
