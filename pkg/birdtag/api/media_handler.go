package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// MediaHandler handles HTTP requests for media upload, search, tagging and
// deletion using pkg/birdtag.
type MediaHandler struct {
	service birdtag.Service
	logger  *slog.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service birdtag.Service, logger *slog.Logger) *MediaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaHandler{service: service, logger: logger}
}

// Routes returns the routes for media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/upload", h.NewUploadLink)

	r.Get("/search/by-species", h.SearchBySpecies)
	r.Get("/search/by-tags", h.SearchByTagsQuery)
	r.Post("/search/by-tags", h.SearchByTagsBody)
	r.Post("/search/by-file-tag", h.SearchBySample)
	r.Get("/search/by-thumbnail", h.ResolveThumbnail)
	r.Get("/search/gallery", h.Gallery)

	r.Post("/tags", h.BulkEditTags)
	r.Post("/delete", h.DeleteByURLs)

	return r
}

// UploadRequest is the request body for minting an upload link
type UploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Temporary   bool   `json:"isTemporary"`
}

// UploadResponse is the response body for an upload link
type UploadResponse struct {
	UploadURL   string `json:"uploadUrl"`
	Bucket      string `json:"bucket"`
	Key         string `json:"s3Key"`
	FileType    string `json:"fileType"`
	ContentType string `json:"contentType"`
	ExpiresIn   int    `json:"expiresIn"`
	Temporary   bool   `json:"isTemporary"`
}

// NewUploadLink mints a presigned upload link
func (h *MediaHandler) NewUploadLink(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON", err.Error())
		return
	}
	if req.FileName == "" || req.ContentType == "" {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "fileName and contentType are required", "")
		return
	}

	link, err := h.service.NewUploadLink(r.Context(), birdtag.NewUploadLinkRequest{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Temporary:   req.Temporary,
	})
	if err != nil {
		h.logError(r, "upload link", err)
		writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, UploadResponse{
		UploadURL:   link.URL,
		Bucket:      link.Store,
		Key:         link.Key,
		FileType:    string(link.Kind),
		ContentType: link.ContentType,
		ExpiresIn:   int(link.ExpiresIn.Seconds()),
		Temporary:   link.Temporary,
	})
}

// LinksResponse is the response body for link-list searches
type LinksResponse struct {
	Links []string `json:"links"`
	Count int      `json:"count"`
}

// SearchBySpecies finds files containing any of the requested species.
// Species are passed as repeated or numbered query parameters (species,
// species1, species2, ...).
func (h *MediaHandler) SearchBySpecies(w http.ResponseWriter, r *http.Request) {
	var species []string
	for key, values := range r.URL.Query() {
		if !strings.HasPrefix(key, "species") {
			continue
		}
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				species = append(species, v)
			}
		}
	}
	if len(species) == 0 {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "at least one species parameter is required", "")
		return
	}

	links, err := h.service.SearchBySpecies(r.Context(), species)
	if err != nil {
		h.logError(r, "search by species", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, LinksResponse{Links: links, Count: len(links)})
}

// SearchByTagsQuery finds files meeting minimum counts passed as paired
// query parameters (tag1=crow&count1=3). A missing count defaults to 1.
func (h *MediaHandler) SearchByTagsQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	requirements := make(map[string]int)
	for key, values := range query {
		if !strings.HasPrefix(key, "tag") || len(values) == 0 {
			continue
		}
		tag := strings.TrimSpace(values[0])
		if tag == "" {
			continue
		}
		count := 1
		if countValue := query.Get("count" + strings.TrimPrefix(key, "tag")); countValue != "" {
			n, err := strconv.Atoi(countValue)
			if err != nil || n <= 0 {
				writeError(w, r, http.StatusBadRequest, CodeInvalidParameters,
					"counts must be positive integers", "count for "+tag)
				return
			}
			count = n
		}
		requirements[tag] = count
	}
	h.searchByTags(w, r, requirements)
}

// SearchByTagsBody finds files meeting minimum counts passed as a JSON
// object of tag to count.
func (h *MediaHandler) SearchByTagsBody(w http.ResponseWriter, r *http.Request) {
	var requirements map[string]int
	if err := json.NewDecoder(r.Body).Decode(&requirements); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON", err.Error())
		return
	}
	h.searchByTags(w, r, requirements)
}

func (h *MediaHandler) searchByTags(w http.ResponseWriter, r *http.Request, requirements map[string]int) {
	if len(requirements) == 0 {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "at least one tag is required", "")
		return
	}
	links, err := h.service.SearchByTags(r.Context(), requirements)
	if err != nil {
		h.logError(r, "search by tags", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, LinksResponse{Links: links, Count: len(links)})
}

// SampleSearchBody is the request body for a sample-seeded search
type SampleSearchBody struct {
	FileID string `json:"fileId"`
	Key    string `json:"s3Key"`
}

// SampleSearchResponse is the response body for a sample-seeded search
type SampleSearchResponse struct {
	Tags  birdtag.TagMap `json:"detectedTags"`
	Links []string       `json:"links"`
	Count int            `json:"count"`
}

// SearchBySample waits for a temporary upload's detection results and finds
// files sharing any of its species.
func (h *MediaHandler) SearchBySample(w http.ResponseWriter, r *http.Request) {
	var req SampleSearchBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON", err.Error())
		return
	}
	if req.FileID == "" || req.Key == "" {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "fileId and s3Key are required", "")
		return
	}

	result, err := h.service.SearchBySample(r.Context(), birdtag.SampleSearchRequest{
		FileID: req.FileID,
		Key:    req.Key,
	})
	if err != nil {
		h.logError(r, "search by sample", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SampleSearchResponse{Tags: result.Tags, Links: result.Links, Count: len(result.Links)})
}

// ResolveThumbnail maps a thumbnail URL back to a fresh full-size link
func (h *MediaHandler) ResolveThumbnail(w http.ResponseWriter, r *http.Request) {
	thumbnailURL := r.URL.Query().Get("thumbnailUrl")
	if thumbnailURL == "" {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "thumbnailUrl is required", "")
		return
	}

	url, err := h.service.ResolveThumbnail(r.Context(), thumbnailURL)
	if err != nil {
		h.logError(r, "resolve thumbnail", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"url": url})
}

// Gallery lists permanent media grouped by kind, newest first
func (h *MediaHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	req := birdtag.GalleryRequest{}
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, CodeInvalidParameters, "limit must be a non-negative integer", "")
			return
		}
		req.Limit = n
	}
	if raw := query.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, CodeInvalidParameters, "offset must be a non-negative integer", "")
			return
		}
		req.Offset = n
	}

	gallery, err := h.service.Gallery(r.Context(), req)
	if err != nil {
		h.logError(r, "gallery", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, gallery)
}

// BulkEditTagsBody is the request body for a bulk tag edit
type BulkEditTagsBody struct {
	URLs      []string `json:"url"`
	Operation *int     `json:"operation"`
	Tags      []string `json:"tags"`
}

// BulkEditTags adds or removes tag counts across files. Partial failure
// renders 207 with per-URL outcomes.
func (h *MediaHandler) BulkEditTags(w http.ResponseWriter, r *http.Request) {
	var req BulkEditTagsBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON", err.Error())
		return
	}
	if len(req.URLs) == 0 || len(req.Tags) == 0 || req.Operation == nil {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "url, operation and tags are required", "")
		return
	}
	op := birdtag.TagOp(*req.Operation)
	if !op.IsValid() {
		writeError(w, r, http.StatusBadRequest, CodeInvalidOperation, "operation must be 0 (remove) or 1 (add)", "")
		return
	}

	result, err := h.service.BulkEditTags(r.Context(), birdtag.BulkEditTagsRequest{
		URLs: req.URLs,
		Op:   op,
		Tags: req.Tags,
	})
	if err != nil {
		h.logError(r, "bulk tag edit", err)
		writeServiceError(w, r, err)
		return
	}
	if result.PartialFailure() {
		render.Status(r, http.StatusMultiStatus)
	}
	render.JSON(w, r, result)
}

// DeleteBody is the request body for a bulk delete
type DeleteBody struct {
	URLs []string `json:"urls"`
}

// DeleteByURLs removes files, their derived blobs, and their records.
// Partial failure renders 207 with per-URL outcomes.
func (h *MediaHandler) DeleteByURLs(w http.ResponseWriter, r *http.Request) {
	var req DeleteBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON", err.Error())
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, r, http.StatusBadRequest, CodeMissingParameters, "urls is required", "")
		return
	}

	result, err := h.service.DeleteByURLs(r.Context(), req.URLs)
	if err != nil {
		h.logError(r, "delete", err)
		writeServiceError(w, r, err)
		return
	}
	if result.PartialFailure() {
		render.Status(r, http.StatusMultiStatus)
	}
	render.JSON(w, r, result)
}

func (h *MediaHandler) logError(r *http.Request, op string, err error) {
	h.logger.Error("request failed", "op", op, "path", r.URL.Path, "err", err)
}
