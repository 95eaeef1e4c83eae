package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// Error codes carried in the error envelope.
const (
	CodeInvalidJSON       = "INVALID_JSON"
	CodeMissingParameters = "MISSING_PARAMETERS"
	CodeInvalidParameters = "INVALID_PARAMETERS"
	CodeInvalidOperation  = "INVALID_OPERATION"
	CodeFileNotFound      = "FILE_NOT_FOUND"
	CodeProcessingTimeout = "PROCESSING_TIMEOUT"
	CodeInternalError     = "INTERNAL_SERVER_ERROR"
)

// ErrorResponse is the envelope every error response carries.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
}

// writeError renders the error envelope with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
	})
}

// writeServiceError maps a service error onto the envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *birdtag.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, r, http.StatusBadRequest, CodeInvalidParameters, validation.Error(), "")
	case errors.Is(err, birdtag.ErrRecordNotFound):
		writeError(w, r, http.StatusNotFound, CodeFileNotFound, "file not found", "")
	case errors.Is(err, birdtag.ErrProcessingTimeout):
		writeError(w, r, http.StatusRequestTimeout, CodeProcessingTimeout,
			"file processing did not finish in time", "the file may still be processing; retry shortly")
	default:
		writeError(w, r, http.StatusInternalServerError, CodeInternalError, "internal server error", "")
	}
}
