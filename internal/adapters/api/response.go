package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"worklog/internal/blob"
	"worklog/internal/core"
	"worklog/internal/taxonomy"
)

// APIError is the error body returned by every endpoint.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message: verr.Error(),
			Code:    "validation_failed",
			Details: verr,
		}})
	case errors.Is(err, taxonomy.ErrNoPending):
		respondError(c, http.StatusConflict, "no_pending_decision", err)
	case errors.Is(err, core.ErrClosed):
		respondError(c, http.StatusServiceUnavailable, "closed", err)
	case errors.Is(err, blob.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	default:
		respondError(c, http.StatusInternalServerError, "internal", err)
	}
}
