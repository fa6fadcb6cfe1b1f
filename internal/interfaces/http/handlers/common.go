// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps a coded application error onto its HTTP status. Server
// side failures keep their code but have their message masked.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Code: code.String(), Message: message})
}

// respondBadRequest reports a malformed request body or query parameter.
func respondBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    errors.ErrCodeBadRequest.String(),
		Message: msg,
	})
}

// parseTimeWindow reads the from/to query parameters as RFC 3339 timestamps.
// Missing values default to the last 24 hours ending now.
func parseTimeWindow(c *gin.Context) (from, to time.Time, err error) {
	to = time.Now().UTC()
	from = to.Add(-24 * time.Hour)

	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid 'to' timestamp")
		}
		from = to.Add(-24 * time.Hour)
	}
	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid 'from' timestamp")
		}
	}
	if from.After(to) {
		return from, to, errors.New(errors.ErrCodeBadRequest, "'from' must not be after 'to'")
	}
	return from, to, nil
}
