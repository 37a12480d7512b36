// Package apierror carries the HTTP-facing error taxonomy. Every error
// response body has the shape {"detail": "..."}.
package apierror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an error with an HTTP status and a user-visible detail message.
type Error struct {
	Status  int
	Detail  string
	Headers map[string]string
}

func (e *Error) Error() string {
	return e.Detail
}

// Response is the JSON body written for every error.
type Response struct {
	Detail string `json:"detail" example:"Duplicate username"`
}

func newError(status int, detail string) *Error {
	return &Error{Status: status, Detail: detail}
}

// Validation reports malformed or out-of-range input.
func Validation(detail string) *Error {
	return newError(http.StatusUnprocessableEntity, detail)
}

// Conflict reports a duplicate value in a unique field.
func Conflict(detail string) *Error {
	return newError(http.StatusConflict, detail)
}

// NotFound reports that a referenced entity does not exist.
func NotFound(detail string) *Error {
	return newError(http.StatusNotFound, detail)
}

// Forbidden reports that the actor may not perform the operation.
func Forbidden(detail string) *Error {
	return newError(http.StatusForbidden, detail)
}

// BadRequest reports a request that is well-formed but unusable, such as
// an update with nothing to change.
func BadRequest(detail string) *Error {
	return newError(http.StatusBadRequest, detail)
}

// Unauthenticated reports a missing, invalid or expired credential. It
// carries the bearer challenge header.
func Unauthenticated(detail string) *Error {
	e := newError(http.StatusUnauthorized, detail)
	e.Headers = map[string]string{"WWW-Authenticate": "Bearer"}
	return e
}

// Abort writes err to the response and stops the handler chain. Errors
// that are not *Error become a 500 and are logged, since their text may
// leak internals.
func Abort(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Detail: "Internal server error"})
		return
	}

	for k, v := range apiErr.Headers {
		c.Header(k, v)
	}
	c.AbortWithStatusJSON(apiErr.Status, Response{Detail: apiErr.Detail})
}
