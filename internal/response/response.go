// Package response defines the uniform envelope returned by every
// endpoint and the mapping from domain errors to HTTP statuses.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/apperr"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Error maps domain errors (not found, validation, generation) to their
// statuses. Anything unrecognized becomes a generic 500 envelope so
// internal state never leaks.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !isDomainError(err) {
		msg = "internal server error"
	}
	c.JSON(status, Envelope{Success: false, Message: msg})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}

func isDomainError(err error) bool {
	if apperr.IsNotFound(err) || apperr.IsValidation(err) {
		return true
	}
	var ge *apperr.GenerationError
	return errors.As(err, &ge)
}
