// Package response carries the error taxonomy of the HTTP surface.
// Every failure returned to a caller is a status code plus a structured
// {"message": "..."} body; internal detail stays in the logs.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Message
}

// JSON writes the error to the response and aborts the handler chain.
func (e Error) JSON(c *gin.Context) {
	c.AbortWithStatusJSON(e.Code, e)
}

func NewValidationError(message string) Error {
	return Error{Code: http.StatusBadRequest, Message: message}
}

func NewAuthError(message string) Error {
	return Error{Code: http.StatusUnauthorized, Message: message}
}

func NewPermissionError(message string) Error {
	return Error{Code: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) Error {
	return Error{Code: http.StatusNotFound, Message: message}
}

func NewConflictError(message string) Error {
	return Error{Code: http.StatusConflict, Message: message}
}

func NewInternalError() Error {
	return Error{Code: http.StatusInternalServerError, Message: "internal server error"}
}
