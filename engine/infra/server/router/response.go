package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floworx/floworx/pkg/logger"
)

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// RespondWithError aborts the request with the standard error envelope.
func RespondWithError(c *gin.Context, status int, e *Error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: e})
}

// RespondWithServerError logs the cause and answers 500 without leaking it.
func RespondWithServerError(c *gin.Context, code, message string, err error) {
	if err != nil {
		logger.FromContext(c.Request.Context()).Error(message, "error", err, "path", c.FullPath())
	}
	RespondWithError(c, http.StatusInternalServerError, &Error{Code: code, Message: message, Err: err})
}

func RespondBadRequest(c *gin.Context, code, message string, details any) {
	RespondWithError(c, http.StatusBadRequest, &Error{Code: code, Message: message, Details: details})
}

func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
