package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/pkg/errors"
	"github.com/jwalitptl/solar-admin/pkg/validator"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

// NewMessageResponse is a success carrying a message for the admin's toast.
func NewMessageResponse(message string, data interface{}) *Response {
	return &Response{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err with the status its type maps to. Internal
// failures are logged and hidden behind a generic message.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok {
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logError(c, err)
		}
		c.JSON(status, &Response{Status: "error", Message: appErr.Message, Fields: appErr.Fields})
		return
	}
	if be, ok := backend.AsError(err); ok {
		c.JSON(be.StatusCode(), NewErrorResponse(be.Message))
		return
	}
	logError(c, err)
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

// RespondBindError reports a request that failed binding or validation.
func RespondBindError(c *gin.Context, err error) {
	RespondError(c, validator.Translate(err))
}

func logError(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")
}
