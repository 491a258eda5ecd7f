package httpapi

import (
	"errors"
	"net/http"

	"github.com/benmcmorran/anamericanday/core"
	"github.com/gin-gonic/gin"
)

// Response represents a standard API response.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// success sends a successful response.
func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// fail sends an error response.
func fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// badRequest sends a 400 bad request response.
func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

// failWith maps core lookup errors to their HTTP status.
func failWith(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, core.ErrUnknownTimescale), errors.Is(err, core.ErrUnknownDemographic):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrIndexOutOfRange):
		badRequest(c, err.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
