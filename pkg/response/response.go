package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// debug controls whether internal error details are exposed to clients.
// Set once at startup.
var debug bool

// SetDebug enables or disables detail exposure on internal errors.
func SetDebug(d bool) {
	debug = d
}

// Response is the envelope shared by all API responses.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details string      `json:"details,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// AbortError writes an error response and aborts the handler chain.
func AbortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func ValidationError(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request",
		Details: details,
	})
}

func Unauthorized(c *gin.Context, code, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Error(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

// InternalError hides the underlying error outside development mode.
func InternalError(c *gin.Context, err error) {
	resp := Response{
		Success: false,
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	}
	if debug && err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}
