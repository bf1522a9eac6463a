package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response represents a standard success response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// ErrorBody is the body of every error response
type ErrorBody struct {
	Error string `json:"error"`
}

// Success returns a success response
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// JSON sends a JSON response
func JSON(c *gin.Context, statusCode int, body interface{}) {
	c.JSON(statusCode, body)
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, Success(data))
}

// CreatedJSON sends a 201 success JSON response
func CreatedJSON(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, message string) {
	JSON(c, statusCode, ErrorBody{Error: message})
}
