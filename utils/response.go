package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope used by endpoints that report success explicitly.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   message,
	})
}

// SendInternalError logs err against the caller and answers a generic 500.
func SendInternalError(c *gin.Context, err error, message string) {
	LogErrorWithUser(c.GetString("user_id"), err, message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// ValidateRequestBody binds the JSON body into obj and answers 400 on failure.
func ValidateRequestBody(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		SendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
