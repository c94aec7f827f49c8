package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorBody is the standard error response shape.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error sends an error response with the given status code.
func Error(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorBody{
		Error:   errorCode,
		Message: message,
	})
}

// OK sends a 200 response with the given data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 Created response with the given data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// UserID extracts the authenticated user ID from the Gin context.
// Returns uuid.Nil if not found or invalid.
func UserID(c *gin.Context) uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// RequireUser checks that the request is authenticated and aborts with 401
// if not. Returns the user ID, or uuid.Nil after aborting.
func RequireUser(c *gin.Context) uuid.UUID {
	userID := UserID(c)
	if userID == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorBody{Error: "unauthorized"})
		return uuid.Nil
	}
	return userID
}
