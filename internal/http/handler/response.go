package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidBody    = "Invalid request body."
	msgInternalError  = "Internal Server Error"
	msgDeleteNotFound = "To-do not found."
)

// ListResponse wraps a page for the list endpoints.
type ListResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// FailureResponse is the body of every 500.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func writeNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"message": message})
}

func writeInternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, FailureResponse{Success: false, Message: msgInternalError})
}

// bindJSON decodes the request body into dst. An empty body leaves dst at its
// zero value so field validation reports what is missing.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(c, msgInvalidBody)
		return false
	}
	return true
}
