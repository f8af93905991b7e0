package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root answers GET / so a browser hitting the API host sees it is alive.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is running!"})
}

// Health is the load balancer probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
