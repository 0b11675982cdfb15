package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping is the health check endpoint.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Root reports that the server is up.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "task API server is running",
	})
}
