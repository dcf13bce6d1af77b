// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gastronomy_backend/internal/api"
)

// Health handles the /healthz endpoint for service health checks.
// It responds to every method and prevents caching.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{"status": "ok"})
	}
}

// Welcome handles the root endpoint with the standard envelope.
func Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, api.OK(http.StatusOK, api.Body{Text: "Welcome to MyGastronomy!"}))
}
