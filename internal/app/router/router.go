// Package router assembles the HTTP route table.
package router

import (
	"github.com/gin-gonic/gin"

	authhandler "gastronomy_backend/internal/feature/auth/transport/handler"
	"gastronomy_backend/internal/platform/http/handler"
	jwtmw "gastronomy_backend/internal/platform/jwt"
)

// NewRouter wires the public and authenticated routes.
func NewRouter(authHandler *authhandler.AuthHandler) *gin.Engine {
	r := gin.Default()

	// Public routes
	r.GET("/", handler.Welcome)
	r.GET("/healthz", handler.Health)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// Routes requiring a bearer token
	protected := r.Group("/auth")
	protected.Use(jwtmw.AuthRequired())
	{
		protected.GET("/me", authHandler.Me)
	}

	return r
}
