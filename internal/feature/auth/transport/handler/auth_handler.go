// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gastronomy_backend/internal/api"
	"gastronomy_backend/internal/feature/auth/domain/entity"
	"gastronomy_backend/internal/feature/auth/transport/http/dto"
	"gastronomy_backend/internal/feature/auth/usecase"
	jwtmw "gastronomy_backend/internal/platform/jwt"
)

// defaultRequestTimeout bounds the store and derivation work of a single
// auth request. Deadline misses surface as 503, never as a credential error.
const defaultRequestTimeout = 10 * time.Second

// AuthUsecase defines the auth operations the handler needs.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	// Signup registers a new user and issues tokens.
	Signup(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.AuthResult, error)
	// Login verifies credentials and issues tokens.
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.AuthResult, error)
	// Refresh rotates a refresh session and issues tokens.
	Refresh(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.AuthResult, error)
	// Logout revokes a refresh session.
	Logout(ctx context.Context, refreshToken string) error
	// CurrentUser returns the sanitized user for an authenticated ID.
	CurrentUser(ctx context.Context, userID uint) (*entity.PublicUser, error)
}

// AuthHandler handles HTTP requests for authentication operations.
// Every response uses the api.Response envelope.
type AuthHandler struct {
	auth    AuthUsecase
	timeout time.Duration
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth, timeout: defaultRequestTimeout}
}

// clientInfo extracts the session metadata from the request.
func clientInfo(c *gin.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

// requestCtx derives the request-scoped deadline covering store and KDF work.
func (h *AuthHandler) requestCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// Signup handles the user registration endpoint.
// - 400 on validation errors
// - 409 when the email is already registered (conflict, not a server error)
// - 503 on store/derivation deadline misses
// - 200 with token, refresh token and sanitized user on success
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.Fail(http.StatusBadRequest, "invalid request"))
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.auth.Signup(ctx, req.Email, req.Password, clientInfo(c))
	if err != nil {
		status, text := signupError(err)
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(status, api.Fail(status, text))
		return
	}

	slog.Info("user signup successful", "email", result.User.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.OK(http.StatusOK, api.Body{
		Text:         "User registered correctly!",
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	}))
}

// signupError maps usecase errors to a status and a client-safe message.
func signupError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		return http.StatusConflict, "User already exists!"
	case errors.Is(err, usecase.ErrTimeout):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, usecase.ErrWeakPassword):
		return http.StatusBadRequest, "invalid request"
	default:
		return http.StatusInternalServerError, "signup failed"
	}
}

// Login handles the user login endpoint. Unknown email and wrong password
// are indistinguishable in status, shape and message; only a missed deadline
// answers differently (503).
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.Fail(http.StatusBadRequest, "invalid request"))
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.auth.Login(ctx, req.Email, req.Password, clientInfo(c))
	if err != nil {
		if errors.Is(err, usecase.ErrTimeout) {
			slog.Warn("login timed out", "remote_addr", c.ClientIP())
			c.JSON(http.StatusServiceUnavailable, api.Fail(http.StatusServiceUnavailable, "service unavailable"))
			return
		}
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.Fail(http.StatusUnauthorized, "invalid email or password"))
		return
	}

	slog.Info("user login successful", "email", result.User.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.OK(http.StatusOK, api.Body{
		Text:         "Logged in!",
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	}))
}

// Refresh handles refresh-token rotation.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Fail(http.StatusBadRequest, "invalid request"))
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.auth.Refresh(ctx, req.RefreshToken, clientInfo(c))
	if err != nil {
		if errors.Is(err, usecase.ErrTimeout) {
			c.JSON(http.StatusServiceUnavailable, api.Fail(http.StatusServiceUnavailable, "service unavailable"))
			return
		}
		slog.Warn("refresh failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.Fail(http.StatusUnauthorized, "invalid refresh token"))
		return
	}

	c.JSON(http.StatusOK, api.OK(http.StatusOK, api.Body{
		Text:         "Token refreshed!",
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	}))
}

// Logout revokes the presented refresh session.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Fail(http.StatusBadRequest, "invalid request"))
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	if err := h.auth.Logout(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, usecase.ErrTimeout) {
			c.JSON(http.StatusServiceUnavailable, api.Fail(http.StatusServiceUnavailable, "service unavailable"))
			return
		}
		c.JSON(http.StatusUnauthorized, api.Fail(http.StatusUnauthorized, "invalid refresh token"))
		return
	}

	c.JSON(http.StatusOK, api.OK(http.StatusOK, api.Body{Text: "Logged out!"}))
}

// Me returns the sanitized current user. It sits behind the JWT middleware,
// which stores the authenticated user ID on the context.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Fail(http.StatusUnauthorized, "unauthorized"))
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	user, err := h.auth.CurrentUser(ctx, userID.(uint))
	if err != nil {
		slog.Warn("current user lookup failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.Fail(http.StatusUnauthorized, "unauthorized"))
		return
	}

	c.JSON(http.StatusOK, api.OK(http.StatusOK, api.Body{Text: "ok", User: user}))
}
