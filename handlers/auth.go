package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/config"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/store"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/sessions"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/tokens"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/users"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/logger"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/metrics"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/middleware"
)

// LoginRequest is the password login body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         config.JWTConfig
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	blacklist   *sessions.Blacklist
	verifier    middleware.Verifier
}

func NewAuthHandler(cfg config.JWTConfig, u *users.Service, s *sessions.Service, bl *sessions.Blacklist, v middleware.Verifier) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s, blacklist: bl, verifier: v}
}

// Register routes under /auth. authMW guards /auth/me.
func (h *AuthHandler) Register(rg gin.IRouter, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
	a.GET("/me", authMW, h.Me)
}

func (h *AuthHandler) expiresIn() int {
	return int(h.cfg.AccessTokenTTL.Seconds())
}

// Login checks username/password against the users collection and opens a
// refresh session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}
	ctx := c.Request.Context()
	u, err := h.usersSvc.Authenticate(ctx, req.Username, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		logger.Warnw("login failed", "username", req.Username, "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		logger.Errorf("login lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to authenticate"})
		return
	}

	rft, err := h.sessionsSvc.CreateSession(ctx, u.ID, u.Username, h.cfg.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.AccessTokenTTL)
	if err != nil {
		logger.Errorf("failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create access token"})
		return
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	logger.Infow("login", "user_id", u.ID, "username", u.Username)
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "refreshToken": rft, "user": u, "expiresIn": h.expiresIn()})
}

// Refresh rotates the refresh token and returns a new token pair. The role
// is read from the current user record, not from the old access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "refreshToken is required"})
		return
	}
	ctx := c.Request.Context()
	sess, next, err := h.sessionsSvc.Rotate(ctx, req.RefreshToken, h.cfg.RefreshTokenTTL)
	if errors.Is(err, sessions.ErrInvalidRefresh) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
		return
	}
	if err != nil {
		logger.Errorf("refresh validation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to refresh session"})
		return
	}
	u, err := h.usersSvc.GetByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// account removed since login
		_ = h.sessionsSvc.DeleteRefresh(ctx, next)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
		return
	}
	if err != nil {
		logger.Errorf("refresh user lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to refresh session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "refreshToken": next, "expiresIn": h.expiresIn()})
}

// Logout invalidates the refresh token and, when a valid bearer token is
// sent along, blacklists it for the rest of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "refreshToken is required"})
		return
	}
	ctx := c.Request.Context()
	if auth := c.GetHeader("Authorization"); auth != "" && h.blacklist != nil && h.verifier != nil {
		var at string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &at); n == 1 {
			if tok, err := h.verifier.Verify(ctx, at); err == nil {
				var claims map[string]interface{}
				if err := tok.Claims(&claims); err == nil {
					if ttl, err := tokens.Expiry(claims); err == nil {
						if err := h.blacklist.BlacklistAccessToken(ctx, at, ttl); err != nil {
							logger.Errorf("blacklist error: %v", err)
							c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to revoke access token"})
							return
						}
					}
				}
			}
		}
	}

	if err := h.sessionsSvc.DeleteRefresh(ctx, req.RefreshToken); err != nil {
		logger.Errorf("logout session delete error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the account behind the bearer token. Accounts from an external
// identity provider have no local record and are described by their claims.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	if idp, _ := claims["idp"].(string); idp != "" {
		c.JSON(http.StatusOK, gin.H{
			"sub":      claims["sub"],
			"username": claims["username"],
			"email":    claims["email"],
			"role":     claims["role"],
			"idp":      idp,
		})
		return
	}
	id, err := tokens.UserID(claims)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		logger.Errorf("me lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, u)
}
