package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/catatan/catatan/internal/config"
	"github.com/catatan/catatan/internal/sessions"
	"github.com/catatan/catatan/internal/tokens"
	"github.com/catatan/catatan/internal/users"
	"github.com/catatan/catatan/pkg/logger"
	"github.com/catatan/catatan/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for an access token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	blacklist *sessions.Blacklist
}

func NewAuthHandler(cfg *config.Config, u *users.Service, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, blacklist: bl}
}

// Register mounts the routes under /auth. requireAuth guards logout and me.
func (h *AuthHandler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/logout", requireAuth, h.Logout)
	a.GET("/me", requireAuth, h.Me)
}

// SignUp creates an account and returns the public user.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	case err != nil:
		logger.Errorf("register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, u.Public())
}

// Login verifies email and password and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	u, err := h.usersSvc.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": users.ErrInvalidCredentials.Error()})
		return
	}
	if err != nil {
		logger.Errorf("login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("issue access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": access,
		"user":        u.Public(),
		"expiresIn":   int(h.cfg.JWT.AccessTokenTTL / time.Second),
	})
}

// Logout revokes the presented access token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := c.GetString(middleware.TokenKey)
	ttl := h.cfg.JWT.AccessTokenTTL
	if v, ok := c.Get(middleware.ClaimsKey); ok {
		if claims, ok := v.(map[string]interface{}); ok {
			if left := tokens.ExpiresIn(claims, time.Now()); left != 0 {
				ttl = left
			}
		}
	}
	if err := h.blacklist.Revoke(c.Request.Context(), raw, ttl); err != nil {
		logger.Errorf("revoke access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated identity.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, id)
}
