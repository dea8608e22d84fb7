package controllers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"task-reviewer-api/config"
	"task-reviewer-api/middleware"
)

// AuthController exchanges the admin shared secret for a session marker.
type AuthController struct {
	cfg *config.Config
}

func NewAuthController(cfg *config.Config) *AuthController {
	return &AuthController{cfg: cfg}
}

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles POST /auth/admin.
func (ac *AuthController) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !ac.secretMatches(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin password"})
		return
	}

	token, err := ac.generateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Admin authenticated successfully",
	})
}

// secretMatches prefers the bcrypt hash when configured (see
// cmd/hash-admin-secret) and falls back to a constant-time compare of the
// plain shared secret.
func (ac *AuthController) secretMatches(password string) bool {
	if ac.cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(ac.cfg.AdminPasswordHash), []byte(password)) == nil
	}
	if ac.cfg.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(ac.cfg.AdminPassword)) == 1
}

// generateToken creates the admin session marker.
func (ac *AuthController) generateToken() (string, error) {
	claims := middleware.Claims{
		Role: middleware.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(ac.cfg.JWTExpireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ac.cfg.JWTSecret))
}
