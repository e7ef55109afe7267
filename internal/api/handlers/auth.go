package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/api/middleware"
	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"
	"github.com/SelvaBrilyant/expense-sub001/internal/password"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"
	"github.com/SelvaBrilyant/expense-sub001/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"
)

type AuthHandler struct {
	authService *services.AuthService
	idle        *session.Registry
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, idle *session.Registry, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		idle:        idle,
		cfg:         cfg,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type PasswordCheckRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *models.User `json:"user"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Email, req.Name, req.Password)
	if err != nil {
		var policyErr *services.PasswordPolicyError
		switch {
		case errors.As(err, &policyErr):
			c.JSON(400, gin.H{"error": "Password does not meet requirements", "errors": policyErr.Errors})
		case errors.Is(err, services.ErrUserExists):
			c.JSON(409, gin.H{"error": "An account with this email already exists"})
		default:
			c.JSON(500, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(201, user)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	ip := middleware.RequestIP(c)
	ua := middleware.RequestUserAgent(c)

	user, err := h.authService.Login(req.Email, req.Password, ip, ua)
	if err != nil {
		if errors.Is(err, services.ErrTooManyAttempts) {
			c.JSON(429, gin.H{"error": "Too many failed attempts. Try again later."})
			return
		}
		c.JSON(401, gin.H{"error": "Invalid credentials"})
		return
	}

	token, refreshToken, expiresAt, err := h.issueTokens(user)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}

	if err := h.authService.CreateSession(user.ID, token, refreshToken, expiresAt); err != nil {
		c.JSON(500, gin.H{"error": "Failed to create session"})
		return
	}

	h.idle.Watch(token)

	c.JSON(200, LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user,
	})
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	// the session carries the user needed for the new claims
	sess, err := h.authService.GetSessionByRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid refresh token"})
		return
	}

	token, refreshToken, expiresAt, err := h.issueTokens(&sess.User)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}

	if _, err := h.authService.RotateSession(req.RefreshToken, token, refreshToken, expiresAt,
		middleware.RequestIP(c), middleware.RequestUserAgent(c)); err != nil {
		c.JSON(401, gin.H{"error": "Invalid refresh token"})
		return
	}

	h.idle.Remove(sess.Token)
	h.idle.Watch(token)

	c.JSON(200, LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         &sess.User,
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, exists := c.Get("session")
	if !exists {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	sess := v.(*models.Session)
	if err := h.authService.DeleteSession(sess.Token, sess.UserID, middleware.RequestIP(c), middleware.RequestUserAgent(c)); err != nil {
		c.JSON(500, gin.H{"error": "Failed to logout"})
		return
	}
	h.idle.Remove(sess.Token)

	c.JSON(200, gin.H{"message": "Logged out successfully"})
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	u := user.(*models.User)
	u.PasswordHash = ""
	c.JSON(200, u)
}

// ChangePassword updates the current user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword,
		middleware.RequestIP(c), middleware.RequestUserAgent(c))
	if err != nil {
		var policyErr *services.PasswordPolicyError
		switch {
		case errors.As(err, &policyErr):
			c.JSON(400, gin.H{"error": "Password does not meet requirements", "errors": policyErr.Errors})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(401, gin.H{"error": "Current password is incorrect"})
		default:
			c.JSON(500, gin.H{"error": "Failed to change password"})
		}
		return
	}

	c.JSON(200, gin.H{"message": "Password changed"})
}

// CheckPassword returns the advisory strength result for live feedback
func (h *AuthHandler) CheckPassword(c *gin.Context) {
	var req PasswordCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	res := password.Validate(req.Password)
	c.JSON(200, gin.H{
		"score":       res.Scale(5),
		"label":       res.Label(),
		"valid":       res.Valid,
		"errors":      res.Errors,
		"suggestions": res.Suggestions,
	})
}

type ActivityEntry struct {
	EventType string    `json:"event_type"`
	IPAddress string    `json:"ip_address"`
	Device    string    `json:"device"`
	Details   string    `json:"details,omitempty"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// GetActivity returns the user's recent security events with humanized
// user-agent strings
func (h *AuthHandler) GetActivity(c *gin.Context) {
	userID := c.GetUint("user_id")

	entries, err := h.authService.Security().RecentForUser(userID, 20)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to load activity"})
		return
	}

	result := make([]ActivityEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, ActivityEntry{
			EventType: e.EventType,
			IPAddress: e.IPAddress,
			Device:    describeUserAgent(e.UserAgent),
			Details:   e.Details,
			Success:   e.Success,
			CreatedAt: e.CreatedAt,
		})
	}

	c.JSON(200, gin.H{"activity": result})
}

// Deactivate soft-disables the account; logging in again reactivates it
func (h *AuthHandler) Deactivate(c *gin.Context) {
	userID := c.GetUint("user_id")
	tokens, err := h.authService.Deactivate(userID)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to deactivate account"})
		return
	}
	for _, token := range tokens {
		h.idle.Remove(token)
	}
	c.JSON(200, gin.H{"message": "Account deactivated"})
}

// describeUserAgent turns a raw user-agent header into a short device label
func describeUserAgent(raw string) string {
	if raw == "" || raw == "unknown" {
		return "Unknown device"
	}
	ua := useragent.Parse(raw)
	switch {
	case ua.Name != "" && ua.OS != "":
		return ua.Name + " on " + ua.OS
	case ua.Name != "":
		return ua.Name
	default:
		return "Unknown device"
	}
}

// issueTokens generates an access JWT plus an opaque refresh token
func (h *AuthHandler) issueTokens(user *models.User) (string, string, time.Time, error) {
	expiresIn, err := time.ParseDuration(h.cfg.JWT.ExpiresIn)
	if err != nil {
		expiresIn = 24 * time.Hour
	}

	expiresAt := time.Now().Add(expiresIn)

	secret := h.cfg.JWT.Secret
	if secret == "" {
		secret = "expense-tracker-default-secret-change-in-production"
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
		"iss":     h.cfg.JWT.Issuer,
		"jti":     uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", "", time.Time{}, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return "", "", time.Time{}, err
	}

	return tokenString, refreshToken, expiresAt, nil
}

// randomToken returns 32 bytes of hex-encoded randomness
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
