package middleware

import (
	"strings"

	"github.com/SelvaBrilyant/expense-sub001/internal/services"
	"github.com/SelvaBrilyant/expense-sub001/internal/session"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(authService *services.AuthService, idle *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]

		// Verify token and get session
		session, err := authService.GetSession(token)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Each authenticated request counts as activity. Watch first so
		// sessions issued before a restart are picked back up.
		idle.Watch(token)
		idle.Touch(token)

		// Set user in context (store as pointer)
		c.Set("user", &session.User)
		c.Set("user_id", session.UserID)
		c.Set("session", session)

		c.Next()
	}
}

// RequestIP prefers the first entry of X-Forwarded-For, falling back to the
// socket-level address.
func RequestIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	return c.ClientIP()
}

// RequestUserAgent returns the User-Agent header, defaulting to "unknown".
func RequestUserAgent(c *gin.Context) string {
	if ua := c.GetHeader("User-Agent"); ua != "" {
		return ua
	}
	return "unknown"
}
