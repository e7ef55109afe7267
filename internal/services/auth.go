package services

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"
	"github.com/SelvaBrilyant/expense-sub001/internal/password"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// PasswordPolicyError carries the strength-policy violations verbatim so
// handlers can surface them to the caller unchanged.
type PasswordPolicyError struct {
	Errors []string
}

func (e *PasswordPolicyError) Error() string {
	return "password rejected: " + strings.Join(e.Errors, "; ")
}

type AuthService struct {
	cfg      *config.Config
	security *SecurityService
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:      cfg,
		security: NewSecurityService(cfg),
	}
}

// Security exposes the security log service sharing this service's config.
func (s *AuthService) Security() *SecurityService {
	return s.security
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(pw string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pw), s.cfg.Security.BcryptCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(pw))
	return err == nil
}

// Register creates a new user. The password must pass the strength policy;
// violations come back as a PasswordPolicyError. New users get the default
// category set.
func (s *AuthService) Register(email, name, pw string) (*models.User, error) {
	if res := password.Validate(pw); !res.Valid {
		return nil, &PasswordPolicyError{Errors: res.Errors}
	}

	var existing models.User
	if err := models.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hashed, err := s.HashPassword(pw)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Active:       true,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return seedDefaultCategories(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials. Before touching the password it consults the
// brute-force detector for the caller's IP; a detector query failure is
// treated as suspicious (fail closed). Every attempt is recorded in the
// security log. A deactivated account is reactivated by a successful login.
func (s *AuthService) Login(email, pw, ip, userAgent string) (*models.User, error) {
	suspicious, err := s.security.IsSuspicious(ip, 0)
	if err != nil {
		slog.Warn("brute-force check failed, failing closed", "ip", ip, "error", err)
		suspicious = true
	}
	if suspicious {
		s.security.Record(&models.SecurityLog{
			EventType: models.EventLoginFailed,
			IPAddress: ip,
			UserAgent: userAgent,
			Details:   "rejected: failed-login threshold reached",
			Success:   false,
		})
		return nil, ErrTooManyAttempts
	}

	var user models.User
	if err := models.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.security.Record(&models.SecurityLog{
				EventType: models.EventLoginFailed,
				IPAddress: ip,
				UserAgent: userAgent,
				Details:   "unknown email",
				Success:   false,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.VerifyPassword(user.PasswordHash, pw) {
		s.security.Record(&models.SecurityLog{
			UserID:    &user.ID,
			EventType: models.EventLoginFailed,
			IPAddress: ip,
			UserAgent: userAgent,
			Details:   "wrong password",
			Success:   false,
		})
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		user.Active = true
		if err := models.DB.Save(&user).Error; err != nil {
			return nil, err
		}
		s.security.Record(&models.SecurityLog{
			UserID:    &user.ID,
			EventType: models.EventAccountReactivated,
			IPAddress: ip,
			UserAgent: userAgent,
		})
	}

	s.security.Record(&models.SecurityLog{
		UserID:    &user.ID,
		EventType: models.EventLoginSuccess,
		IPAddress: ip,
		UserAgent: userAgent,
	})

	return &user, nil
}

// ChangePassword verifies the current password, gates the replacement through
// the strength policy and records the change.
func (s *AuthService) ChangePassword(userID uint, current, next, ip, userAgent string) error {
	var user models.User
	if err := models.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !s.VerifyPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	if res := password.Validate(next); !res.Valid {
		return &PasswordPolicyError{Errors: res.Errors}
	}

	hashed, err := s.HashPassword(next)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	if err := models.DB.Save(&user).Error; err != nil {
		return err
	}

	s.security.Record(&models.SecurityLog{
		UserID:    &user.ID,
		EventType: models.EventPasswordChanged,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return nil
}

// Deactivate soft-disables an account and ends all its sessions. The tokens
// of the deleted sessions are returned so idle tracking can drop them too.
// A later successful login reactivates the account.
func (s *AuthService) Deactivate(userID uint) ([]string, error) {
	var user models.User
	if err := models.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Active = false
	if err := models.DB.Save(&user).Error; err != nil {
		return nil, err
	}

	var tokens []string
	if err := models.DB.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error; err != nil {
		return nil, err
	}
	if err := models.DB.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// CreateSession creates a new session record
func (s *AuthService) CreateSession(userID uint, token, refreshToken string, expiresAt time.Time) error {
	session := &models.Session{
		UserID:       userID,
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
	return models.DB.Create(session).Error
}

// GetSession retrieves an unexpired session by access token
func (s *AuthService) GetSession(token string) (*models.Session, error) {
	var session models.Session
	if err := models.DB.Where("token = ? AND expires_at > ?", token, time.Now()).Preload("User").First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSessionByRefreshToken retrieves a session by refresh token
func (s *AuthService) GetSessionByRefreshToken(refreshToken string) (*models.Session, error) {
	var session models.Session
	if err := models.DB.Where("refresh_token = ?", refreshToken).Preload("User").First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &session, nil
}

// RotateSession exchanges a refresh token for a new token pair and records
// the refresh.
func (s *AuthService) RotateSession(refreshToken, newToken, newRefreshToken string, expiresAt time.Time, ip, userAgent string) (*models.Session, error) {
	var session models.Session
	if err := models.DB.Where("refresh_token = ?", refreshToken).Preload("User").First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	session.Token = newToken
	session.RefreshToken = newRefreshToken
	session.ExpiresAt = expiresAt
	if err := models.DB.Save(&session).Error; err != nil {
		return nil, err
	}

	s.security.Record(&models.SecurityLog{
		UserID:    &session.UserID,
		EventType: models.EventTokenRefreshed,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return &session, nil
}

// DeleteSession deletes a session and records the logout
func (s *AuthService) DeleteSession(token string, userID uint, ip, userAgent string) error {
	if err := models.DB.Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return err
	}
	s.security.Record(&models.SecurityLog{
		UserID:    &userID,
		EventType: models.EventLogout,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return nil
}

// ExpireIdleSession force-logs-out a session that went quiet past the idle
// threshold and records the expiry.
func (s *AuthService) ExpireIdleSession(token string) error {
	var session models.Session
	if err := models.DB.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := models.DB.Delete(&session).Error; err != nil {
		return err
	}
	s.security.Record(&models.SecurityLog{
		UserID:    &session.UserID,
		EventType: models.EventSessionExpired,
		Details:   "idle timeout",
	})
	return nil
}

// DeleteExpiredSessions removes expired sessions
func (s *AuthService) DeleteExpiredSessions() error {
	return models.DB.Where("expires_at < ?", time.Now()).Delete(&models.Session{}).Error
}
