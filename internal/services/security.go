package services

import (
	"log/slog"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"
)

// SecurityService writes the append-only security log and answers the
// read-side queries built on it.
type SecurityService struct {
	cfg *config.Config
}

func NewSecurityService(cfg *config.Config) *SecurityService {
	return &SecurityService{cfg: cfg}
}

// Record appends a security event. Persistence failures are logged and
// swallowed: the audit trail must never be able to break the operation it is
// documenting, so Record deliberately has no error result.
func (s *SecurityService) Record(entry *models.SecurityLog) {
	if err := models.DB.Create(entry).Error; err != nil {
		slog.Error("failed to write security log", "event_type", entry.EventType, "error", err)
	}
}

// RecentForUser returns the newest security events for a user, newest first.
func (s *SecurityService) RecentForUser(userID uint, limit int) ([]models.SecurityLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []models.SecurityLog
	if err := models.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountFailedLogins counts LOGIN_FAILED events for an IP within the window
// ending now. A zero window falls back to the configured default.
func (s *SecurityService) CountFailedLogins(ip string, window time.Duration) (int64, error) {
	if window <= 0 {
		window = s.cfg.BruteForceWindow()
	}
	var count int64
	err := models.DB.Model(&models.SecurityLog{}).
		Where("ip_address = ? AND event_type = ? AND created_at >= ?",
			ip, models.EventLoginFailed, time.Now().Add(-window)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IsSuspicious reports whether an IP has reached the failed-login threshold
// within the current fixed window. This is a fixed-window counter, not a
// sliding one: a burst split across the window boundary can evade it. Query
// errors are propagated; callers choose their fail-open/fail-closed policy.
func (s *SecurityService) IsSuspicious(ip string, threshold int) (bool, error) {
	if threshold <= 0 {
		threshold = s.cfg.FailedLoginThreshold()
	}
	count, err := s.CountFailedLogins(ip, s.cfg.BruteForceWindow())
	if err != nil {
		return false, err
	}
	return count >= int64(threshold), nil
}
