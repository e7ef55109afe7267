package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Currency     string    `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	Active       bool      `json:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	Token        string    `json:"token" gorm:"type:varchar(500);uniqueIndex;not null"`
	RefreshToken string    `json:"refresh_token" gorm:"type:varchar(500);uniqueIndex;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	User         User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Security event types recorded in SecurityLog.EventType.
const (
	EventLoginSuccess       = "LOGIN_SUCCESS"
	EventLoginFailed        = "LOGIN_FAILED"
	EventLogout             = "LOGOUT"
	EventPasswordChanged    = "PASSWORD_CHANGED"
	EventAccountReactivated = "ACCOUNT_REACTIVATED"
	EventTokenRefreshed     = "TOKEN_REFRESHED"
	EventSessionExpired     = "SESSION_EXPIRED"
)

// SecurityLog is an append-only audit record. Rows are never updated or
// deleted by the application.
type SecurityLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id,omitempty" gorm:"index"`
	EventType string    `json:"event_type" gorm:"type:varchar(50);not null;index"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(45);index"`
	UserAgent string    `json:"user_agent" gorm:"type:varchar(500)"`
	Details   string    `json:"details,omitempty" gorm:"type:text"`
	Success   bool      `json:"success" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
