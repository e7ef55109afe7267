package models

import (
	"time"
)

// Kind values for transactions, categories and recurring payments.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Kind      string    `json:"kind" gorm:"type:varchar(10);not null"` // income, expense
	Color     string    `json:"color" gorm:"type:varchar(7)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction stores amounts in minor units (cents) to avoid float drift.
type Transaction struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	CategoryID uint      `json:"category_id" gorm:"not null;index"`
	Kind       string    `json:"kind" gorm:"type:varchar(10);not null;index"`
	Amount     int64     `json:"amount" gorm:"not null"`
	Note       string    `json:"note" gorm:"type:varchar(500)"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index"`
	// SourceKey is set for rows materialized from a recurring payment so a
	// re-run cannot insert the same occurrence twice.
	SourceKey string    `json:"source_key,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Category  Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

type Budget struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_budget_scope"`
	CategoryID uint      `json:"category_id" gorm:"not null;uniqueIndex:idx_budget_scope"`
	Month      string    `json:"month" gorm:"type:varchar(7);not null;uniqueIndex:idx_budget_scope"` // YYYY-MM
	Amount     int64     `json:"amount" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Category   Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

type SavingsGoal struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"not null;index"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	TargetAmount int64      `json:"target_amount" gorm:"not null"`
	SavedAmount  int64      `json:"saved_amount" gorm:"default:0"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Achieved reports whether the goal target has been reached.
func (g *SavingsGoal) Achieved() bool {
	return g.SavedAmount >= g.TargetAmount
}

type RecurringPayment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	CategoryID uint      `json:"category_id" gorm:"not null"`
	Kind       string    `json:"kind" gorm:"type:varchar(10);not null"`
	Amount     int64     `json:"amount" gorm:"not null"`
	Note       string    `json:"note" gorm:"type:varchar(500)"`
	Schedule   string    `json:"schedule" gorm:"type:varchar(100);not null"` // cron expression
	NextRunAt  time.Time `json:"next_run_at" gorm:"index"`
	Active     bool      `json:"active" gorm:"default:true;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Category   Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
