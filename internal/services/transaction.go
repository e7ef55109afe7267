package services

import (
	"errors"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionService struct {
	cfg *config.Config
}

func NewTransactionService(cfg *config.Config) *TransactionService {
	return &TransactionService{cfg: cfg}
}

// TransactionFilter narrows List results. Zero values mean "no filter".
type TransactionFilter struct {
	Kind       string
	CategoryID uint
	Month      string // YYYY-MM
	Limit      int
	Offset     int
}

// CreateTransactionData carries the fields accepted on create/update.
type CreateTransactionData struct {
	CategoryID uint
	Kind       string
	Amount     int64
	Note       string
	OccurredAt time.Time
}

// Summary aggregates a user's month: totals in minor units.
type Summary struct {
	Month      string             `json:"month"`
	Income     int64              `json:"income"`
	Expenses   int64              `json:"expenses"`
	Net        int64              `json:"net"`
	ByCategory []CategorySpending `json:"by_category"`
}

type CategorySpending struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int64  `json:"total"`
}

// List returns the user's transactions, newest first, honoring the filter
func (s *TransactionService) List(userID uint, filter TransactionFilter) ([]models.Transaction, error) {
	q := models.DB.Where("user_id = ?", userID).Preload("Category")

	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Month != "" {
		start, end, err := monthBounds(filter.Month)
		if err != nil {
			return nil, err
		}
		q = q.Where("occurred_at >= ? AND occurred_at < ?", start, end)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var transactions []models.Transaction
	if err := q.Order("occurred_at DESC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Get returns one of the user's transactions by ID
func (s *TransactionService) Get(userID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := models.DB.Where("id = ? AND user_id = ?", id, userID).Preload("Category").First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// Create records a transaction against one of the user's categories
func (s *TransactionService) Create(userID uint, data CreateTransactionData) (*models.Transaction, error) {
	if data.Kind != models.KindIncome && data.Kind != models.KindExpense {
		return nil, ErrInvalidKind
	}

	// category must belong to the same user
	var category models.Category
	if err := models.DB.Where("id = ? AND user_id = ?", data.CategoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	occurredAt := data.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	tx := &models.Transaction{
		UserID:     userID,
		CategoryID: data.CategoryID,
		Kind:       data.Kind,
		Amount:     data.Amount,
		Note:       data.Note,
		OccurredAt: occurredAt,
	}
	if err := models.DB.Create(tx).Error; err != nil {
		return nil, err
	}
	tx.Category = category
	return tx, nil
}

// Update modifies an existing transaction
func (s *TransactionService) Update(userID, id uint, data CreateTransactionData) (*models.Transaction, error) {
	tx, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if data.Kind != models.KindIncome && data.Kind != models.KindExpense {
		return nil, ErrInvalidKind
	}
	if data.CategoryID != tx.CategoryID {
		var category models.Category
		if err := models.DB.Where("id = ? AND user_id = ?", data.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		tx.Category = category
	}

	tx.CategoryID = data.CategoryID
	tx.Kind = data.Kind
	tx.Amount = data.Amount
	tx.Note = data.Note
	if !data.OccurredAt.IsZero() {
		tx.OccurredAt = data.OccurredAt
	}

	if err := models.DB.Save(tx).Error; err != nil {
		return nil, err
	}
	return tx, nil
}

// Delete removes one of the user's transactions
func (s *TransactionService) Delete(userID, id uint) error {
	tx, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return models.DB.Delete(tx).Error
}

// MonthSummary aggregates income, expenses and per-category expense totals
// for one calendar month.
func (s *TransactionService) MonthSummary(userID uint, month string) (*Summary, error) {
	start, end, err := monthBounds(month)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Month: month, ByCategory: []CategorySpending{}}

	type kindTotal struct {
		Kind  string
		Total int64
	}
	var kindTotals []kindTotal
	err = models.DB.Model(&models.Transaction{}).
		Select("kind, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, start, end).
		Group("kind").
		Scan(&kindTotals).Error
	if err != nil {
		return nil, err
	}
	for _, kt := range kindTotals {
		switch kt.Kind {
		case models.KindIncome:
			summary.Income = kt.Total
		case models.KindExpense:
			summary.Expenses = kt.Total
		}
	}
	summary.Net = summary.Income - summary.Expenses

	err = models.DB.Model(&models.Transaction{}).
		Select("transactions.category_id, categories.name AS category_name, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.kind = ? AND transactions.occurred_at >= ? AND transactions.occurred_at < ?",
			userID, models.KindExpense, start, end).
		Group("transactions.category_id, categories.name").
		Order("total DESC").
		Scan(&summary.ByCategory).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// monthBounds parses YYYY-MM into its [start, end) interval
func monthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("month must be in YYYY-MM format")
	}
	return start, start.AddDate(0, 1, 0), nil
}
