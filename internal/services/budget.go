package services

import (
	"errors"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"gorm.io/gorm"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetService struct {
	cfg *config.Config
}

func NewBudgetService(cfg *config.Config) *BudgetService {
	return &BudgetService{cfg: cfg}
}

// BudgetStatus is a budget joined with the month's actual spending.
type BudgetStatus struct {
	Budget    models.Budget `json:"budget"`
	Spent     int64         `json:"spent"`
	Remaining int64         `json:"remaining"`
	Over      bool          `json:"over"`
}

// List returns a user's budgets for a month
func (s *BudgetService) List(userID uint, month string) ([]models.Budget, error) {
	q := models.DB.Where("user_id = ?", userID).Preload("Category")
	if month != "" {
		q = q.Where("month = ?", month)
	}
	var budgets []models.Budget
	if err := q.Order("month DESC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// Set creates or updates the budget for (category, month)
func (s *BudgetService) Set(userID, categoryID uint, month string, amount int64) (*models.Budget, error) {
	if _, _, err := monthBounds(month); err != nil {
		return nil, err
	}

	// category must belong to the user
	var category models.Category
	if err := models.DB.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	var budget models.Budget
	err := models.DB.Where("user_id = ? AND category_id = ? AND month = ?", userID, categoryID, month).First(&budget).Error
	switch {
	case err == nil:
		budget.Amount = amount
		if err := models.DB.Save(&budget).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		budget = models.Budget{
			UserID:     userID,
			CategoryID: categoryID,
			Month:      month,
			Amount:     amount,
		}
		if err := models.DB.Create(&budget).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	budget.Category = category
	return &budget, nil
}

// Delete removes a budget
func (s *BudgetService) Delete(userID, id uint) error {
	var budget models.Budget
	if err := models.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBudgetNotFound
		}
		return err
	}
	return models.DB.Delete(&budget).Error
}

// Status joins each budget for the month with the spend recorded against its
// category in that month.
func (s *BudgetService) Status(userID uint, month string) ([]BudgetStatus, error) {
	start, end, err := monthBounds(month)
	if err != nil {
		return nil, err
	}

	budgets, err := s.List(userID, month)
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		var spent int64
		err := models.DB.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ? AND category_id = ? AND kind = ? AND occurred_at >= ? AND occurred_at < ?",
				userID, b.CategoryID, models.KindExpense, start, end).
			Scan(&spent).Error
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, BudgetStatus{
			Budget:    b,
			Spent:     spent,
			Remaining: b.Amount - spent,
			Over:      spent > b.Amount,
		})
	}
	return statuses, nil
}
