package services

import (
	"errors"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"gorm.io/gorm"
)

var (
	ErrGoalNotFound  = errors.New("savings goal not found")
	ErrInvalidAmount = errors.New("amount must be positive")
)

type GoalService struct {
	cfg *config.Config
}

func NewGoalService(cfg *config.Config) *GoalService {
	return &GoalService{cfg: cfg}
}

// CreateGoalData carries the fields accepted on create/update.
type CreateGoalData struct {
	Name         string
	TargetAmount int64
	Deadline     *time.Time
}

// List returns the user's savings goals
func (s *GoalService) List(userID uint) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := models.DB.Where("user_id = ?", userID).Order("created_at").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// Get returns one of the user's goals by ID
func (s *GoalService) Get(userID, id uint) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := models.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// Create creates a savings goal
func (s *GoalService) Create(userID uint, data CreateGoalData) (*models.SavingsGoal, error) {
	if data.TargetAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	goal := &models.SavingsGoal{
		UserID:       userID,
		Name:         data.Name,
		TargetAmount: data.TargetAmount,
		Deadline:     data.Deadline,
	}
	if err := models.DB.Create(goal).Error; err != nil {
		return nil, err
	}
	return goal, nil
}

// Update modifies a goal's name, target and deadline
func (s *GoalService) Update(userID, id uint, data CreateGoalData) (*models.SavingsGoal, error) {
	goal, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if data.TargetAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	goal.Name = data.Name
	goal.TargetAmount = data.TargetAmount
	goal.Deadline = data.Deadline
	if err := models.DB.Save(goal).Error; err != nil {
		return nil, err
	}
	return goal, nil
}

// Contribute adds to a goal's saved amount
func (s *GoalService) Contribute(userID, id uint, amount int64) (*models.SavingsGoal, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	goal, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	goal.SavedAmount += amount
	if err := models.DB.Save(goal).Error; err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal
func (s *GoalService) Delete(userID, id uint) error {
	goal, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return models.DB.Delete(goal).Error
}
