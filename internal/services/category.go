package services

import (
	"errors"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is referenced by transactions")
	ErrInvalidKind      = errors.New("kind must be income or expense")
)

// defaultCategories are seeded for every new user.
var defaultCategories = []models.Category{
	{Name: "Salary", Kind: models.KindIncome, Color: "#2e7d32"},
	{Name: "Other Income", Kind: models.KindIncome, Color: "#558b2f"},
	{Name: "Groceries", Kind: models.KindExpense, Color: "#ef6c00"},
	{Name: "Housing", Kind: models.KindExpense, Color: "#6a1b9a"},
	{Name: "Transport", Kind: models.KindExpense, Color: "#1565c0"},
	{Name: "Entertainment", Kind: models.KindExpense, Color: "#c62828"},
	{Name: "Other", Kind: models.KindExpense, Color: "#616161"},
}

func seedDefaultCategories(tx *gorm.DB, userID uint) error {
	for _, c := range defaultCategories {
		c.UserID = userID
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

type CategoryService struct {
	cfg *config.Config
}

func NewCategoryService(cfg *config.Config) *CategoryService {
	return &CategoryService{cfg: cfg}
}

// GetCategories returns all categories for a user
func (s *CategoryService) GetCategories(userID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := models.DB.Where("user_id = ?", userID).Order("kind, name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory returns one of the user's categories by ID
func (s *CategoryService) GetCategory(userID, id uint) (*models.Category, error) {
	var category models.Category
	if err := models.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a category for a user
func (s *CategoryService) CreateCategory(userID uint, name, kind, color string) (*models.Category, error) {
	if kind != models.KindIncome && kind != models.KindExpense {
		return nil, ErrInvalidKind
	}
	category := &models.Category{
		UserID: userID,
		Name:   name,
		Kind:   kind,
		Color:  color,
	}
	if err := models.DB.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory updates name and color; kind is fixed once created
func (s *CategoryService) UpdateCategory(userID, id uint, name, color string) (*models.Category, error) {
	category, err := s.GetCategory(userID, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	category.Color = color
	if err := models.DB.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category unless transactions still reference it
func (s *CategoryService) DeleteCategory(userID, id uint) error {
	category, err := s.GetCategory(userID, id)
	if err != nil {
		return err
	}

	var count int64
	if err := models.DB.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	return models.DB.Delete(category).Error
}
