package handlers

import (
	"errors"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

type BudgetHandler struct {
	service *services.BudgetService
}

func NewBudgetHandler(cfg *config.Config) *BudgetHandler {
	return &BudgetHandler{service: services.NewBudgetService(cfg)}
}

type BudgetRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Month      string `json:"month" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

// List returns the user's budgets, optionally restricted to a month
func (h *BudgetHandler) List(c *gin.Context) {
	budgets, err := h.service.List(c.GetUint("user_id"), c.Query("month"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to load budgets"})
		return
	}
	c.JSON(200, gin.H{"budgets": budgets})
}

// Set creates or updates a budget for (category, month)
func (h *BudgetHandler) Set(c *gin.Context) {
	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	budget, err := h.service.Set(c.GetUint("user_id"), req.CategoryID, req.Month, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, budget)
}

// Delete removes a budget
func (h *BudgetHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid budget ID"})
		return
	}

	if err := h.service.Delete(c.GetUint("user_id"), id); err != nil {
		if errors.Is(err, services.ErrBudgetNotFound) {
			c.JSON(404, gin.H{"error": "Budget not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to delete budget"})
		return
	}

	c.JSON(200, gin.H{"message": "Budget deleted"})
}

// Status returns each budget for the month joined with actual spending;
// month defaults to the current one
func (h *BudgetHandler) Status(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	statuses, err := h.service.Status(c.GetUint("user_id"), month)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"month": month, "budgets": statuses})
}
