package handlers

import (
	"errors"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

type RecurringHandler struct {
	service *services.RecurringService
}

func NewRecurringHandler(cfg *config.Config) *RecurringHandler {
	return &RecurringHandler{service: services.NewRecurringService(cfg)}
}

type RecurringRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Kind       string `json:"kind" binding:"required,oneof=income expense"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Note       string `json:"note"`
	Schedule   string `json:"schedule" binding:"required"`
	Active     *bool  `json:"active"`
}

func (r *RecurringRequest) toData() services.CreateRecurringData {
	return services.CreateRecurringData{
		CategoryID: r.CategoryID,
		Kind:       r.Kind,
		Amount:     r.Amount,
		Note:       r.Note,
		Schedule:   r.Schedule,
	}
}

// List returns the user's recurring payments
func (h *RecurringHandler) List(c *gin.Context) {
	payments, err := h.service.List(c.GetUint("user_id"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to load recurring payments"})
		return
	}
	c.JSON(200, gin.H{"recurring": payments})
}

// Create registers a recurring payment
func (h *RecurringHandler) Create(c *gin.Context) {
	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	payment, err := h.service.Create(c.GetUint("user_id"), req.toData())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSchedule):
			c.JSON(400, gin.H{"error": "Invalid cron schedule"})
		case errors.Is(err, services.ErrCategoryNotFound):
			c.JSON(404, gin.H{"error": "Category not found"})
		default:
			c.JSON(500, gin.H{"error": "Failed to create recurring payment"})
		}
		return
	}

	c.JSON(201, payment)
}

// Update modifies a recurring payment
func (h *RecurringHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid recurring payment ID"})
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	payment, err := h.service.Update(c.GetUint("user_id"), id, req.toData(), active)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecurringNotFound):
			c.JSON(404, gin.H{"error": "Recurring payment not found"})
		case errors.Is(err, services.ErrInvalidSchedule):
			c.JSON(400, gin.H{"error": "Invalid cron schedule"})
		case errors.Is(err, services.ErrCategoryNotFound):
			c.JSON(404, gin.H{"error": "Category not found"})
		default:
			c.JSON(500, gin.H{"error": "Failed to update recurring payment"})
		}
		return
	}

	c.JSON(200, payment)
}

// Delete removes a recurring payment
func (h *RecurringHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid recurring payment ID"})
		return
	}

	if err := h.service.Delete(c.GetUint("user_id"), id); err != nil {
		if errors.Is(err, services.ErrRecurringNotFound) {
			c.JSON(404, gin.H{"error": "Recurring payment not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to delete recurring payment"})
		return
	}

	c.JSON(200, gin.H{"message": "Recurring payment deleted"})
}
