package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	service *services.TransactionService
}

func NewTransactionHandler(cfg *config.Config) *TransactionHandler {
	return &TransactionHandler{service: services.NewTransactionService(cfg)}
}

type TransactionRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Kind       string `json:"kind" binding:"required,oneof=income expense"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Note       string `json:"note"`
	OccurredAt string `json:"occurred_at"` // RFC 3339; defaults to now
}

func (r *TransactionRequest) toData() (services.CreateTransactionData, error) {
	data := services.CreateTransactionData{
		CategoryID: r.CategoryID,
		Kind:       r.Kind,
		Amount:     r.Amount,
		Note:       r.Note,
	}
	if r.OccurredAt != "" {
		occurredAt, err := time.Parse(time.RFC3339, r.OccurredAt)
		if err != nil {
			return data, errors.New("occurred_at must be RFC 3339")
		}
		data.OccurredAt = occurredAt
	}
	return data, nil
}

// List returns the user's transactions, filtered by query parameters
func (h *TransactionHandler) List(c *gin.Context) {
	userID := c.GetUint("user_id")

	filter := services.TransactionFilter{
		Kind:  c.Query("kind"),
		Month: c.Query("month"),
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid category_id"})
			return
		}
		filter.CategoryID = uint(id)
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := c.Query("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	transactions, err := h.service.List(userID, filter)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"transactions": transactions})
}

// Get returns a single transaction
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid transaction ID"})
		return
	}

	tx, err := h.service.Get(userID, id)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			c.JSON(404, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to load transaction"})
		return
	}

	c.JSON(200, tx)
}

// Create records a new transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	data, err := req.toData()
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.Create(userID, data)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to create transaction"})
		return
	}

	c.JSON(201, tx)
}

// Update modifies an existing transaction
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid transaction ID"})
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	data, err := req.toData()
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.Update(userID, id, data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotFound):
			c.JSON(404, gin.H{"error": "Transaction not found"})
		case errors.Is(err, services.ErrCategoryNotFound):
			c.JSON(404, gin.H{"error": "Category not found"})
		default:
			c.JSON(500, gin.H{"error": "Failed to update transaction"})
		}
		return
	}

	c.JSON(200, tx)
}

// Delete removes a transaction
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid transaction ID"})
		return
	}

	if err := h.service.Delete(userID, id); err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			c.JSON(404, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to delete transaction"})
		return
	}

	c.JSON(200, gin.H{"message": "Transaction deleted"})
}

// Summary returns the month's aggregated totals; month defaults to the
// current one
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID := c.GetUint("user_id")

	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	summary, err := h.service.MonthSummary(userID, month)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, summary)
}

// parseID reads the :id route parameter
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
