package handlers

import (
	"errors"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	service *services.GoalService
}

func NewGoalHandler(cfg *config.Config) *GoalHandler {
	return &GoalHandler{service: services.NewGoalService(cfg)}
}

type GoalRequest struct {
	Name         string `json:"name" binding:"required"`
	TargetAmount int64  `json:"target_amount" binding:"required,gt=0"`
	Deadline     string `json:"deadline"` // RFC 3339, optional
}

type ContributeRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

func (r *GoalRequest) toData() (services.CreateGoalData, error) {
	data := services.CreateGoalData{
		Name:         r.Name,
		TargetAmount: r.TargetAmount,
	}
	if r.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, r.Deadline)
		if err != nil {
			return data, errors.New("deadline must be RFC 3339")
		}
		data.Deadline = &deadline
	}
	return data, nil
}

type GoalResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	TargetAmount int64      `json:"target_amount"`
	SavedAmount  int64      `json:"saved_amount"`
	Achieved     bool       `json:"achieved"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// List returns the user's savings goals
func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.service.List(c.GetUint("user_id"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to load goals"})
		return
	}

	result := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		result = append(result, GoalResponse{
			ID:           g.ID,
			Name:         g.Name,
			TargetAmount: g.TargetAmount,
			SavedAmount:  g.SavedAmount,
			Achieved:     g.Achieved(),
			Deadline:     g.Deadline,
			CreatedAt:    g.CreatedAt,
		})
	}
	c.JSON(200, gin.H{"goals": result})
}

// Create adds a savings goal
func (h *GoalHandler) Create(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	data, err := req.toData()
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.service.Create(c.GetUint("user_id"), data)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(201, goal)
}

// Update modifies a goal
func (h *GoalHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid goal ID"})
		return
	}

	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	data, err := req.toData()
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.service.Update(c.GetUint("user_id"), id, data)
	if err != nil {
		if errors.Is(err, services.ErrGoalNotFound) {
			c.JSON(404, gin.H{"error": "Goal not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, goal)
}

// Contribute adds to a goal's saved amount
func (h *GoalHandler) Contribute(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid goal ID"})
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	goal, err := h.service.Contribute(c.GetUint("user_id"), id, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrGoalNotFound) {
			c.JSON(404, gin.H{"error": "Goal not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, GoalResponse{
		ID:           goal.ID,
		Name:         goal.Name,
		TargetAmount: goal.TargetAmount,
		SavedAmount:  goal.SavedAmount,
		Achieved:     goal.Achieved(),
		Deadline:     goal.Deadline,
		CreatedAt:    goal.CreatedAt,
	})
}

// Delete removes a goal
func (h *GoalHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid goal ID"})
		return
	}

	if err := h.service.Delete(c.GetUint("user_id"), id); err != nil {
		if errors.Is(err, services.ErrGoalNotFound) {
			c.JSON(404, gin.H{"error": "Goal not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to delete goal"})
		return
	}

	c.JSON(200, gin.H{"message": "Goal deleted"})
}
