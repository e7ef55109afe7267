package handlers

import (
	"errors"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(cfg *config.Config) *CategoryHandler {
	return &CategoryHandler{service: services.NewCategoryService(cfg)}
}

type CategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Kind  string `json:"kind" binding:"required,oneof=income expense"`
	Color string `json:"color"`
}

type CategoryUpdateRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// List returns the user's categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.GetCategories(c.GetUint("user_id"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to load categories"})
		return
	}
	c.JSON(200, gin.H{"categories": categories})
}

// Create adds a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	category, err := h.service.CreateCategory(c.GetUint("user_id"), req.Name, req.Kind, req.Color)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(201, category)
}

// Update renames or recolors a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category ID"})
		return
	}

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	category, err := h.service.UpdateCategory(c.GetUint("user_id"), id, req.Name, req.Color)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(200, category)
}

// Delete removes a category unless transactions still reference it
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category ID"})
		return
	}

	if err := h.service.DeleteCategory(c.GetUint("user_id"), id); err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			c.JSON(404, gin.H{"error": "Category not found"})
		case errors.Is(err, services.ErrCategoryInUse):
			c.JSON(409, gin.H{"error": "Category is still used by transactions"})
		default:
			c.JSON(500, gin.H{"error": "Failed to delete category"})
		}
		return
	}

	c.JSON(200, gin.H{"message": "Category deleted"})
}
