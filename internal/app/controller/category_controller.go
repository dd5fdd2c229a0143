package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// ListCategories GET /api/v1/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		respondError(c, err, "list categories", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// GetCategory GET /api/v1/categories/:id
func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := ctrl.categoryService.GetCategory(id)
	if err != nil {
		respondError(c, err, "fetch category", map[string]interface{}{"category_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory POST /api/v1/admin/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := ctrl.categoryService.CreateCategory(service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, "create category", map[string]interface{}{"name": req.Name})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory PUT /api/v1/admin/categories/:id
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := ctrl.categoryService.UpdateCategory(id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, "update category", map[string]interface{}{"category_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory detaches the category's products and removes it
// DELETE /api/v1/admin/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.categoryService.DeleteCategory(id); err != nil {
		respondError(c, err, "delete category", map[string]interface{}{"category_id": id})
		return
	}
	c.Status(http.StatusNoContent)
}
