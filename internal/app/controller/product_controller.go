package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

type ProductRequest struct {
	Title           string           `json:"title" binding:"required,max=255"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price" binding:"dgte0"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price" binding:"omitempty,dgte0"`
	Stock           int              `json:"stock" binding:"gte=0"`
	CategoryID      *uint            `json:"category_id"`
	Gallery         []string         `json:"gallery" binding:"omitempty,dive,required"`
	Variants        []VariantRequest `json:"variants" binding:"omitempty,dive"`
}

type VariantRequest struct {
	Size      *string         `json:"size" binding:"omitempty,max=50"`
	Color     *string         `json:"color" binding:"omitempty,max=50"`
	SKU       *string         `json:"sku" binding:"omitempty,max=100"`
	Stock     int             `json:"stock" binding:"gte=0"`
	PriceDiff decimal.Decimal `json:"price_diff"`
}

func (r VariantRequest) toInput() service.VariantInput {
	return service.VariantInput{
		Size:      r.Size,
		Color:     r.Color,
		SKU:       r.SKU,
		Stock:     r.Stock,
		PriceDiff: r.PriceDiff,
	}
}

func (r ProductRequest) toInput() service.ProductInput {
	variants := make([]service.VariantInput, 0, len(r.Variants))
	for _, v := range r.Variants {
		variants = append(variants, v.toInput())
	}
	return service.ProductInput{
		Title:           r.Title,
		Description:     r.Description,
		Price:           r.Price,
		DiscountedPrice: r.DiscountedPrice,
		Stock:           r.Stock,
		CategoryID:      r.CategoryID,
		Gallery:         r.Gallery,
		Variants:        variants,
	}
}

// ListProducts returns a page of products
// GET /api/v1/products?search=&category_id=&sort=price|name|createdAt&order=asc|desc&page=&limit=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	query := service.ProductListQuery{
		Search: c.Query("search"),
		SortBy: c.Query("sort"),
		Order:  c.Query("order"),
		Page:   parseIntQuery(c, "page"),
		Limit:  parseIntQuery(c, "limit"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid category_id")
			return
		}
		categoryID := uint(id)
		query.CategoryID = &categoryID
	}

	page, err := ctrl.productService.ListProducts(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "list products", nil)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProduct returns a single product with its variants
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "fetch product", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct creates a product (admin)
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err, "create product", map[string]interface{}{"title": req.Title})
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct replaces a product's editable fields (admin)
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err, "update product", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product (admin)
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete product", map[string]interface{}{"product_id": id})
		return
	}

	log.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	c.Status(http.StatusNoContent)
}

// CreateVariant adds a variant to a product (admin)
// POST /api/v1/admin/products/:id/variants
func (ctrl *ProductController) CreateVariant(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	variant, err := ctrl.productService.CreateVariant(c.Request.Context(), productID, req.toInput())
	if err != nil {
		respondError(c, err, "create variant", map[string]interface{}{"product_id": productID})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"variant": variant})
}

// UpdateVariant PUT /api/v1/admin/variants/:id
func (ctrl *ProductController) UpdateVariant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	variant, err := ctrl.productService.UpdateVariant(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondError(c, err, "update variant", map[string]interface{}{"variant_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"variant": variant})
}

// DeleteVariant DELETE /api/v1/admin/variants/:id
func (ctrl *ProductController) DeleteVariant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteVariant(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete variant", map[string]interface{}{"variant_id": id})
		return
	}

	c.Status(http.StatusNoContent)
}
