package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productPageResponse struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

func registerCatalogRoutes(env *controllerEnv) {
	env.router.GET("/products", env.products.ListProducts)
	env.router.GET("/products/:id", env.products.GetProduct)
	env.router.GET("/categories", env.category.ListCategories)
	env.router.GET("/settings", env.config.GetSettings)

	admin := env.router.Group("/admin", as(1000, model.RoleAdmin))
	admin.POST("/products", env.products.CreateProduct)
	admin.PUT("/products/:id", env.products.UpdateProduct)
	admin.DELETE("/products/:id", env.products.DeleteProduct)
	admin.POST("/products/:id/variants", env.products.CreateVariant)
	admin.PUT("/variants/:id", env.products.UpdateVariant)
	admin.DELETE("/variants/:id", env.products.DeleteVariant)
	admin.POST("/categories", env.category.CreateCategory)
	admin.PUT("/categories/:id", env.category.UpdateCategory)
	admin.DELETE("/categories/:id", env.category.DeleteCategory)
	admin.PUT("/settings", env.config.UpdateSettings)
}

func TestProductController_ListAndGet(t *testing.T) {
	env := setupControllers(t)
	registerCatalogRoutes(env)
	env.createProduct(t, "Alpha Mug", "12", 3)
	env.createProduct(t, "Beta Mug", "8", 3)
	env.createProduct(t, "Gamma Shirt", "25", 3)

	w := env.do(t, http.MethodGet, "/products?search=mug&sort=price&order=asc&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page productPageResponse
	decodeBody(t, w, &page)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Beta Mug", page.Products[0].Title)
	assert.Equal(t, 10, page.Limit)

	w = env.do(t, http.MethodGet, "/products?sort=rating", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/products?category_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidID, errorCodeOf(t, w))

	w = env.do(t, http.MethodGet, fmt.Sprintf("/products/%d", page.Products[0].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ProductNotFound, errorCodeOf(t, w))
}

func TestProductController_AdminLifecycle(t *testing.T) {
	env := setupControllers(t)
	registerCatalogRoutes(env)

	w := env.do(t, http.MethodPost, "/admin/categories", gin.H{"name": "Home Goods"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category struct {
		Category model.Category `json:"category"`
	}
	decodeBody(t, w, &category)
	assert.Equal(t, "home-goods", category.Category.Slug)

	w = env.do(t, http.MethodPost, "/admin/products", gin.H{
		"title":            "Teapot",
		"price":            "40.00",
		"discounted_price": "35.50",
		"stock":            6,
		"category_id":      category.Category.ID,
		"variants":         []gin.H{{"size": "S", "sku": "TEA-S", "stock": 2, "price_diff": "-5"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Product model.Product `json:"product"`
	}
	decodeBody(t, w, &created)
	assert.True(t, created.Product.DiscountedPrice.Decimal.Equal(dec("35.5")))
	require.Len(t, created.Product.Variants, 1)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/admin/products/%d/variants", created.Product.ID), gin.H{"size": "M", "sku": "TEA-S", "stock": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.VariantSKUExists, errorCodeOf(t, w))

	w = env.do(t, http.MethodPut, fmt.Sprintf("/admin/variants/%d", created.Product.Variants[0].ID), gin.H{"size": "S", "sku": "TEA-S", "stock": 9, "price_diff": "0"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPut, fmt.Sprintf("/admin/products/%d", created.Product.ID), gin.H{"title": "Teapot XL", "price": "45", "stock": 6})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Product model.Product `json:"product"`
	}
	decodeBody(t, w, &updated)
	assert.Equal(t, "Teapot XL", updated.Product.Title)
	assert.False(t, updated.Product.DiscountedPrice.Valid)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, fmt.Sprintf("/admin/variants/%d", created.Product.Variants[0].ID), nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", category.Category.ID), nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, fmt.Sprintf("/admin/products/%d", created.Product.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/products/%d", created.Product.ID), nil).Code)
}

func TestProductController_CreateValidation(t *testing.T) {
	env := setupControllers(t)
	registerCatalogRoutes(env)

	tests := []struct {
		name  string
		body  gin.H
		field string
		code  string
	}{
		{"missing title", gin.H{"price": "10"}, "title", apperrors.ValidationInvalidInput},
		{"negative price", gin.H{"title": "Pen", "price": "-1"}, "price", apperrors.ValidationInvalidInput},
		{"negative stock", gin.H{"title": "Pen", "price": "1", "stock": -2}, "stock", apperrors.ValidationInvalidInput},
		{"discount above price", gin.H{"title": "Pen", "price": "1", "discounted_price": "2"}, "", apperrors.ProductInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/admin/products", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var body apperrors.ValidationError
			decodeBody(t, w, &body)
			assert.Equal(t, tt.code, body.Error)
			if tt.field != "" {
				assert.Contains(t, body.Fields, tt.field)
			}
		})
	}
}

func TestProductController_SingleProductMode(t *testing.T) {
	env := setupControllers(t)
	registerCatalogRoutes(env)
	featured := env.createProduct(t, "Featured", "99", 5)
	hidden := env.createProduct(t, "Hidden", "10", 5)

	w := env.do(t, http.MethodPut, "/admin/settings", gin.H{"store_mode": "single"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.StoreSingleProductRequired, errorCodeOf(t, w))

	w = env.do(t, http.MethodPut, "/admin/settings", gin.H{"store_mode": "single", "single_product_id": featured.ID, "tax_rate": "8.5", "currency": "eur"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var settings struct {
		Settings model.StoreSettings `json:"settings"`
	}
	decodeBody(t, env.do(t, http.MethodGet, "/settings", nil), &settings)
	assert.Equal(t, model.StoreModeSingle, settings.Settings.StoreMode)
	assert.Equal(t, "EUR", settings.Settings.Currency)

	var page productPageResponse
	decodeBody(t, env.do(t, http.MethodGet, "/products", nil), &page)
	require.Len(t, page.Products, 1)
	assert.Equal(t, featured.ID, page.Products[0].ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/products/%d", hidden.ID), nil).Code)

	w = env.do(t, http.MethodPost, "/admin/products", gin.H{"title": "Another", "price": "5"})
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, apperrors.StoreOperationBlocked, errorCodeOf(t, w))

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/products/%d", featured.ID), nil)
	assert.Equal(t, http.StatusLocked, w.Code)

	w = env.do(t, http.MethodPut, "/admin/settings", gin.H{"store_mode": "bazaar"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.StoreInvalidMode, errorCodeOf(t, w))
}
