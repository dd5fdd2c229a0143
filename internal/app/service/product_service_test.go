package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func enableSingleMode(t *testing.T, env *testEnv, productID uint) {
	t.Helper()
	_, err := env.settings.UpdateSettings(context.Background(), UpdateSettingsInput{
		StoreMode:       model.StoreModeSingle,
		SingleProductID: &productID,
	})
	require.NoError(t, err)
}

func TestProductService_SingleProductGating(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p1 := env.createProduct(t, "Designated", "10", 5)
	p2 := env.createProduct(t, "Other", "20", 5)
	enableSingleMode(t, env, p1.ID)

	t.Run("get of another product is not found", func(t *testing.T) {
		_, err := env.products.GetProduct(ctx, p2.ID)
		assert.ErrorIs(t, err, ErrProductNotFound)

		found, err := env.products.GetProduct(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, p1.ID, found.ID)
	})

	t.Run("list ignores filters and paging", func(t *testing.T) {
		page, err := env.products.ListProducts(ctx, ProductListQuery{Search: "other", Page: 3, Limit: 1, SortBy: "price"})
		require.NoError(t, err)
		require.Len(t, page.Products, 1)
		assert.Equal(t, p1.ID, page.Products[0].ID)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("create is blocked", func(t *testing.T) {
		_, err := env.products.CreateProduct(ctx, ProductInput{Title: "New", Price: dec("1")})
		assert.ErrorIs(t, err, ErrSingleModeCreate)
	})

	t.Run("update of another product is not found", func(t *testing.T) {
		_, err := env.products.UpdateProduct(ctx, p2.ID, ProductInput{Title: "Renamed", Price: dec("1")})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("deleting the designated product is blocked", func(t *testing.T) {
		assert.ErrorIs(t, env.products.DeleteProduct(ctx, p1.ID), ErrSingleModeDelete)
	})
}

func TestProductService_ListProducts(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	for _, title := range []string{"Alpha", "Bravo", "Charlie"} {
		env.createProduct(t, title, "10", 1)
	}

	page, err := env.products.ListProducts(ctx, ProductListQuery{SortBy: "name", Order: "asc", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Charlie", page.Products[0].Title)

	page, err = env.products.ListProducts(ctx, ProductListQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, page.Limit)

	_, err = env.products.ListProducts(ctx, ProductListQuery{SortBy: "popularity"})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestProductService_CreateAndUpdate(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	category, err := env.category.CreateCategory(CategoryInput{Name: "Tees"})
	require.NoError(t, err)

	sku := "TEE-M"
	size := "M"
	discounted := dec("15")
	created, err := env.products.CreateProduct(ctx, ProductInput{
		Title:           "  Tee  ",
		Price:           dec("20"),
		DiscountedPrice: &discounted,
		Stock:           4,
		CategoryID:      &category.ID,
		Gallery:         []string{"a.jpg", "b.jpg"},
		Variants:        []VariantInput{{Size: &size, SKU: &sku, Stock: 2, PriceDiff: dec("2")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tee", created.Title)
	require.Len(t, created.Variants, 1)
	require.NotNil(t, created.Category)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, []string(created.Gallery))

	t.Run("discount above price", func(t *testing.T) {
		tooHigh := dec("25")
		_, err := env.products.UpdateProduct(ctx, created.ID, ProductInput{Title: "Tee", Price: dec("20"), DiscountedPrice: &tooHigh})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("unknown category", func(t *testing.T) {
		missing := uint(999)
		_, err := env.products.UpdateProduct(ctx, created.ID, ProductInput{Title: "Tee", Price: dec("20"), CategoryID: &missing})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("variant may not go below zero", func(t *testing.T) {
		_, err := env.products.CreateVariant(ctx, created.ID, VariantInput{PriceDiff: dec("-16")})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("duplicate sku is rejected", func(t *testing.T) {
		_, err := env.products.CreateVariant(ctx, created.ID, VariantInput{SKU: &sku})
		assert.Error(t, err)
	})

	t.Run("update clears the discount", func(t *testing.T) {
		updated, err := env.products.UpdateProduct(ctx, created.ID, ProductInput{Title: "Tee v2", Price: dec("18"), Stock: 9})
		require.NoError(t, err)
		assert.Equal(t, "Tee v2", updated.Title)
		assert.False(t, updated.DiscountedPrice.Valid)
		assert.True(t, updated.BasePrice().Equal(dec("18")))
		assert.Nil(t, updated.CategoryID)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.createUser(t, "buyer@example.com")
	sold := env.createProduct(t, "Sold", "10", 5)
	unsold := env.createProduct(t, "Unsold", "10", 5)

	_, err := env.orders.CreateOrder(ctx, user.ID, CreateOrderInput{
		Items:   []OrderItemInput{{ProductID: sold.ID, Quantity: 1}},
		Address: testAddress(),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, env.products.DeleteProduct(ctx, sold.ID), ErrProductInUse)
	assert.NoError(t, env.products.DeleteProduct(ctx, unsold.ID))
	assert.ErrorIs(t, env.products.DeleteProduct(ctx, unsold.ID), ErrProductNotFound)
}

func TestProductService_DeleteProductRollsBack(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.createUser(t, "buyer@example.com")
	product := env.createProduct(t, "Hat", "10", 5)
	variant := env.createVariant(t, product, "M", "0", 3)

	_, err := env.carts.AddItem(ctx, user.ID, product.ID, &variant.ID, 1)
	require.NoError(t, err)

	// Fail the final product row delete after the cart lines and variants are gone.
	require.NoError(t, env.db.Callback().Delete().Before("gorm:delete").Register("test:fail_product_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))
	assert.Error(t, env.products.DeleteProduct(ctx, product.ID))
	require.NoError(t, env.db.Callback().Delete().Remove("test:fail_product_delete"))

	var variants, lines int64
	require.NoError(t, env.db.Model(&model.Variant{}).Where("product_id = ?", product.ID).Count(&variants).Error)
	require.NoError(t, env.db.Model(&model.CartItem{}).Where("product_id = ?", product.ID).Count(&lines).Error)
	assert.Equal(t, int64(1), variants)
	assert.Equal(t, int64(1), lines)

	require.NoError(t, env.products.DeleteProduct(ctx, product.ID))
	require.NoError(t, env.db.Model(&model.Variant{}).Where("product_id = ?", product.ID).Count(&variants).Error)
	assert.Zero(t, variants)
}

func TestProductService_Variants(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	product := env.createProduct(t, "Cap", "12", 0)

	color := "Red"
	variant, err := env.products.CreateVariant(ctx, product.ID, VariantInput{Color: &color, Stock: 3, PriceDiff: dec("1.50")})
	require.NoError(t, err)
	assert.Equal(t, "Red", variant.Label())

	updated, err := env.products.UpdateVariant(ctx, variant.ID, VariantInput{Color: &color, Stock: 7, PriceDiff: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)
	assert.True(t, updated.PriceDiff.IsZero())

	require.NoError(t, env.products.DeleteVariant(ctx, variant.ID))
	assert.ErrorIs(t, env.products.DeleteVariant(ctx, variant.ID), ErrVariantNotFound)
}
