package service

import (
	"context"
	"testing"
	"time"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_DefaultsAndCache(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	settings, err := env.settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StoreModeMulti, settings.StoreMode)
	assert.Equal(t, "USD", settings.Currency)

	// a write behind the service's back stays invisible until invalidation
	require.NoError(t, env.db.Model(&model.StoreSettings{}).Where("id = ?", model.StoreSettingsID).
		Update("currency", "EUR").Error)
	cached, err := env.settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", cached.Currency)
}

func TestSettingsService_UpdateSettings(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	product := env.createProduct(t, "Only Thing", "10", 5)

	t.Run("single mode requires a product", func(t *testing.T) {
		_, err := env.settings.UpdateSettings(ctx, UpdateSettingsInput{StoreMode: model.StoreModeSingle})
		assert.ErrorIs(t, err, ErrSingleProductRequired)
	})

	t.Run("single product must exist", func(t *testing.T) {
		missing := uint(9999)
		_, err := env.settings.UpdateSettings(ctx, UpdateSettingsInput{StoreMode: model.StoreModeSingle, SingleProductID: &missing})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := env.settings.UpdateSettings(ctx, UpdateSettingsInput{StoreMode: "solo"})
		assert.ErrorIs(t, err, ErrInvalidStoreMode)
	})

	t.Run("tax above 100", func(t *testing.T) {
		_, err := env.settings.UpdateSettings(ctx, UpdateSettingsInput{StoreMode: model.StoreModeMulti, TaxRate: dec("101")})
		assert.ErrorIs(t, err, ErrInvalidRates)
	})

	t.Run("switch to single and back", func(t *testing.T) {
		updated, err := env.settings.UpdateSettings(ctx, UpdateSettingsInput{
			StoreMode:       model.StoreModeSingle,
			SingleProductID: &product.ID,
			TaxRate:         dec("8.25"),
			ShippingRate:    dec("5"),
			Currency:        "eur",
		})
		require.NoError(t, err)
		assert.Equal(t, "EUR", updated.Currency)

		single, err := env.settings.IsSingleProductMode(ctx)
		require.NoError(t, err)
		assert.True(t, single)
		id, err := env.settings.SingleProductID(ctx)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, product.ID, *id)

		// the product id is dropped outside single mode
		updated, err = env.settings.UpdateSettings(ctx, UpdateSettingsInput{
			StoreMode:       model.StoreModeMulti,
			SingleProductID: &product.ID,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.SingleProductID)
		assert.Equal(t, "EUR", updated.Currency, "empty currency keeps the current one")

		fresh, err := env.settings.GetSettings(ctx)
		require.NoError(t, err)
		assert.Nil(t, fresh.SingleProductID)
		assert.True(t, fresh.TaxRate.IsZero())
	})
}

func TestMemorySettingsCache_Expires(t *testing.T) {
	cache := NewMemorySettingsCache(time.Minute).(*memorySettingsCache)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	settings := model.DefaultStoreSettings()
	_, gen, ok := cache.Get(ctx)
	require.False(t, ok)
	cache.Set(ctx, &settings, gen)

	got, _, ok := cache.Get(ctx)
	require.True(t, ok)
	got.Currency = "GBP"
	again, _, _ := cache.Get(ctx)
	assert.Equal(t, "USD", again.Currency, "callers get a copy")

	now = now.Add(time.Minute)
	_, gen, ok = cache.Get(ctx)
	assert.False(t, ok)

	cache.Set(ctx, &settings, gen)
	cache.Invalidate(ctx)
	_, _, ok = cache.Get(ctx)
	assert.False(t, ok)
}

func TestMemorySettingsCache_StaleSetAfterInvalidate(t *testing.T) {
	cache := NewMemorySettingsCache(time.Hour)
	ctx := context.Background()

	// A reader misses and loads the old row while an admin write lands.
	_, gen, ok := cache.Get(ctx)
	require.False(t, ok)
	stale := model.DefaultStoreSettings()
	cache.Invalidate(ctx)
	cache.Set(ctx, &stale, gen)

	_, fresh, ok := cache.Get(ctx)
	assert.False(t, ok, "stale row must not be cached")
	assert.NotEqual(t, gen, fresh)

	updated := model.DefaultStoreSettings()
	updated.Currency = "EUR"
	cache.Set(ctx, &updated, fresh)
	got, _, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "EUR", got.Currency)
}

// racingCache interleaves an admin write between a reader's miss and its fill.
type racingCache struct {
	SettingsCache
	onSet func()
}

func (c *racingCache) Set(ctx context.Context, settings *model.StoreSettings, generation uint64) {
	if c.onSet != nil {
		hook := c.onSet
		c.onSet = nil
		hook()
	}
	c.SettingsCache.Set(ctx, settings, generation)
}

func TestSettingsService_ReadRacingUpdateDoesNotCacheOldRow(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	cache := &racingCache{SettingsCache: NewMemorySettingsCache(time.Hour)}
	svc := NewSettingsService(repository.NewSettingsRepository(env.db), repository.NewProductRepository(env.db), cache)

	cache.onSet = func() {
		_, err := svc.UpdateSettings(ctx, UpdateSettingsInput{StoreMode: model.StoreModeMulti, TaxRate: dec("8")})
		require.NoError(t, err)
	}
	first, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, first.TaxRate.IsZero(), "the racing read returns what it loaded")

	second, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, second.TaxRate.Equal(dec("8")), "tax %s", second.TaxRate)
}
