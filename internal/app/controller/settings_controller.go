package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type SettingsController struct {
	settingsService service.SettingsService
}

func NewSettingsController(settingsService service.SettingsService) *SettingsController {
	return &SettingsController{settingsService: settingsService}
}

type UpdateSettingsRequest struct {
	StoreMode       string          `json:"store_mode" binding:"required"`
	SingleProductID *uint           `json:"single_product_id"`
	TaxRate         decimal.Decimal `json:"tax_rate" binding:"dgte0"`
	ShippingRate    decimal.Decimal `json:"shipping_rate" binding:"dgte0"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
}

// GetSettings returns the store configuration
// GET /api/v1/settings
func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	settings, err := ctrl.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err, "fetch settings", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings replaces the store configuration (admin)
// PUT /api/v1/admin/settings
func (ctrl *SettingsController) UpdateSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	settings, err := ctrl.settingsService.UpdateSettings(c.Request.Context(), service.UpdateSettingsInput{
		StoreMode:       model.StoreMode(strings.ToLower(req.StoreMode)),
		SingleProductID: req.SingleProductID,
		TaxRate:         req.TaxRate,
		ShippingRate:    req.ShippingRate,
		Currency:        req.Currency,
	})
	if err != nil {
		respondError(c, err, "update settings", map[string]interface{}{
			"store_mode": req.StoreMode,
		})
		return
	}

	log.Info("Store settings updated", map[string]interface{}{
		"store_mode":        settings.StoreMode,
		"single_product_id": settings.SingleProductID,
	})
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
