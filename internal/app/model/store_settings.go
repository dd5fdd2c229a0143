package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type StoreMode string

const (
	StoreModeMulti  StoreMode = "multi"
	StoreModeSingle StoreMode = "single"
)

// StoreSettingsID is the primary key of the only settings row.
const StoreSettingsID uint = 1

type StoreSettings struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	StoreMode       StoreMode       `gorm:"type:varchar(10);not null;default:'multi'" json:"store_mode"`
	SingleProductID *uint           `json:"single_product_id,omitempty"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`        // percent of the discounted subtotal
	ShippingRate    decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"shipping_rate"` // flat amount per order
	Currency        string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (StoreSettings) TableName() string {
	return "store_settings"
}

func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		ID:           StoreSettingsID,
		StoreMode:    StoreModeMulti,
		TaxRate:      decimal.Zero,
		ShippingRate: decimal.Zero,
		Currency:     "USD",
	}
}

// IsSingleProduct is true only when single mode has a designated product.
func (s *StoreSettings) IsSingleProduct() bool {
	return s.StoreMode == StoreModeSingle && s.SingleProductID != nil
}
