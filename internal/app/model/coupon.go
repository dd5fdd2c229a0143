package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	Code        string              `gorm:"size:32;not null;uniqueIndex" json:"code"`
	Description string              `gorm:"size:255" json:"description"`
	Discount    decimal.Decimal     `gorm:"type:decimal(16,2);not null" json:"discount"` // amount when IsFlat, otherwise percent
	IsFlat      bool                `gorm:"not null;default:false" json:"is_flat"`
	ExpiryDate  time.Time           `gorm:"not null" json:"expiry_date"`
	UsageLimit  *int                `json:"usage_limit,omitempty"` // nil means unlimited
	UsageCount  int                 `gorm:"not null;default:0" json:"usage_count"`
	MinTotal    decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"min_total"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}
