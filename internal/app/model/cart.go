package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	Total     decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem identity is (cart, product, variant). VariantKey mirrors VariantID
// with 0 for "no variant" so the unique index also covers that case.
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CartID     uint      `gorm:"not null;uniqueIndex:idx_cart_items_identity,priority:1" json:"cart_id"`
	ProductID  uint      `gorm:"not null;index;uniqueIndex:idx_cart_items_identity,priority:2" json:"product_id"`
	VariantID  *uint     `gorm:"index" json:"variant_id,omitempty"`
	VariantKey uint      `gorm:"not null;default:0;uniqueIndex:idx_cart_items_identity,priority:3" json:"-"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Product Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	Variant *Variant `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE" json:"variant,omitempty"`

	// Derived on read
	UnitPrice decimal.Decimal `gorm:"-" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"-" json:"line_total"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func VariantKeyOf(variantID *uint) uint {
	if variantID == nil {
		return 0
	}
	return *variantID
}
