package model

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ImageRefs is an ordered list of image references. Postgres stores it as text[].
type ImageRefs pq.StringArray

func (r ImageRefs) Value() (driver.Value, error) {
	return pq.StringArray(r).Value()
}

func (r *ImageRefs) Scan(src interface{}) error {
	return (*pq.StringArray)(r).Scan(src)
}

func (ImageRefs) GormDataType() string {
	return "text[]"
}

func (ImageRefs) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

type Product struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	Title           string              `gorm:"size:255;not null;index" json:"title"`
	Description     string              `gorm:"type:text" json:"description"`
	Price           decimal.Decimal     `gorm:"type:decimal(16,2);not null" json:"price"`
	DiscountedPrice decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"discounted_price"` // nil when not on sale
	Stock           int                 `gorm:"not null;default:0" json:"stock"`
	CategoryID      *uint               `gorm:"index" json:"category_id,omitempty"`
	Gallery         ImageRefs           `json:"gallery"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// BasePrice is the discounted price when set, otherwise the list price.
func (p *Product) BasePrice() decimal.Decimal {
	if p.DiscountedPrice.Valid {
		return p.DiscountedPrice.Decimal
	}
	return p.Price
}

type Variant struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Size      *string         `gorm:"size:50" json:"size,omitempty"`
	Color     *string         `gorm:"size:50" json:"color,omitempty"`
	SKU       *string         `gorm:"size:100;uniqueIndex" json:"sku,omitempty"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	PriceDiff decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"price_diff"` // signed offset on the product base price
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Variant) TableName() string {
	return "variants"
}

// Label renders size and color for order snapshots.
func (v *Variant) Label() string {
	label := ""
	if v.Size != nil {
		label = *v.Size
	}
	if v.Color != nil {
		if label != "" {
			label += " / "
		}
		label += *v.Color
	}
	return label
}
