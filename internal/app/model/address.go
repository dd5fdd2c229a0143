package model

import (
	"time"

	"gorm.io/gorm"
)

type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Label      string         `gorm:"size:100" json:"label"` // e.g. "home", "office"
	Recipient  string         `gorm:"size:100;not null" json:"recipient"`
	Phone      string         `gorm:"size:30;not null" json:"phone"`
	Line1      string         `gorm:"size:255;not null" json:"line1"`
	Line2      string         `gorm:"size:255" json:"line2"`
	City       string         `gorm:"size:100;not null" json:"city"`
	PostalCode string         `gorm:"size:20" json:"postal_code"`
	Country    string         `gorm:"size:2;not null" json:"country"`
	IsDefault  bool           `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a *Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
