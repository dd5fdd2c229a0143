package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundStatusRequested RefundStatus = "REQUESTED"
	RefundStatusApproved  RefundStatus = "APPROVED"
	RefundStatusRejected  RefundStatus = "REJECTED"
	RefundStatusCompleted RefundStatus = "COMPLETED"
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundStatusRequested: {RefundStatusApproved, RefundStatusRejected},
	RefundStatusApproved:  {RefundStatusCompleted},
}

func (s RefundStatus) Valid() bool {
	switch s {
	case RefundStatusRequested, RefundStatusApproved, RefundStatusRejected, RefundStatusCompleted:
		return true
	}
	return false
}

func (s RefundStatus) CanTransitionTo(next RefundStatus) bool {
	for _, allowed := range refundTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Refund struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Status    RefundStatus    `gorm:"type:varchar(20);not null;default:'REQUESTED'" json:"status"`
	Reason    string          `gorm:"type:text" json:"reason,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

func (Refund) TableName() string {
	return "refunds"
}
