package service

import (
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// UnitPrice is (discounted ?? price) + variant.priceDiff, never below zero.
func UnitPrice(product *model.Product, variant *model.Variant) decimal.Decimal {
	price := product.BasePrice()
	if variant != nil {
		price = price.Add(variant.PriceDiff)
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// PriceCartItems fills UnitPrice and LineTotal on every item from its loaded
// product and variant and returns the sum of the line totals.
func PriceCartItems(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		item := &items[i]
		item.UnitPrice = UnitPrice(&item.Product, item.Variant)
		item.LineTotal = LineTotal(item.UnitPrice, item.Quantity)
		total = total.Add(item.LineTotal)
	}
	return total
}

// CouponDiscount is the amount a coupon takes off total. Flat discounts are
// capped at the total; percentages are rounded to cents.
func CouponDiscount(coupon *model.Coupon, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	if coupon.IsFlat {
		return decimal.Min(coupon.Discount, total)
	}
	discount := total.Mul(coupon.Discount).Div(hundred).Round(2)
	return decimal.Min(discount, total)
}

// FinalTotal floors total - discount at zero.
func FinalTotal(total, discount decimal.Decimal) decimal.Decimal {
	final := total.Sub(discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// Tax applies a percentage rate to the discounted subtotal.
func Tax(taxable, ratePercent decimal.Decimal) decimal.Decimal {
	if !taxable.IsPositive() || !ratePercent.IsPositive() {
		return decimal.Zero
	}
	return taxable.Mul(ratePercent).Div(hundred).Round(2)
}

// OrderTotals is the breakdown persisted on an order.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

func ComputeOrderTotals(subtotal, discount decimal.Decimal, settings *model.StoreSettings) OrderTotals {
	taxable := FinalTotal(subtotal, discount)
	tax := Tax(taxable, settings.TaxRate)
	shipping := settings.ShippingRate
	return OrderTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: shipping,
		Total:    taxable.Add(tax).Add(shipping),
	}
}
