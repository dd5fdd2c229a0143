package controller

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	couponCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)
	registerOnce      sync.Once
)

// RegisterValidators adds the decimal and coupon code tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("dgt0", decimalCompare(func(d decimal.Decimal) bool { return d.IsPositive() }))
		_ = v.RegisterValidation("dgte0", decimalCompare(func(d decimal.Decimal) bool { return !d.IsNegative() }))
		_ = v.RegisterValidation("couponcode", func(fl validator.FieldLevel) bool {
			return couponCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
}

func decimalCompare(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, isDecimal := fl.Field().Interface().(decimal.Decimal)
		if !isDecimal {
			return false
		}
		return ok(d)
	}
}

// validationFields flattens validator errors into field -> tag for the response.
func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "malformed request body"}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return fields
}
