package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a response-ready code, message and kind derived from an arbitrary error.
type ErrorInfo struct {
	Kind    Kind
	Code    string
	Message string
}

// ParseError converts an error into a client-safe ErrorInfo. AppErrors pass
// through unchanged; gorm and driver errors are classified by inspection so
// constraint details never leak to the client.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Kind: KindInternal, Code: InternalServerError, Message: "internal server error"}
	}

	if appErr, ok := AsAppError(err); ok {
		return ErrorInfo{Kind: appErr.Kind, Code: appErr.Code, Message: appErr.Message}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Kind: KindNotFound, Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}

	if IsUniqueViolation(err) {
		return parseDuplicateKeyError(err.Error())
	}

	errLower := strings.ToLower(err.Error())

	if IsForeignKeyViolation(err) {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Kind: KindConflict, Code: ResourceConflict, Message: "the record is still referenced by other data"}
		}
		return ErrorInfo{Kind: KindNotFound, Code: ResourceNotFound, Message: "a referenced record does not exist"}
	}

	if strings.Contains(errLower, "not null constraint") || strings.Contains(errLower, "violates not-null constraint") {
		return ErrorInfo{Kind: KindInvalid, Code: ValidationRequired, Message: "a required field is missing"}
	}

	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Kind: KindInvalid, Code: ValidationInvalidInput, Message: "input violates a data constraint"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Kind: KindInternal, Code: InternalExternalAPI, Message: "an upstream service is unavailable, try again later"}
	}

	return ErrorInfo{Kind: KindInternal, Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

// IsUniqueViolation reports unique-constraint failures from postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint")
}

func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "sku"):
		return ErrorInfo{Kind: KindConflict, Code: VariantSKUExists, Message: "variant SKU is already in use"}
	case strings.Contains(errLower, "slug"):
		return ErrorInfo{Kind: KindConflict, Code: CategorySlugExists, Message: "category slug is already in use"}
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Kind: KindConflict, Code: AuthEmailAlreadyExists, Message: "email is already registered"}
	case strings.Contains(errLower, "coupons.code") || strings.Contains(errLower, "idx_coupons_code"):
		return ErrorInfo{Kind: KindConflict, Code: CouponCodeExists, Message: "coupon code is already in use"}
	case strings.Contains(errLower, "transaction_id"):
		return ErrorInfo{Kind: KindConflict, Code: PaymentAlreadyCompleted, Message: "payment transaction was already recorded"}
	case strings.Contains(errLower, "refunds.order_id") || strings.Contains(errLower, "idx_refunds_order_id"):
		return ErrorInfo{Kind: KindConflict, Code: RefundAlreadyRequested, Message: "a refund already exists for this order"}
	}

	return ErrorInfo{Kind: KindConflict, Code: ResourceAlreadyExists, Message: "the record already exists"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	for _, subject := range []string{"product", "variant", "category", "cart", "coupon", "order", "refund", "address", "user"} {
		if strings.Contains(contextLower, subject) {
			return subject + " not found"
		}
	}
	return "the requested record was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "failed to create the record, try again later"
	case strings.Contains(contextLower, "update"):
		return "failed to update the record, try again later"
	case strings.Contains(contextLower, "delete"):
		return "failed to delete the record, try again later"
	}
	return "internal server error, try again later"
}
