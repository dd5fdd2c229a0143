package errors

// Error code constants returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map on these, never on messages.

const (
	// ==================== AUTH_ ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== AUTHZ_ ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== VALIDATION_ ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== RESOURCE_ ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== STORE_ ====================
	StoreOperationBlocked      = "STORE_OPERATION_BLOCKED"
	StoreSingleProductRequired = "STORE_SINGLE_PRODUCT_REQUIRED"
	StoreInvalidMode           = "STORE_INVALID_MODE"

	// ==================== PRODUCT_ / VARIANT_ / CATEGORY_ ====================
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	ProductInvalidPrice = "PRODUCT_INVALID_PRICE"
	ProductInUse        = "PRODUCT_IN_USE"
	VariantNotFound     = "VARIANT_NOT_FOUND"
	VariantSKUExists    = "VARIANT_SKU_EXISTS"
	CategoryNotFound    = "CATEGORY_NOT_FOUND"
	CategorySlugExists  = "CATEGORY_SLUG_EXISTS"
	InsufficientStock   = "INSUFFICIENT_STOCK"
	InvalidQuantity     = "INVALID_QUANTITY"

	// ==================== CART_ ====================
	CartItemNotFound = "CART_ITEM_NOT_FOUND"
	CartEmpty        = "CART_EMPTY"

	// ==================== COUPON_ ====================
	CouponNotFound        = "COUPON_NOT_FOUND"
	CouponExpired         = "COUPON_EXPIRED"
	CouponUsageExceeded   = "COUPON_USAGE_EXCEEDED"
	CouponBelowMinimum    = "COUPON_BELOW_MINIMUM"
	CouponCodeExists      = "COUPON_CODE_EXISTS"
	CouponInvalidDiscount = "COUPON_INVALID_DISCOUNT"

	// ==================== ORDER_ / PAYMENT_ / REFUND_ ====================
	OrderNotFound           = "ORDER_NOT_FOUND"
	OrderInvalidTransition  = "ORDER_INVALID_TRANSITION"
	OrderInvalidStatus      = "ORDER_INVALID_STATUS"
	OrderAddressRequired    = "ORDER_ADDRESS_REQUIRED"
	AddressNotFound         = "ADDRESS_NOT_FOUND"
	PaymentAlreadyCompleted = "PAYMENT_ALREADY_COMPLETED"
	PaymentInvalidSignature = "PAYMENT_INVALID_SIGNATURE"
	PaymentGatewayFailed    = "PAYMENT_GATEWAY_FAILED"
	PaymentOrderCancelled   = "PAYMENT_ORDER_CANCELLED"
	PaymentUnsupported      = "PAYMENT_UNSUPPORTED"
	RefundNotFound          = "REFUND_NOT_FOUND"
	RefundAlreadyRequested  = "REFUND_ALREADY_REQUESTED"
	RefundNotAllowed        = "REFUND_NOT_ALLOWED"
	RefundInvalidTransition = "REFUND_INVALID_TRANSITION"

	// ==================== INTERNAL_ ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
