package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/internal/db"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment/midtrans"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type controllerEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	settings service.SettingsService
	auth     *AuthController
	products *ProductController
	category *CategoryController
	carts    *CartController
	coupons  *CouponController
	orders   *OrderController
	refunds  *RefundController
	config   *SettingsController
	address  *AddressController
	verifier *fakeVerifier
	payments *PaymentController
}

func setupControllers(t *testing.T) *controllerEnv {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	gin.SetMode(gin.TestMode)
	RegisterValidators()

	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	couponRepo := repository.NewCouponRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)

	settings := service.NewSettingsService(repository.NewSettingsRepository(testDB), productRepo, service.NewMemorySettingsCache(time.Minute))
	cartService := service.NewCartService(testDB, cartRepo, productRepo, variantRepo, settings)
	verifier := &fakeVerifier{}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	return &controllerEnv{
		db:       testDB,
		router:   router,
		settings: settings,
		auth:     NewAuthController(service.NewAuthService(userRepo, "test-secret", time.Hour, 24*time.Hour)),
		products: NewProductController(service.NewProductService(testDB, productRepo, variantRepo, categoryRepo, settings)),
		category: NewCategoryController(service.NewCategoryService(categoryRepo)),
		carts:    NewCartController(cartService),
		coupons:  NewCouponController(service.NewCouponService(couponRepo), cartService),
		orders: NewOrderController(service.NewOrderService(
			testDB, orderRepo, cartRepo, productRepo, variantRepo, couponRepo, addressRepo, settings,
		)),
		refunds:  NewRefundController(service.NewRefundService(repository.NewRefundRepository(testDB), orderRepo)),
		config:   NewSettingsController(settings),
		address:  NewAddressController(service.NewAddressService(testDB, addressRepo)),
		verifier: verifier,
		payments: NewPaymentController(
			service.NewPaymentService(testDB, orderRepo, repository.NewPaymentRepository(testDB), userRepo, nil),
			verifier,
		),
	}
}

// as stands in for the auth middleware.
func as(userID uint, role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserRoleKey, role)
		c.Next()
	}
}

func (e *controllerEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *controllerEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hash", Name: "Test User", Role: model.RoleUser}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *controllerEnv) createProduct(t *testing.T, title, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{Title: title, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	decodeBody(t, w, &body)
	return body.Error
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeVerifier struct {
	notification *payment.Notification
	err          error
}

func (v *fakeVerifier) Verify(p midtrans.NotificationPayload) (*payment.Notification, error) {
	if v.err != nil {
		return nil, v.err
	}
	if v.notification != nil {
		return v.notification, nil
	}
	return &payment.Notification{
		Reference:     p.OrderID,
		TransactionID: p.TransactionID,
		Method:        p.PaymentType,
		Outcome:       payment.OutcomePaid,
	}, nil
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
