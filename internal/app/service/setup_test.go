package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	"github.com/shhiivvaam/ecommerce-backend/internal/db"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	settings SettingsService
	products ProductService
	category CategoryService
	carts    CartService
	coupons  CouponService
	orders   OrderService
	payments PaymentService
	refunds  RefundService
	auth     AuthService
	gateway  *fakeGateway
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	couponRepo := repository.NewCouponRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)
	refundRepo := repository.NewRefundRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	settings := NewSettingsService(repository.NewSettingsRepository(testDB), productRepo, NewMemorySettingsCache(time.Minute))
	gateway := &fakeGateway{}

	return &testEnv{
		db:       testDB,
		settings: settings,
		products: NewProductService(testDB, productRepo, variantRepo, categoryRepo, settings),
		category: NewCategoryService(categoryRepo),
		carts:    NewCartService(testDB, cartRepo, productRepo, variantRepo, settings),
		coupons:  NewCouponService(couponRepo),
		orders:   NewOrderService(testDB, orderRepo, cartRepo, productRepo, variantRepo, couponRepo, addressRepo, settings),
		payments: NewPaymentService(testDB, orderRepo, paymentRepo, userRepo, gateway),
		refunds:  NewRefundService(refundRepo, orderRepo),
		auth:     NewAuthService(userRepo, "test-secret", time.Hour, 24*time.Hour),
		gateway:  gateway,
	}
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "hash", Name: "Test User", Role: model.RoleUser}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createProduct(t *testing.T, title string, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{Title: title, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *testEnv) createVariant(t *testing.T, product *model.Product, size string, priceDiff string, stock int) *model.Variant {
	t.Helper()
	variant := &model.Variant{ProductID: product.ID, Size: &size, PriceDiff: decimal.RequireFromString(priceDiff), Stock: stock}
	require.NoError(t, e.db.Create(variant).Error)
	return variant
}

func (e *testEnv) createCoupon(t *testing.T, coupon *model.Coupon) *model.Coupon {
	t.Helper()
	if coupon.ExpiryDate.IsZero() {
		coupon.ExpiryDate = time.Now().Add(24 * time.Hour)
	}
	require.NoError(t, e.db.Create(coupon).Error)
	return coupon
}

func testAddress() *model.ShippingAddress {
	return &model.ShippingAddress{
		Recipient: "Jane Doe",
		Phone:     "555-0100",
		Line1:     "1 Main St",
		City:      "Springfield",
		Country:   "us",
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeGateway records checkout requests and returns a fixed redirect.
type fakeGateway struct {
	mu       sync.Mutex
	requests []payment.CheckoutRequest
	err      error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &payment.Checkout{
		Reference:   req.Reference,
		Token:       "tok-" + req.Reference,
		RedirectURL: "https://pay.example.test/" + req.Reference,
	}, nil
}
