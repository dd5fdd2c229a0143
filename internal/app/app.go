// Package app wires repositories, services and controllers into a router.
package app

import (
	"github.com/shhiivvaam/ecommerce-backend/config"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/controller"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
	"github.com/shhiivvaam/ecommerce-backend/internal/router"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
	"gorm.io/gorm"
)

// Options carries the optional collaborators. A nil SettingsCache falls back
// to an in-process cache; a nil Gateway or Verifier disables online payment.
type Options struct {
	SettingsCache service.SettingsCache
	Gateway       payment.Gateway
	Verifier      controller.NotificationVerifier
}

type Services struct {
	Settings service.SettingsService
	Auth     service.AuthService
	Products service.ProductService
	Category service.CategoryService
	Carts    service.CartService
	Coupons  service.CouponService
	Orders   service.OrderService
	Payments service.PaymentService
	Refunds  service.RefundService
	Address  service.AddressService
}

type App struct {
	Services Services
	Router   *router.Router
}

// NewServices builds the service layer on top of database.
func NewServices(database *gorm.DB, cfg *config.Config, opts Options) Services {
	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	variantRepo := repository.NewVariantRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	cartRepo := repository.NewCartRepository(database)
	couponRepo := repository.NewCouponRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)
	refundRepo := repository.NewRefundRepository(database)
	addressRepo := repository.NewAddressRepository(database)

	cache := opts.SettingsCache
	if cache == nil {
		cache = service.NewMemorySettingsCache(cfg.Settings.CacheTTL)
	}
	settings := service.NewSettingsService(repository.NewSettingsRepository(database), productRepo, cache)

	return Services{
		Settings: settings,
		Auth: service.NewAuthService(
			userRepo,
			cfg.JWT.Secret,
			cfg.JWT.AccessTokenExpiry,
			cfg.JWT.RefreshTokenExpiry,
		),
		Products: service.NewProductService(database, productRepo, variantRepo, categoryRepo, settings),
		Category: service.NewCategoryService(categoryRepo),
		Carts:    service.NewCartService(database, cartRepo, productRepo, variantRepo, settings),
		Coupons:  service.NewCouponService(couponRepo),
		Orders: service.NewOrderService(
			database, orderRepo, cartRepo, productRepo, variantRepo, couponRepo, addressRepo, settings,
		),
		Payments: service.NewPaymentService(database, orderRepo, paymentRepo, userRepo, opts.Gateway),
		Refunds:  service.NewRefundService(refundRepo, orderRepo),
		Address:  service.NewAddressService(database, addressRepo),
	}
}

// New builds the services and the HTTP router.
func New(database *gorm.DB, cfg *config.Config, opts Options) *App {
	services := NewServices(database, cfg, opts)

	controllers := router.Controllers{
		Auth:     controller.NewAuthController(services.Auth),
		Product:  controller.NewProductController(services.Products),
		Category: controller.NewCategoryController(services.Category),
		Cart:     controller.NewCartController(services.Carts),
		Coupon:   controller.NewCouponController(services.Coupons, services.Carts),
		Order:    controller.NewOrderController(services.Orders),
		Payment:  controller.NewPaymentController(services.Payments, opts.Verifier),
		Refund:   controller.NewRefundController(services.Refunds),
		Settings: controller.NewSettingsController(services.Settings),
		Address:  controller.NewAddressController(services.Address),
	}

	return &App{
		Services: services,
		Router:   router.NewRouter(controllers, middleware.NewAuthMiddleware(cfg.JWT.Secret), cfg),
	}
}
