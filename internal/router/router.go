package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/shhiivvaam/ecommerce-backend/config"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/controller"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/metrics"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
)

// Controllers groups every HTTP handler the API exposes.
type Controllers struct {
	Auth     *controller.AuthController
	Product  *controller.ProductController
	Category *controller.CategoryController
	Cart     *controller.CartController
	Coupon   *controller.CouponController
	Order    *controller.OrderController
	Payment  *controller.PaymentController
	Refund   *controller.RefundController
	Settings *controller.SettingsController
	Address  *controller.AddressController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	controller.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	ctl := r.controllers
	authenticated := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", ctl.Auth.Register)
			auth.POST("/login", ctl.Auth.Login)
			auth.POST("/refresh", ctl.Auth.Refresh)
			auth.GET("/me", authenticated, ctl.Auth.GetMe)
		}

		// Guests may browse; a valid token only attributes the request.
		catalog := v1.Group("", r.authMiddleware.OptionalAuthenticate())
		{
			catalog.GET("/settings", ctl.Settings.GetSettings)
			catalog.GET("/products", ctl.Product.ListProducts)
			catalog.GET("/products/:id", ctl.Product.GetProduct)
			catalog.GET("/categories", ctl.Category.ListCategories)
			catalog.GET("/categories/:id", ctl.Category.GetCategory)
		}

		// Provider callbacks authenticate by signature, not by token.
		v1.POST("/payments/notifications", ctl.Payment.HandleNotification)

		cart := v1.Group("/cart", authenticated)
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.DELETE("", ctl.Cart.ClearCart)
			cart.POST("/items", ctl.Cart.AddToCart)
			cart.PUT("/items/:id", ctl.Cart.UpdateCartItem)
			cart.DELETE("/items/:id", ctl.Cart.RemoveFromCart)
		}

		v1.POST("/coupons/apply", authenticated, ctl.Coupon.ApplyCoupon)

		orders := v1.Group("/orders", authenticated)
		{
			orders.POST("", ctl.Order.CreateOrder)
			orders.GET("", ctl.Order.ListOrders)
			orders.GET("/:id", ctl.Order.GetOrder)
			orders.POST("/:id/payment", ctl.Payment.BeginPayment)
			orders.POST("/:id/refund", ctl.Refund.RequestRefund)
		}

		v1.GET("/refunds", authenticated, ctl.Refund.ListRefunds)

		addresses := v1.Group("/addresses", authenticated)
		{
			addresses.GET("", ctl.Address.ListAddresses)
			addresses.POST("", ctl.Address.CreateAddress)
			addresses.PUT("/:id", ctl.Address.UpdateAddress)
			addresses.DELETE("/:id", ctl.Address.DeleteAddress)
		}

		admin := v1.Group("/admin", authenticated, adminOnly)
		{
			admin.PUT("/settings", ctl.Settings.UpdateSettings)

			admin.POST("/products", ctl.Product.CreateProduct)
			admin.PUT("/products/:id", ctl.Product.UpdateProduct)
			admin.DELETE("/products/:id", ctl.Product.DeleteProduct)
			admin.POST("/products/:id/variants", ctl.Product.CreateVariant)
			admin.PUT("/variants/:id", ctl.Product.UpdateVariant)
			admin.DELETE("/variants/:id", ctl.Product.DeleteVariant)

			admin.POST("/categories", ctl.Category.CreateCategory)
			admin.PUT("/categories/:id", ctl.Category.UpdateCategory)
			admin.DELETE("/categories/:id", ctl.Category.DeleteCategory)

			admin.GET("/coupons", ctl.Coupon.ListCoupons)
			admin.POST("/coupons", ctl.Coupon.CreateCoupon)
			admin.GET("/coupons/:id", ctl.Coupon.GetCoupon)
			admin.PUT("/coupons/:id", ctl.Coupon.UpdateCoupon)

			admin.GET("/orders", ctl.Order.ListAllOrders)
			admin.PUT("/orders/:id/status", ctl.Order.UpdateOrderStatus)
			admin.POST("/orders/:id/payment/verify", ctl.Payment.VerifyPayment)

			admin.GET("/refunds", ctl.Refund.ListAllRefunds)
			admin.PUT("/refunds/:id/status", ctl.Refund.UpdateRefundStatus)
		}
	}

	return router
}

// Handler wraps the engine with CORS handling for the configured origins.
func (r *Router) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "Origin", "Cache-Control", "X-Requested-With", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(r.Setup())
}
