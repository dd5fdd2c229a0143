package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart returns the user's cart priced at current catalog prices
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetOrCreateCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "fetch cart", map[string]interface{}{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// AddToCart adds a product, merging with an existing line
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := ctrl.cartService.AddItem(c.Request.Context(), userID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err, "add to cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
			"variant_id": req.VariantID,
		})
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// UpdateCartItem sets a line's quantity
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := ctrl.cartService.UpdateItem(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err, "update cart item", map[string]interface{}{
			"user_id": userID,
			"item_id": itemID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// RemoveFromCart DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err, "remove cart item", map[string]interface{}{
			"user_id": userID,
			"item_id": itemID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// ClearCart DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.ClearCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "clear cart", map[string]interface{}{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart})
}
