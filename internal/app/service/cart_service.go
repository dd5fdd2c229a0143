package service

import (
	"context"
	"errors"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = apperrors.NotFoundError(apperrors.CartItemNotFound, "cart item not found")
	ErrInvalidQuantity  = apperrors.InvalidError(apperrors.InvalidQuantity, "quantity must be at least 1")
)

type CartService interface {
	GetOrCreateCart(ctx context.Context, userID uint) (*model.Cart, error)
	AddItem(ctx context.Context, userID, productID uint, variantID *uint, quantity int) (*model.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uint) (*model.Cart, error)
	ClearCart(ctx context.Context, userID uint) (*model.Cart, error)
}

type cartService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	settings    SettingsService
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	settings SettingsService,
) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		settings:    settings,
	}
}

// GetOrCreateCart returns the caller's cart priced against the live catalog,
// refreshing the stored total when prices moved since the last mutation.
func (s *cartService) GetOrCreateCart(ctx context.Context, userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	total := PriceCartItems(cart.Items)
	if !total.Equal(cart.Total) {
		logger.Debug("Refreshing stale cart total", map[string]interface{}{
			"cart_id": cart.ID,
			"stored":  cart.Total.String(),
			"live":    total.String(),
		})
		if err := s.cartRepo.UpdateTotal(cart.ID, total); err != nil {
			return nil, err
		}
		cart.Total = total
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uint, variantID *uint, quantity int) (*model.Cart, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	singleID, err := s.settings.SingleProductID(ctx)
	if err != nil {
		return nil, err
	}
	if singleID != nil && *singleID != productID {
		return nil, ErrProductNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		product, err := s.productRepo.WithTx(tx).FindByID(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		available := product.Stock
		if variantID != nil {
			variant, err := s.variantRepo.WithTx(tx).FindByIDAndProduct(*variantID, productID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVariantNotFound
				}
				return err
			}
			available = variant.Stock
		}

		cart, err := carts.GetOrCreate(userID)
		if err != nil {
			return err
		}

		requested := quantity
		key := model.VariantKeyOf(variantID)
		for _, existing := range cart.Items {
			if existing.ProductID == productID && existing.VariantKey == key {
				requested += existing.Quantity
				break
			}
		}
		if requested > available {
			logger.Warn("Add to cart failed: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
				"variant_id": variantID,
				"requested":  requested,
				"available":  available,
			})
			return ErrInsufficientStock
		}

		item := &model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
		}
		if err := carts.UpsertItem(item); err != nil {
			return err
		}
		return recomputeCartTotal(carts, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.loadCart(userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		item, err := findOwnedItem(carts, userID, itemID)
		if err != nil {
			return err
		}

		available := item.Product.Stock
		if item.Variant != nil {
			available = item.Variant.Stock
		}
		if quantity > available {
			return ErrInsufficientStock
		}

		if err := carts.UpdateItemQuantity(item.ID, quantity); err != nil {
			return err
		}
		return recomputeCartTotal(carts, userID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart item updated", map[string]interface{}{
		"user_id":  userID,
		"item_id":  itemID,
		"quantity": quantity,
	})
	return s.loadCart(userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uint) (*model.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		item, err := findOwnedItem(carts, userID, itemID)
		if err != nil {
			return err
		}
		if err := carts.DeleteItem(item.ID); err != nil {
			return err
		}
		return recomputeCartTotal(carts, userID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"user_id": userID,
		"item_id": itemID,
	})
	return s.loadCart(userID)
}

// ClearCart is a no-op returning (nil, nil) for a user without a cart.
func (s *cartService) ClearCart(ctx context.Context, userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		if err := carts.DeleteItems(cart.ID); err != nil {
			return err
		}
		return recomputeCartTotal(carts, userID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})
	return s.loadCart(userID)
}

func (s *cartService) loadCart(userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	PriceCartItems(cart.Items)
	return cart, nil
}

// findOwnedItem resolves itemID inside the user's cart; anything else reads as missing.
func findOwnedItem(carts repository.CartRepository, userID, itemID uint) (*model.CartItem, error) {
	cart, err := carts.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	item, err := carts.FindItem(cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// recomputeCartTotal rebuilds the cached total from the items; the stored
// value is never used as an input.
func recomputeCartTotal(carts repository.CartRepository, userID uint) error {
	cart, err := carts.FindByUserID(userID)
	if err != nil {
		return err
	}
	return carts.UpdateTotal(cart.ID, PriceCartItems(cart.Items))
}
