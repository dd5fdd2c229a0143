package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = apperrors.NotFoundError(apperrors.ProductNotFound, "product not found")
	ErrVariantNotFound   = apperrors.NotFoundError(apperrors.VariantNotFound, "variant not found")
	ErrCategoryNotFound  = apperrors.NotFoundError(apperrors.CategoryNotFound, "category not found")
	ErrInvalidPrice      = apperrors.InvalidError(apperrors.ProductInvalidPrice, "price must be non-negative and the discounted price may not exceed it")
	ErrInvalidStock      = apperrors.InvalidError(apperrors.InvalidQuantity, "stock must be non-negative")
	ErrInvalidSort       = apperrors.InvalidError(apperrors.ValidationInvalidInput, "sort must be one of price, name, createdAt")
	ErrProductInUse      = apperrors.ConflictError(apperrors.ProductInUse, "product is referenced by orders")
	ErrSingleModeCreate  = apperrors.BlockedError(apperrors.StoreOperationBlocked, "cannot add products while the store runs in single-product mode")
	ErrSingleModeDelete  = apperrors.BlockedError(apperrors.StoreOperationBlocked, "cannot delete the designated product while the store runs in single-product mode")
	ErrInsufficientStock = apperrors.InvalidError(apperrors.InsufficientStock, "insufficient stock")
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type ProductListQuery struct {
	Search     string
	CategoryID *uint
	SortBy     string // price, name, createdAt
	Order      string // asc, desc
	Page       int
	Limit      int
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

type ProductInput struct {
	Title           string
	Description     string
	Price           decimal.Decimal
	DiscountedPrice *decimal.Decimal
	Stock           int
	CategoryID      *uint
	Gallery         []string
	Variants        []VariantInput
}

type VariantInput struct {
	Size      *string
	Color     *string
	SKU       *string
	Stock     int
	PriceDiff decimal.Decimal
}

type ProductService interface {
	ListProducts(ctx context.Context, query ProductListQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	CreateVariant(ctx context.Context, productID uint, input VariantInput) (*model.Variant, error)
	UpdateVariant(ctx context.Context, variantID uint, input VariantInput) (*model.Variant, error)
	DeleteVariant(ctx context.Context, variantID uint) error
}

type productService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	categoryRepo repository.CategoryRepository
	settings     SettingsService
}

func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	categoryRepo repository.CategoryRepository,
	settings SettingsService,
) ProductService {
	return &productService{
		db:           db,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		categoryRepo: categoryRepo,
		settings:     settings,
	}
}

// ListProducts returns only the designated product in single mode, ignoring
// filters and paging.
func (s *productService) ListProducts(ctx context.Context, query ProductListQuery) (*ProductPage, error) {
	page, limit := normalizePaging(query.Page, query.Limit)

	singleID, err := s.settings.SingleProductID(ctx)
	if err != nil {
		return nil, err
	}
	if singleID != nil {
		product, err := s.productRepo.FindByID(*singleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Designated single product is missing", map[string]interface{}{
					"product_id": *singleID,
				})
				return &ProductPage{Products: []model.Product{}, Total: 0, Page: 1, Limit: limit}, nil
			}
			return nil, err
		}
		return &ProductPage{Products: []model.Product{*product}, Total: 1, Page: 1, Limit: limit}, nil
	}

	sortBy, err := parseProductSort(query.SortBy)
	if err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{
		Search:        strings.TrimSpace(query.Search),
		CategoryID:    query.CategoryID,
		SortBy:        sortBy,
		SortAscending: strings.EqualFold(query.Order, "asc"),
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}

	logger.Debug("Listing products", map[string]interface{}{
		"search":      filter.Search,
		"category_id": filter.CategoryID,
		"sort":        filter.SortBy,
		"page":        page,
		"limit":       limit,
	})

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return &ProductPage{Products: products, Total: total, Page: page, Limit: limit}, nil
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	if err := s.ensureVisible(ctx, id); err != nil {
		return nil, err
	}
	return s.findProduct(id)
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	single, err := s.settings.IsSingleProductMode(ctx)
	if err != nil {
		return nil, err
	}
	if single {
		logger.Warn("Product creation blocked by single-product mode", map[string]interface{}{
			"title": input.Title,
		})
		return nil, ErrSingleModeCreate
	}

	if err := s.validateProductInput(input); err != nil {
		return nil, err
	}

	product := &model.Product{}
	applyProductInput(product, input)
	for _, v := range input.Variants {
		if err := validateVariantInput(product, v); err != nil {
			return nil, err
		}
		variant := model.Variant{}
		applyVariantInput(&variant, v)
		product.Variants = append(product.Variants, variant)
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
	})
	return s.findProduct(product.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	if err := s.ensureVisible(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.findProduct(id)
	if err != nil {
		return nil, err
	}
	if err := s.validateProductInput(input); err != nil {
		return nil, err
	}

	applyProductInput(product, input)
	for i := range product.Variants {
		if UnitPriceBeforeFloor(product, &product.Variants[i]).IsNegative() {
			return nil, ErrInvalidPrice
		}
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})
	return s.findProduct(id)
}

// DeleteProduct hard-deletes a product that no order item references.
func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	singleID, err := s.settings.SingleProductID(ctx)
	if err != nil {
		return err
	}
	if singleID != nil && *singleID == id {
		logger.Warn("Deletion of designated single product blocked", map[string]interface{}{
			"product_id": id,
		})
		return ErrSingleModeDelete
	}

	// The row lock serialises against checkouts reserving stock on this product.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)

		if _, err := productRepo.FindByIDForUpdate(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		refs, err := productRepo.CountOrderReferences(id)
		if err != nil {
			return err
		}
		if refs > 0 {
			logger.Warn("Product deletion refused: referenced by orders", map[string]interface{}{
				"product_id": id,
				"references": refs,
			})
			return ErrProductInUse
		}

		if err := productRepo.Delete(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) CreateVariant(ctx context.Context, productID uint, input VariantInput) (*model.Variant, error) {
	if err := s.ensureVisible(ctx, productID); err != nil {
		return nil, err
	}
	product, err := s.findProduct(productID)
	if err != nil {
		return nil, err
	}
	if err := validateVariantInput(product, input); err != nil {
		return nil, err
	}

	variant := &model.Variant{ProductID: productID}
	applyVariantInput(variant, input)
	if err := s.variantRepo.Create(variant); err != nil {
		return nil, err
	}

	logger.Info("Variant created", map[string]interface{}{
		"product_id": productID,
		"variant_id": variant.ID,
	})
	return variant, nil
}

func (s *productService) UpdateVariant(ctx context.Context, variantID uint, input VariantInput) (*model.Variant, error) {
	variant, err := s.findVariant(variantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, variant.ProductID); err != nil {
		return nil, err
	}
	product, err := s.findProduct(variant.ProductID)
	if err != nil {
		return nil, err
	}
	if err := validateVariantInput(product, input); err != nil {
		return nil, err
	}

	applyVariantInput(variant, input)
	if err := s.variantRepo.Update(variant); err != nil {
		return nil, err
	}
	return s.findVariant(variantID)
}

func (s *productService) DeleteVariant(ctx context.Context, variantID uint) error {
	variant, err := s.findVariant(variantID)
	if err != nil {
		return err
	}
	if err := s.ensureVisible(ctx, variant.ProductID); err != nil {
		return err
	}
	if err := s.variantRepo.Delete(variantID); err != nil {
		return err
	}

	logger.Info("Variant deleted", map[string]interface{}{
		"variant_id": variantID,
		"product_id": variant.ProductID,
	})
	return nil
}

// ensureVisible hides every product but the designated one in single mode.
func (s *productService) ensureVisible(ctx context.Context, id uint) error {
	singleID, err := s.settings.SingleProductID(ctx)
	if err != nil {
		return err
	}
	if singleID != nil && *singleID != id {
		logger.Debug("Product hidden by single-product mode", map[string]interface{}{
			"product_id":        id,
			"single_product_id": *singleID,
		})
		return ErrProductNotFound
	}
	return nil
}

func (s *productService) findProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) findVariant(id uint) (*model.Variant, error) {
	variant, err := s.variantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return variant, nil
}

func (s *productService) validateProductInput(input ProductInput) error {
	if input.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if input.DiscountedPrice != nil {
		if input.DiscountedPrice.IsNegative() || input.DiscountedPrice.GreaterThan(input.Price) {
			return ErrInvalidPrice
		}
	}
	if input.Stock < 0 {
		return ErrInvalidStock
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	return nil
}

func validateVariantInput(product *model.Product, input VariantInput) error {
	if input.Stock < 0 {
		return ErrInvalidStock
	}
	if product.BasePrice().Add(input.PriceDiff).IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

func applyProductInput(product *model.Product, input ProductInput) {
	product.Title = strings.TrimSpace(input.Title)
	product.Description = input.Description
	product.Price = input.Price
	product.DiscountedPrice = decimal.NullDecimal{}
	if input.DiscountedPrice != nil {
		product.DiscountedPrice = decimal.NewNullDecimal(*input.DiscountedPrice)
	}
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.Gallery = model.ImageRefs(input.Gallery)
}

func applyVariantInput(variant *model.Variant, input VariantInput) {
	variant.Size = input.Size
	variant.Color = input.Color
	variant.SKU = nil
	if input.SKU != nil && strings.TrimSpace(*input.SKU) != "" {
		sku := strings.TrimSpace(*input.SKU)
		variant.SKU = &sku
	}
	variant.Stock = input.Stock
	variant.PriceDiff = input.PriceDiff
}

// UnitPriceBeforeFloor is the raw base + priceDiff used to reject writes that
// would price a variant below zero.
func UnitPriceBeforeFloor(product *model.Product, variant *model.Variant) decimal.Decimal {
	return product.BasePrice().Add(variant.PriceDiff)
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func parseProductSort(sortBy string) (repository.ProductSort, error) {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "", "createdat", "created_at":
		return repository.ProductSortCreatedAt, nil
	case "price":
		return repository.ProductSortPrice, nil
	case "name", "title":
		return repository.ProductSortName, nil
	}
	return "", ErrInvalidSort
}
