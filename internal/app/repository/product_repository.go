package repository

import (
	"fmt"
	"strings"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortName      ProductSort = "name"
	ProductSortCreatedAt ProductSort = "createdAt"
)

type ProductFilter struct {
	Search        string
	CategoryID    *uint
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindByIDForUpdate(id uint) (*model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(id uint) error
	CountOrderReferences(id uint) (int64, error)
	DecrementStock(id uint, quantity int) (bool, error)
	IncrementStock(id uint, quantity int) error
	WithTx(tx *gorm.DB) ProductRepository
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"title":       product.Title,
		"category_id": product.CategoryID,
		"variants":    len(product.Variants),
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"title": product.Title,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("variants.id ASC")
		})
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.preloaded().First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate takes a row lock; call it inside a transaction.
func (r *productRepository) FindByIDForUpdate(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":      filter.Search,
		"category_id": filter.CategoryID,
		"sort_by":     filter.SortBy,
		"ascending":   filter.SortAscending,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	scoped := func() *gorm.DB {
		query := r.db.Model(&model.Product{})
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
			query = query.Where(`LOWER(products.title) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\'`, like, like)
		}
		if filter.CategoryID != nil {
			query = query.Where("products.category_id = ?", *filter.CategoryID)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	column := "products.created_at"
	switch filter.SortBy {
	case ProductSortPrice:
		column = "products.price"
	case ProductSortName:
		column = "products.title"
	}
	query := scoped().Order(fmt.Sprintf("%s %s", column, direction)).Order("products.id " + direction)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	err := query.
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("variants.id ASC")
		}).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	return products, total, nil
}

// Update saves product columns only; variants are managed through VariantRepository.
func (r *productRepository) Update(product *model.Product) error {
	err := r.db.Model(product).
		Select("title", "description", "price", "discounted_price", "stock", "category_id", "gallery").
		Updates(product).Error
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// Delete hard-deletes the product together with its variants and any cart items pointing at it.
func (r *productRepository) Delete(id uint) error {
	if err := r.db.Where("product_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("product_id = ?", id).Delete(&model.Variant{}).Error; err != nil {
		return err
	}
	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) CountOrderReferences(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.OrderItem{}).Where("product_id = ?", id).Count(&count).Error
	return count, err
}

// DecrementStock reserves quantity only when enough stock remains.
func (r *productRepository) DecrementStock(id uint, quantity int) (bool, error) {
	result := r.db.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		logger.Error("Failed to decrement product stock", result.Error, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *productRepository) IncrementStock(id uint, quantity int) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
}
