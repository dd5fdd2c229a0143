package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	ErrCategorySlugExists = apperrors.ConflictError(apperrors.CategorySlugExists, "a category with this name already exists")
	ErrInvalidCategory    = apperrors.InvalidError(apperrors.ValidationRequired, "category name must produce a non-empty slug")
)

type CategoryInput struct {
	Name        string
	Description string
}

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	GetCategory(id uint) (*model.Category, error)
	CreateCategory(input CategoryInput) (*model.Category, error)
	UpdateCategory(id uint, input CategoryInput) (*model.Category, error)
	DeleteCategory(id uint) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) GetCategory(id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) CreateCategory(input CategoryInput) (*model.Category, error) {
	slug, err := s.uniqueSlug(input.Name, 0)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrCategorySlugExists
		}
		return nil, err
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return category, nil
}

func (s *categoryService) UpdateCategory(id uint, input CategoryInput) (*model.Category, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(input.Name, id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(input.Name)
	category.Slug = slug
	category.Description = input.Description
	if err := s.categoryRepo.Update(category); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrCategorySlugExists
		}
		return nil, err
	}
	return category, nil
}

// DeleteCategory soft-deletes the category and detaches its products.
func (s *categoryService) DeleteCategory(id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *categoryService) uniqueSlug(name string, excludeID uint) (string, error) {
	slug := Slugify(name)
	if slug == "" {
		return "", ErrInvalidCategory
	}
	taken, err := s.categoryRepo.SlugTaken(slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrCategorySlugExists
	}
	return slug, nil
}

// Slugify lower-cases name, strips accents and joins alphanumeric runs with '-'.
func Slugify(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(strings.TrimSpace(name)),
	)
	if err != nil {
		folded = strings.ToLower(name)
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
