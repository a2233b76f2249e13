package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/avelarde/shopflow-backend/pkg/db"
	"github.com/avelarde/shopflow-backend/pkg/db/models"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/pagination"
)

// Service exposes catalog read paths and admin product management.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListInput) (*ListResult, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeactivateProduct(ctx context.Context, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Slug        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int
	Images      []string
	IsActive    bool
	IsFeatured  bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Slug        *string
	Description *string
	Category    *string
	PriceCents  *int64
	Stock       *int
	Images      *[]string
	IsActive    *bool
	IsFeatured  *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// GetProduct returns an active product by ID.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if !row.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return NewProductDTO(row), nil
}

// GetProductBySlug returns an active product by its URL slug.
func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	row, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product by slug")
	}
	if !row.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return NewProductDTO(row), nil
}

// ListProducts returns a filtered, sorted catalog page.
func (s *service) ListProducts(ctx context.Context, input ListInput) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i]))
	}

	return &ListResult{
		Products: dtos,
		Page:     pagination.Build(input.Pagination, total),
	}, nil
}

// ListCategories returns the distinct active categories.
func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing categories")
	}
	return categories, nil
}

// CreateProduct inserts a catalog row (admin surface).
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = slugify(input.Name)
	}

	row := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		Images:      input.Images,
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "A product with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies partial mutations to a product (admin surface).
// Inactive products remain addressable here so they can be reactivated.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		row.Slug = strings.TrimSpace(*input.Slug)
	}
	if input.Description != nil {
		row.Description = *input.Description
	}
	if input.Category != nil {
		row.Category = strings.TrimSpace(*input.Category)
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		row.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		row.Stock = *input.Stock
	}
	if input.Images != nil {
		row.Images = *input.Images
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		row.IsFeatured = *input.IsFeatured
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "A product with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product")
	}
	return NewProductDTO(updated), nil
}

// DeactivateProduct soft-deletes by flipping the active flag.
func (s *service) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	affected, err := s.repo.Deactivate(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
