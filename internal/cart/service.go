package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the per-user cart operations.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo     *Repository
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// GetCart returns the user's cart, creating it lazily.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return NewCartDTO(cart), nil
}

// AddItem appends a line or increments an existing one. An existing line
// keeps its accumulated quantity without re-checking combined stock; only
// the increment itself is validated against current stock.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be at least 1")
	}

	product, err := s.loadActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Insufficient stock for %s", product.Name))
	}

	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	line := findLine(cart, productID)
	if line != nil {
		line.Quantity += quantity
		line.PriceCents = product.PriceCents
	} else {
		line = &models.CartItem{
			CartID:     cart.ID,
			ProductID:  productID,
			Quantity:   quantity,
			PriceCents: product.PriceCents,
		}
	}

	if err := s.repo.UpsertItem(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart item")
	}
	return s.touchAndReload(ctx, userID, cart.ID)
}

// UpdateItem sets the line quantity; zero or negative removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.loadActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Insufficient stock for %s", product.Name))
	}

	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	line := findLine(cart, productID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Item not found in cart")
	}
	line.Quantity = quantity
	line.PriceCents = product.PriceCents

	if err := s.repo.UpsertItem(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart item")
	}
	return s.touchAndReload(ctx, userID, cart.ID)
}

// RemoveItem deletes the line if present; removing an absent line is a no-op.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing cart item")
	}
	return s.touchAndReload(ctx, userID, cart.ID)
}

// Clear drops every line; clearing an empty cart succeeds.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return s.touchAndReload(ctx, userID, cart.ID)
}

func (s *service) loadActiveProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return product, nil
}

// touchAndReload bumps the cart row's updated_at after a line mutation, so
// the cart reflects activity even though only a child row changed.
func (s *service) touchAndReload(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error) {
	if err := s.repo.TouchCart(ctx, cartID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touching cart")
	}
	return s.reload(ctx, userID)
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading cart")
	}
	return NewCartDTO(cart), nil
}

func findLine(cart *models.Cart, productID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}
