package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/shopflow-backend/pkg/config"
	"github.com/avelarde/shopflow-backend/pkg/db/models"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/security"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

// UpdateProfileInput carries the mutable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// ChangePasswordInput requires the current password before accepting a new one.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// Service manages the authenticated user's own profile.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
	AddAddress(ctx context.Context, userID uuid.UUID, address types.ShippingAddress) (*UserDTO, error)
	RemoveAddress(ctx context.Context, userID uuid.UUID, index int) (*UserDTO, error)
}

type service struct {
	repo        *Repository
	passwordCfg config.PasswordConfig
}

// NewService constructs the profile service.
func NewService(repo *Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	updates := map[string]any{}
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "First name cannot be empty")
		}
		updates["first_name"] = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Last name cannot be empty")
		}
		updates["last_name"] = name
	}
	if len(updates) > 0 {
		affected, err := s.repo.UpdateProfile(ctx, userID, updates)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating profile")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
	}
	return s.GetProfile(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if len(input.NewPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Password must be at least 8 characters")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Current password is incorrect")
	}

	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing password")
	}
	return nil
}

func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, address types.ShippingAddress) (*UserDTO, error) {
	if !address.IsComplete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Shipping address is incomplete")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, existing := range user.Addresses {
		if existing == address {
			return FromModel(user), nil
		}
	}

	addresses := append(user.Addresses, address)
	if err := s.repo.UpdateAddresses(ctx, userID, addresses); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving addresses")
	}
	user.Addresses = addresses
	return FromModel(user), nil
}

func (s *service) RemoveAddress(ctx context.Context, userID uuid.UUID, index int) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(user.Addresses) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Address not found")
	}

	addresses := append([]types.ShippingAddress{}, user.Addresses[:index]...)
	addresses = append(addresses, user.Addresses[index+1:]...)
	if err := s.repo.UpdateAddresses(ctx, userID, addresses); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving addresses")
	}
	user.Addresses = addresses
	return FromModel(user), nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	return user, nil
}
