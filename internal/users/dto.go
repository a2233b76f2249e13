package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID               `json:"id"`
	Email       string                  `json:"email"`
	FirstName   string                  `json:"first_name"`
	LastName    string                  `json:"last_name"`
	Role        string                  `json:"role"`
	IsActive    bool                    `json:"is_active"`
	Addresses   []types.ShippingAddress `json:"addresses"`
	LastLoginAt *time.Time              `json:"last_login_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

func (d CreateUserDTO) ToModel() *models.User {
	user := &models.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		IsActive:     true,
	}
	if d.Role != "" {
		user.Role = enums.UserRole(d.Role)
	}
	return user
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	addresses := u.Addresses
	if addresses == nil {
		addresses = []types.ShippingAddress{}
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role.String(),
		IsActive:    u.IsActive,
		Addresses:   addresses,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
