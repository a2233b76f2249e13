package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product represents a catalog listing. Products are never physically
// removed; deactivation hides them from the storefront.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description string         `gorm:"column:description;not null"`
	Category    string         `gorm:"column:category;not null;index"`
	PriceCents  int64          `gorm:"column:price_cents;not null"`
	Stock       int            `gorm:"column:stock;not null;default:0"`
	Images      pq.StringArray `gorm:"column:images;type:text[]"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool           `gorm:"column:is_featured;not null;default:false"`
	Rating      float64        `gorm:"column:rating;not null;default:0"`
	ReviewCount int            `gorm:"column:review_count;not null;default:0"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// FirstImage returns the primary image reference or an empty string.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
