package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/shopflow-backend/pkg/enums"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

// Order is the immutable snapshot produced by checkout. Totals are derived
// once at creation and never recomputed; only status fields change later.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string                `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	SubtotalCents   int64                 `gorm:"column:subtotal_cents;not null"`
	TaxCents        int64                 `gorm:"column:tax_cents;not null"`
	ShippingCents   int64                 `gorm:"column:shipping_cents;not null"`
	TotalCents      int64                 `gorm:"column:total_cents;not null"`
	Notes           *string               `gorm:"column:notes"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
