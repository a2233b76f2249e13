package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	OrderNumber     string                `json:"order_number"`
	UserID          uuid.UUID             `json:"user_id"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"payment_status"`
	Items           []OrderLineDTO        `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	SubtotalCents   int64                 `json:"subtotal_cents"`
	TaxCents        int64                 `json:"tax_cents"`
	ShippingCents   int64                 `json:"shipping_cents"`
	TotalCents      int64                 `json:"total_cents"`
	Notes           *string               `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// OrderLineDTO is one immutable line snapshot.
type OrderLineDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	Image      string    `json:"image,omitempty"`
}

// NewOrderDTO builds the payload from the persisted order.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		Status:          order.Status.String(),
		PaymentStatus:   order.PaymentStatus.String(),
		Items:           make([]OrderLineDTO, 0, len(order.Items)),
		ShippingAddress: order.ShippingAddress,
		SubtotalCents:   order.SubtotalCents,
		TaxCents:        order.TaxCents,
		ShippingCents:   order.ShippingCents,
		TotalCents:      order.TotalCents,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderLineDTO{
			ProductID:  item.ProductID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
			Image:      item.Image,
		})
	}
	return dto
}
