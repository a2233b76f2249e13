package payloads

import (
	"time"

	"github.com/avelarde/shopflow-backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderPlacedEvent signals a successful checkout.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	ItemCount   int       `json:"item_count"`
	TotalCents  int64     `json:"total_cents"`
	PlacedAt    time.Time `json:"placed_at"`
}

// OrderStatusChangedEvent is emitted when an admin moves an order between states.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      uuid.UUID         `json:"user_id"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
	ChangedAt   time.Time         `json:"changed_at"`
}

// ReviewCreatedEvent reports a new product review and the resulting aggregate.
type ReviewCreatedEvent struct {
	ReviewID    uuid.UUID `json:"review_id"`
	ProductID   uuid.UUID `json:"product_id"`
	UserID      uuid.UUID `json:"user_id"`
	Rating      int       `json:"rating"`
	NewRating   float64   `json:"new_rating"`
	ReviewCount int       `json:"review_count"`
}
