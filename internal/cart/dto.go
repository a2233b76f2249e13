package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
)

// CartDTO is the denormalized cart payload returned after every mutation.
type CartDTO struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	Items         []CartLineDTO `json:"items"`
	SubtotalCents int64         `json:"subtotal_cents"`
	ItemCount     int           `json:"item_count"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CartLineDTO is one cart line with product display details resolved.
type CartLineDTO struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Image      string    `json:"image,omitempty"`
	Stock      int       `json:"stock"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	LineCents  int64     `json:"line_cents"`
}

// NewCartDTO builds the display payload from the persisted cart.
func NewCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartLineDTO, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		line := CartLineDTO{
			ProductID:  item.ProductID,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
			LineCents:  item.PriceCents * int64(item.Quantity),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.Slug = item.Product.Slug
			line.Image = item.Product.FirstImage()
			line.Stock = item.Product.Stock
		}
		dto.Items = append(dto.Items, line)
		dto.SubtotalCents += line.LineCents
		dto.ItemCount += item.Quantity
	}
	return dto
}
