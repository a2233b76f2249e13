package reviews

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/pagination"
)

// ReviewDTO is the public review shape.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	UserID       uuid.UUID `json:"user_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListResult is a page of reviews plus the product's current aggregate.
type ListResult struct {
	Reviews       []ReviewDTO     `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
	Page          pagination.Page `json:"pagination"`
}

// NewReviewDTO maps the model, resolving the reviewer name when preloaded.
func NewReviewDTO(review *models.Review) *ReviewDTO {
	dto := &ReviewDTO{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Title:     review.Title,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if review.User != nil {
		dto.ReviewerName = strings.TrimSpace(review.User.FirstName + " " + review.User.LastName)
	}
	return dto
}
