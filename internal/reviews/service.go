package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/avelarde/shopflow-backend/internal/products"
	dbpkg "github.com/avelarde/shopflow-backend/pkg/db"
	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/outbox"
	"github.com/avelarde/shopflow-backend/pkg/outbox/payloads"
	"github.com/avelarde/shopflow-backend/pkg/pagination"
)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateReviewInput is the review submission payload.
type CreateReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

// Service manages product reviews and their denormalized aggregates.
type Service interface {
	CreateReview(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	ListReviews(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type service struct {
	dbClient    *dbpkg.Client
	repo        *Repository
	productRepo *product.Repository
	outbox      outboxEmitter
}

// NewService constructs the review service.
func NewService(dbClient *dbpkg.Client, repo *Repository, productRepo *product.Repository, emitter outboxEmitter) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil || productRepo == nil {
		return nil, fmt.Errorf("review and product repositories required")
	}
	return &service{dbClient: dbClient, repo: repo, productRepo: productRepo, outbox: emitter}, nil
}

// CreateReview stores the review and refreshes the product's rating
// aggregate in the same transaction. The mean is kept to one decimal.
func (s *service) CreateReview(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Rating must be between 1 and 5")
	}

	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if !p.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     input.Title,
		Comment:   input.Comment,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		if _, err := repo.Create(ctx, review); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_reviews_product_user") {
				return pkgerrors.New(pkgerrors.CodeValidation, "You have already reviewed this product")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating review")
		}

		count, mean, err := repo.Aggregate(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating reviews")
		}
		rounded := roundRating(mean)
		if err := productRepo.UpdateRatingAggregate(ctx, productID, rounded, int(count)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product rating")
		}

		if s.outbox != nil {
			event := outbox.DomainEvent{
				EventType:     enums.EventReviewCreated,
				AggregateType: enums.AggregateProduct,
				AggregateID:   productID,
				Actor:         &outbox.ActorRef{UserID: userID, Role: enums.UserRoleCustomer.String()},
				Data: payloads.ReviewCreatedEvent{
					ReviewID:    review.ID,
					ProductID:   productID,
					UserID:      userID,
					Rating:      input.Rating,
					NewRating:   rounded,
					ReviewCount: int(count),
				},
				Version:    1,
				OccurredAt: time.Now(),
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing review event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewReviewDTO(review), nil
}

// ListReviews returns a page of reviews, newest first, plus the aggregate.
func (s *service) ListReviews(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	params = pagination.Normalize(params)
	rows, total, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing reviews")
	}

	count, mean, err := s.repo.Aggregate(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating reviews")
	}

	dtos := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewReviewDTO(&rows[i]))
	}
	return &ListResult{
		Reviews:       dtos,
		AverageRating: roundRating(mean),
		ReviewCount:   int(count),
		Page:          pagination.Build(params, total),
	}, nil
}

func roundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}
