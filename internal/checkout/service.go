package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarde/shopflow-backend/internal/cart"
	"github.com/avelarde/shopflow-backend/internal/orders"
	"github.com/avelarde/shopflow-backend/internal/pricing"
	product "github.com/avelarde/shopflow-backend/internal/products"
	dbpkg "github.com/avelarde/shopflow-backend/pkg/db"
	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/logger"
	"github.com/avelarde/shopflow-backend/pkg/metrics"
	"github.com/avelarde/shopflow-backend/pkg/outbox"
	"github.com/avelarde/shopflow-backend/pkg/outbox/payloads"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	ShippingAddress types.ShippingAddress
	Notes           *string
	SaveAddress     bool
}

// Service converts a cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*orders.OrderDTO, error)
}

type service struct {
	dbClient     *dbpkg.Client
	cartRepo     *cart.Repository
	productRepo  *product.Repository
	orderRepo    *orders.Repository
	calculator   *pricing.Calculator
	outbox       outboxEmitter
	orderMetrics *metrics.OrderMetrics
	logg         *logger.Logger
}

// NewService wires the checkout workflow.
func NewService(
	dbClient *dbpkg.Client,
	cartRepo *cart.Repository,
	productRepo *product.Repository,
	orderRepo *orders.Repository,
	calculator *pricing.Calculator,
	emitter outboxEmitter,
	orderMetrics *metrics.OrderMetrics,
	logg *logger.Logger,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cartRepo == nil || productRepo == nil || orderRepo == nil {
		return nil, fmt.Errorf("cart, product and order repositories required")
	}
	if calculator == nil {
		return nil, fmt.Errorf("calculator required")
	}
	return &service{
		dbClient:     dbClient,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		calculator:   calculator,
		outbox:       emitter,
		orderMetrics: orderMetrics,
		logg:         logg,
	}, nil
}

// PlaceOrder runs the whole checkout in a single transaction. Every line is
// validated against live product state before any stock is touched, so a
// failing cart leaves both stock and the cart itself unchanged.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*orders.OrderDTO, error) {
	if !input.ShippingAddress.IsComplete() {
		s.orderMetrics.IncFailure("invalid_address")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Shipping address is incomplete")
	}

	var placed *models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		userCart, err := cartRepo.FindByUserID(ctx, userID)
		if err != nil || userCart == nil || len(userCart.Items) == 0 {
			if err != nil && !isNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
		}

		// Validate every line before decrementing anything.
		fresh := make(map[uuid.UUID]*models.Product, len(userCart.Items))
		for _, item := range userCart.Items {
			p, err := productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				if isNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
			}
			if !p.IsActive {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
			}
			if p.Stock < item.Quantity {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Insufficient stock for %s", p.Name))
			}
			fresh[item.ProductID] = p
		}

		lines := make([]pricing.Line, 0, len(userCart.Items))
		orderItems := make([]models.OrderItem, 0, len(userCart.Items))
		itemCount := 0
		for _, item := range userCart.Items {
			p := fresh[item.ProductID]

			// Conditional decrement; zero rows means a concurrent checkout
			// won the remaining stock between validation and here.
			affected, err := productRepo.DecrementStock(ctx, p.ID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Insufficient stock for %s", p.Name))
			}

			lines = append(lines, pricing.Line{UnitPriceCents: p.PriceCents, Quantity: item.Quantity})
			orderItems = append(orderItems, models.OrderItem{
				ProductID:  p.ID,
				Name:       p.Name,
				PriceCents: p.PriceCents,
				Quantity:   item.Quantity,
				Image:      p.FirstImage(),
			})
			itemCount += item.Quantity
		}

		totals, err := s.calculator.Compute(lines)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing totals")
		}

		now := time.Now()
		order := &models.Order{
			OrderNumber:     NewOrderNumber(now),
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			Items:           orderItems,
			ShippingAddress: input.ShippingAddress,
			SubtotalCents:   totals.SubtotalCents,
			TaxCents:        totals.TaxCents,
			ShippingCents:   totals.ShippingCents,
			TotalCents:      totals.TotalCents,
			Notes:           input.Notes,
		}
		if _, err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
		}

		if err := cartRepo.ClearItems(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
		}

		if input.SaveAddress {
			if err := appendAddress(tx, userID, input.ShippingAddress); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving address")
			}
		}

		if s.outbox != nil {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderPlaced,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{UserID: userID, Role: enums.UserRoleCustomer.String()},
				Data: payloads.OrderPlacedEvent{
					OrderID:     order.ID,
					OrderNumber: order.OrderNumber,
					UserID:      userID,
					ItemCount:   itemCount,
					TotalCents:  order.TotalCents,
					PlacedAt:    now,
				},
				Version: 1,
			}
			// An order is placed exactly once; a replayed insert (e.g. a
			// retried transaction) must not queue a second event.
			if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing order event")
			}
		}

		placed = order
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			s.orderMetrics.IncFailure(string(coded.Code()))
		} else {
			s.orderMetrics.IncFailure("internal")
		}
		return nil, err
	}

	s.orderMetrics.IncPlaced(placed.PaymentStatus.String())
	if s.logg != nil {
		fields := map[string]any{
			"order_id":     placed.ID.String(),
			"order_number": placed.OrderNumber,
			"total_cents":  placed.TotalCents,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "order placed")
	}
	return orders.NewOrderDTO(placed), nil
}

// appendAddress adds the address to the user's book unless an identical
// entry already exists.
func appendAddress(tx *gorm.DB, userID uuid.UUID, addr types.ShippingAddress) error {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	for _, existing := range user.Addresses {
		if existing == addr {
			return nil
		}
	}
	user.Addresses = append(user.Addresses, addr)
	// Struct-based update so the json serializer on the column runs.
	return tx.Model(&user).Select("addresses").Updates(&user).Error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
