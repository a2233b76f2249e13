package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/avelarde/shopflow-backend/pkg/db"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/outbox"
	"github.com/avelarde/shopflow-backend/pkg/outbox/payloads"
	"github.com/avelarde/shopflow-backend/pkg/pagination"
)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the order query and admin status surface.
type Service interface {
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListAllOrders(ctx context.Context, params pagination.Params) (*AdminListResult, error)
	UpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
}

// UpdateStatusInput carries the admin mutation payload.
type UpdateStatusInput struct {
	Status        string
	PaymentStatus *string
	Notes         *string
}

// AdminListResult is a page of orders plus the pagination block.
type AdminListResult struct {
	Orders []OrderDTO      `json:"orders"`
	Page   pagination.Page `json:"pagination"`
}

type service struct {
	repo     *Repository
	dbClient *dbpkg.Client
	outbox   outboxEmitter
}

// NewService constructs the order service.
func NewService(repo *Repository, dbClient *dbpkg.Client, emitter outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, outbox: emitter}, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return dtos, nil
}

// GetOrder returns the order only when owned by the caller. An order owned
// by someone else reads as not found, never as forbidden.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return NewOrderDTO(order), nil
}

// ListAllOrders returns every order in the system for the back office.
func (s *service) ListAllOrders(ctx context.Context, params pagination.Params) (*AdminListResult, error) {
	rows, total, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing all orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return &AdminListResult{
		Orders: dtos,
		Page:   pagination.Build(params, total),
	}, nil
}

// UpdateStatus applies an admin status change. Any enumerated status is
// accepted from any prior status; there is no transition graph.
func (s *service) UpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid order status %q", input.Status))
	}

	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}
	if input.PaymentStatus != nil {
		paymentStatus, err := enums.ParsePaymentStatus(*input.PaymentStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid payment status %q", *input.PaymentStatus))
		}
		updates["payment_status"] = paymentStatus
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	current, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	previous := current.Status

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).UpdateStatus(ctx, orderID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		if s.outbox != nil && previous != status {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   orderID,
				Actor:         &outbox.ActorRef{UserID: actorID, Role: enums.UserRoleAdmin.String()},
				Data: payloads.OrderStatusChangedEvent{
					OrderID:     orderID,
					OrderNumber: current.OrderNumber,
					UserID:      current.UserID,
					From:        previous,
					To:          status,
					ChangedAt:   time.Now(),
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing status event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading order")
	}
	return NewOrderDTO(updated), nil
}
