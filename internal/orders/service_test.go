package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avelarde/shopflow-backend/pkg/config"
	dbpkg "github.com/avelarde/shopflow-backend/pkg/db"
	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/outbox"
	"github.com/avelarde/shopflow-backend/pkg/pagination"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

func openTestClient(t *testing.T) *dbpkg.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	client, err := dbpkg.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OutboxEvent{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return client
}

func newTestService(t *testing.T) (Service, *dbpkg.Client) {
	t.Helper()

	client := openTestClient(t)
	repo := NewRepository(client.DB())
	emitter := outbox.NewService(outbox.NewRepository(client.DB()), nil)
	svc, err := NewService(repo, client, emitter)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, client
}

func mustCreateOrder(t *testing.T, client *dbpkg.Client, userID uuid.UUID, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{
		OrderNumber:   fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:3]),
		UserID:        userID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		ShippingAddress: types.ShippingAddress{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62704",
			Country: "US",
		},
		SubtotalCents: 5000,
		TaxCents:      500,
		ShippingCents: 1000,
		TotalCents:    6500,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Name: "Widget", PriceCents: 2500, Quantity: 2},
		},
	}
	if mutate != nil {
		mutate(order)
	}
	if err := client.DB().Create(order).Error; err != nil {
		t.Fatalf("creating test order: %v", err)
	}
	return order
}

func TestListOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	older := mustCreateOrder(t, client, userID, nil)
	if err := client.DB().Model(&models.Order{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdating order: %v", err)
	}
	newer := mustCreateOrder(t, client, userID, nil)
	mustCreateOrder(t, client, uuid.New(), nil) // someone else's order

	orders, err := svc.ListOrders(ctx, userID)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != newer.ID {
		t.Errorf("expected newest order first, got %s", orders[0].ID)
	}
	if orders[1].ID != older.ID {
		t.Errorf("expected older order second, got %s", orders[1].ID)
	}
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	order := mustCreateOrder(t, client, owner, nil)

	got, err := svc.GetOrder(ctx, owner, order.ID)
	if err != nil {
		t.Fatalf("GetOrder as owner: %v", err)
	}
	if got.OrderNumber != order.OrderNumber {
		t.Errorf("expected order number %s, got %s", order.OrderNumber, got.OrderNumber)
	}
	if len(got.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(got.Items))
	}

	// A foreign order must read as not found, never forbidden.
	_, err = svc.GetOrder(ctx, uuid.New(), order.ID)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	_, err = svc.GetOrder(ctx, owner, uuid.New())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing order, got %v", err)
	}
}

func TestListAllOrdersPaginates(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustCreateOrder(t, client, uuid.New(), nil)
	}

	result, err := svc.ListAllOrders(ctx, pagination.Params{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListAllOrders: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Errorf("expected 2 orders on page 2, got %d", len(result.Orders))
	}
	if result.Page.TotalItems != 5 {
		t.Errorf("expected 5 total items, got %d", result.Page.TotalItems)
	}
	if result.Page.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", result.Page.TotalPages)
	}
	if !result.Page.HasNext || !result.Page.HasPrev {
		t.Errorf("expected middle page to have next and prev")
	}
}

func TestUpdateStatusAcceptsAnyTransition(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()
	actor := uuid.New()
	order := mustCreateOrder(t, client, uuid.New(), func(o *models.Order) {
		o.Status = enums.OrderStatusDelivered
	})

	notes := "customer requested refund"
	updated, err := svc.UpdateStatus(ctx, actor, order.ID, UpdateStatusInput{
		Status: "cancelled",
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != "cancelled" {
		t.Errorf("expected status cancelled, got %s", updated.Status)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("expected notes to be persisted")
	}

	var events []models.OutboxEvent
	if err := client.DB().Find(&events).Error; err != nil {
		t.Fatalf("loading outbox events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(events))
	}
	if events[0].EventType != enums.EventOrderStatusChanged {
		t.Errorf("expected order status changed event, got %s", events[0].EventType)
	}
	if events[0].AggregateID != order.ID {
		t.Errorf("expected aggregate id %s, got %s", order.ID, events[0].AggregateID)
	}
}

func TestUpdateStatusNoopSkipsEvent(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()
	order := mustCreateOrder(t, client, uuid.New(), nil)

	if _, err := svc.UpdateStatus(ctx, uuid.New(), order.ID, UpdateStatusInput{Status: "pending"}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	var count int64
	if err := client.DB().Model(&models.OutboxEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no outbox event for a no-op status write, got %d", count)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()
	order := mustCreateOrder(t, client, uuid.New(), nil)

	_, err := svc.UpdateStatus(ctx, uuid.New(), order.ID, UpdateStatusInput{Status: "teleported"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	bad := "comped"
	_, err = svc.UpdateStatus(ctx, uuid.New(), order.ID, UpdateStatusInput{Status: "shipped", PaymentStatus: &bad})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown payment status, got %v", err)
	}

	_, err = svc.UpdateStatus(ctx, uuid.New(), uuid.New(), UpdateStatusInput{Status: "shipped"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing order, got %v", err)
	}
}
