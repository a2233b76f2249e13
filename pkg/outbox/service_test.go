package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	"github.com/avelarde/shopflow-backend/pkg/outbox/payloads"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:outbox_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.OutboxEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestEmitStoresEnvelope(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	orderID := uuid.New()
	userID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Actor:         &ActorRef{UserID: userID, Role: "customer"},
		Data: payloads.OrderPlacedEvent{
			OrderID:    orderID,
			UserID:     userID,
			ItemCount:  2,
			TotalCents: 6500,
		},
		Version: 1,
	}

	if err := svc.Emit(context.Background(), db, event); err != nil {
		t.Fatalf("emit: %v", err)
	}

	rows, err := repo.FetchUnpublishedTx(db, 10, 5)
	if err != nil {
		t.Fatalf("fetch unpublished: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rows))
	}
	row := rows[0]
	if row.EventType != enums.EventOrderPlaced {
		t.Fatalf("unexpected event type %s", row.EventType)
	}
	if row.AggregateID != orderID {
		t.Fatalf("unexpected aggregate id %s", row.AggregateID)
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.EventID == "" {
		t.Fatal("missing event id")
	}
	if envelope.Actor == nil || envelope.Actor.UserID != userID {
		t.Fatal("actor not preserved")
	}

	var data payloads.OrderPlacedEvent
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.TotalCents != 6500 {
		t.Fatalf("unexpected total %d", data.TotalCents)
	}
}

func TestEmitIfNotExistsSkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	event := DomainEvent{
		EventType:     enums.EventReviewCreated,
		AggregateType: enums.AggregateReview,
		AggregateID:   uuid.New(),
		Data:          payloads.ReviewCreatedEvent{Rating: 5},
		Version:       1,
	}

	ctx := context.Background()
	if err := svc.EmitIfNotExists(ctx, db, event); err != nil {
		t.Fatalf("first emit: %v", err)
	}
	if err := svc.EmitIfNotExists(ctx, db, event); err != nil {
		t.Fatalf("second emit: %v", err)
	}

	var count int64
	if err := db.Model(&models.OutboxEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 event, got %d", count)
	}
}

func TestMarkPublishedAndFailed(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	event := DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Data:          payloads.OrderStatusChangedEvent{},
		Version:       1,
	}
	if err := svc.Emit(context.Background(), db, event); err != nil {
		t.Fatalf("emit: %v", err)
	}

	rows, err := repo.FetchUnpublishedTx(db, 10, 5)
	if err != nil || len(rows) != 1 {
		t.Fatalf("fetch: %v rows=%d", err, len(rows))
	}
	id := rows[0].ID

	if err := repo.MarkFailedTx(db, id, errors.New("publish timeout")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	var row models.OutboxEvent
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.AttemptCount != 1 || row.LastError == nil {
		t.Fatalf("failure not recorded: %+v", row)
	}

	if err := repo.MarkPublishedTx(db, id); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	rows, err = repo.FetchUnpublishedTx(db, 10, 5)
	if err != nil {
		t.Fatalf("fetch after publish: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no unpublished rows, got %d", len(rows))
	}
}
