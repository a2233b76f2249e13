package product

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, mutate func(*models.Product)) *models.Product {
	t.Helper()
	row := &models.Product{
		Name:        "Test Product",
		Slug:        "test-product-" + uuid.NewString(),
		Description: "A product used in tests",
		Category:    "electronics",
		PriceCents:  1999,
		Stock:       10,
		IsActive:    true,
	}
	if mutate != nil {
		mutate(row)
	}
	if err := tx.Create(row).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return row
}
