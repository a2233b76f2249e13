package product

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/pagination"
)

func TestDecrementStockConditional(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := mustCreateTestProduct(t, db, func(p *models.Product) { p.Stock = 5 })

	affected, err := repo.DecrementStock(ctx, row.ID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	reloaded, err := repo.FindByID(ctx, row.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("stock = %d, want 2", reloaded.Stock)
	}

	// Not enough stock left: the conditional update must touch zero rows.
	affected, err = repo.DecrementStock(ctx, row.ID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected, got %d", affected)
	}

	reloaded, err = repo.FindByID(ctx, row.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("stock mutated on failed decrement: %d", reloaded.Stock)
	}
}

func TestDecrementStockSkipsInactive(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewRepository(db)

	row := mustCreateTestProduct(t, db, func(p *models.Product) { p.IsActive = false })

	affected, err := repo.DecrementStock(context.Background(), row.ID, 1)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows for inactive product, got %d", affected)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Name = "Budget Keyboard"
		p.Category = "electronics"
		p.PriceCents = 1500
	})
	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Name = "Premium Keyboard"
		p.Category = "electronics"
		p.PriceCents = 9500
		p.IsFeatured = true
	})
	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Name = "Desk Lamp"
		p.Category = "home"
		p.PriceCents = 2500
	})
	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Name = "Hidden Product"
		p.IsActive = false
	})

	category := "electronics"
	rows, total, err := repo.List(ctx, ListInput{
		Filters: ListFilters{Category: &category},
		Sort:    SortPriceAsc,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 electronics, got total=%d len=%d", total, len(rows))
	}
	if rows[0].PriceCents > rows[1].PriceCents {
		t.Fatalf("expected ascending price order")
	}

	rows, total, err = repo.List(ctx, ListInput{
		Filters: ListFilters{Query: "keyboard"},
		Sort:    SortNewest,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 keyboard matches, got %d", total)
	}

	featured := true
	rows, total, err = repo.List(ctx, ListInput{
		Filters: ListFilters{Featured: &featured},
	})
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if total != 1 || rows[0].Name != "Premium Keyboard" {
		t.Fatalf("unexpected featured result total=%d", total)
	}

	// Inactive rows stay hidden unless asked for explicitly.
	_, total, err = repo.List(ctx, ListInput{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 active products, got %d", total)
	}
	_, total, err = repo.List(ctx, ListInput{IncludeInactive: true})
	if err != nil {
		t.Fatalf("list inactive: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected 4 products including inactive, got %d", total)
	}
}

func TestListPaginates(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustCreateTestProduct(t, db, func(p *models.Product) { p.PriceCents = int64(1000 + i*100) })
	}

	rows, total, err := repo.List(ctx, ListInput{
		Pagination: pagination.Params{Page: 2, Limit: 2},
		Sort:       SortPriceAsc,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(rows) != 2 {
		t.Fatalf("page len = %d, want 2", len(rows))
	}
	if rows[0].PriceCents != 1200 {
		t.Fatalf("unexpected first row price %d", rows[0].PriceCents)
	}
}

func TestListCategories(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewRepository(db)

	mustCreateTestProduct(t, db, func(p *models.Product) { p.Category = "home" })
	mustCreateTestProduct(t, db, func(p *models.Product) { p.Category = "electronics" })
	mustCreateTestProduct(t, db, func(p *models.Product) { p.Category = "electronics" })
	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Category = "hidden"
		p.IsActive = false
	})

	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", categories)
	}
	if categories[0] != "electronics" || categories[1] != "home" {
		t.Fatalf("unexpected order %v", categories)
	}
}

func TestDeactivate(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := mustCreateTestProduct(t, db, nil)

	affected, err := repo.Deactivate(ctx, row.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	reloaded, err := repo.FindByID(ctx, row.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("product still active")
	}

	affected, err = repo.Deactivate(ctx, uuid.New())
	if err != nil {
		t.Fatalf("deactivate missing: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows for missing product, got %d", affected)
	}
}
