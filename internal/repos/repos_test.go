package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
	"stockbook/internal/repos"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetStockRejectsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	products := repos.NewProductRepo(db)

	p := &domain.Product{Name: "Bolt", TotalQty: 10, OnhandQty: 10, UnitPrice: decimal.RequireFromString("2.50")}
	if err := products.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	snap, err := products.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := products.SetStock(ctx, snap, 7, 10); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// second writer still holds the old snapshot
	if err := products.SetStock(ctx, snap, 4, 10); !errors.Is(err, repos.ErrStale) {
		t.Fatalf("want ErrStale, got %v", err)
	}
	got, _ := products.Get(ctx, p.ID)
	if got.OnhandQty != 7 || !got.UnitPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("got %+v", got)
	}
}

func TestOnhandCheckConstraint(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	products := repos.NewProductRepo(db)
	p := &domain.Product{Name: "Nut", TotalQty: 1, OnhandQty: 1}
	if err := products.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	snap, _ := products.Get(ctx, p.ID)
	if err := products.SetStock(ctx, snap, -1, 1); err == nil {
		t.Fatal("negative onhand stored")
	}
}

func TestSequenceNextIsSequential(t *testing.T) {
	ctx := context.Background()
	seq := repos.NewSequenceRepo(openDB(t))

	if v, err := seq.Peek(ctx, "DR", "26"); err != nil || v != 1 {
		t.Fatalf("peek on empty: %d %v", v, err)
	}
	for want := 1; want <= 3; want++ {
		v, err := seq.Next(ctx, "DR", "26")
		if err != nil || v != want {
			t.Fatalf("next: got %d %v, want %d", v, err, want)
		}
	}
	if v, _ := seq.Next(ctx, "DR", "27"); v != 1 {
		t.Fatalf("new year should restart at 1, got %d", v)
	}
	if v, _ := seq.Peek(ctx, "DR", "26"); v != 4 {
		t.Fatalf("peek: want 4, got %d", v)
	}
}

func TestDeliveryItemsRoundTrip(t *testing.T) {
	ctx := context.Background()
	deliveries := repos.NewDeliveryRepo(openDB(t))

	d := &domain.Delivery{
		DRNo: "DR-ZK-26-0001", DRYear: "26", Series: 1, DRDate: "2026-05-01", Status: domain.StatusOpen,
		CustomerName: "Acme",
		Items:        []domain.LineItem{{ID: "a", ProductID: "p1", ProductName: "Bolt", Price: decimal.NewFromInt(3), Quantity: 4}},
	}
	if err := deliveries.Insert(ctx, d); err != nil {
		t.Fatal(err)
	}
	got, err := deliveries.Get(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 4 || !got.Subtotal().Equal(decimal.NewFromInt(12)) {
		t.Fatalf("items lost: %+v", got.Items)
	}

	if err := deliveries.Close(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	if err := deliveries.Close(ctx, d.ID); !errors.Is(err, repos.ErrStale) {
		t.Fatalf("closing twice: %v", err)
	}
	if n, _ := deliveries.DeleteOpen(ctx, []string{d.ID}); n != 0 {
		t.Fatal("closed delivery deleted")
	}
	if _, err := deliveries.Get(ctx, "missing"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	for i := 0; i < 2; i++ {
		if err := repos.Seed(ctx, db, "admin@example.com", "Admin#2024"); err != nil {
			t.Fatal(err)
		}
	}
	users, err := repos.NewUserRepo(db).List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Role != domain.RoleAdmin || users[0].Status != domain.UserActive {
		t.Fatalf("got %+v", users)
	}
	cats, _ := repos.NewCategoryRepo(db).List(ctx)
	if len(cats) != 3 {
		t.Fatalf("want 3 categories, got %d", len(cats))
	}
}
