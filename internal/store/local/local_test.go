package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/store"
)

func TestSettingsDefaultWhenUnset(t *testing.T) {
	s := New()

	settings, err := s.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if !settings.PricesIncludeTax || settings.TaxRate != 0.18 {
		t.Fatalf("expected demo defaults, got %+v", settings)
	}
}

func TestSaveProductUpsertsByID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveProduct(ctx, domain.Product{ID: "p1", Name: "Inca Kola", Stock: 10}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveProduct(ctx, domain.Product{ID: "p1", Name: "Inca Kola 600ml", Stock: 8}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	products, err := s.GetProducts(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected one product, got %d", len(products))
	}
	if products[0].Stock != 8 {
		t.Fatalf("expected updated stock 8, got %d", products[0].Stock)
	}
}

func TestSaveSupplierUpsertsByID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveSupplier(ctx, domain.Supplier{ID: "s1", Name: "Distribuidora Lima"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveSupplier(ctx, domain.Supplier{ID: "s1", Name: "Distribuidora Lima Norte"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	suppliers, err := s.GetSuppliers(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(suppliers) != 1 {
		t.Fatalf("expected one supplier after saving the same id twice, got %d", len(suppliers))
	}
	if suppliers[0].Name != "Distribuidora Lima Norte" {
		t.Fatalf("expected updated name, got %q", suppliers[0].Name)
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveTransaction(ctx, domain.Transaction{ID: "t1", Date: time.Now()}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveTransaction(ctx, domain.Transaction{ID: "t2", Date: time.Now()}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	txs, err := s.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if txs[0].ID != "t2" {
		t.Fatalf("expected newest transaction first, got %s", txs[0].ID)
	}
}

func TestActiveShiftPointer(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.GetActiveShiftID(ctx)
	if err != nil || id != "" {
		t.Fatalf("expected no active shift, got %q err=%v", id, err)
	}

	if err := s.SetActiveShiftID(ctx, "shift-1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	id, _ = s.GetActiveShiftID(ctx)
	if id != "shift-1" {
		t.Fatalf("expected shift-1, got %q", id)
	}

	if err := s.SetActiveShiftID(ctx, ""); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	id, _ = s.GetActiveShiftID(ctx)
	if id != "" {
		t.Fatalf("expected cleared pointer, got %q", id)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetSession(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.SaveSession(ctx, domain.UserProfile{ID: "test-user-demo"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	profile, err := s.GetSession(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.ID != "test-user-demo" {
		t.Fatalf("expected demo profile, got %+v", profile)
	}

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := s.GetSession(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected cleared session, got %v", err)
	}
}

func TestResetReseedsProductsAndClearsTheRest(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.SaveTransaction(ctx, domain.Transaction{ID: "t1"})
	_ = s.SaveShift(ctx, domain.CashShift{ID: "sh1", Status: domain.ShiftStatusOpen})
	_ = s.SetActiveShiftID(ctx, "sh1")
	_ = s.SaveCustomer(ctx, domain.Customer{ID: "c1", Name: "Ana"})

	template := []domain.Product{{ID: "p1", Name: "Inca Kola"}}
	if err := s.Reset(ctx, template); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	products, _ := s.GetProducts(ctx)
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("expected template products, got %+v", products)
	}
	if txs, _ := s.GetTransactions(ctx); len(txs) != 0 {
		t.Fatalf("expected transactions cleared")
	}
	if shifts, _ := s.GetShifts(ctx); len(shifts) != 0 {
		t.Fatalf("expected shifts cleared")
	}
	if customers, _ := s.GetCustomers(ctx); len(customers) != 0 {
		t.Fatalf("expected customers cleared")
	}
	if id, _ := s.GetActiveShiftID(ctx); id != "" {
		t.Fatalf("expected active shift cleared, got %q", id)
	}
}
