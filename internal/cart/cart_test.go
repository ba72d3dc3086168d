package cart

import (
	"math"
	"testing"

	"luminapos/backend/internal/domain"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAddIncrementsSameIdentity(t *testing.T) {
	c := New()
	product := domain.Product{ID: "p1", Name: "Inca Kola", Price: 3.5}

	c.Add(product, "")
	c.Add(product, "")

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestAddVariantCreatesSeparateLineWithVariantPrice(t *testing.T) {
	c := New()
	product := domain.Product{
		ID: "p17", Name: "Panetón", Price: 28.00,
		HasVariants: true,
		Variants: []domain.Variant{
			{ID: "v1", Name: "Caja", Price: 28.00, Stock: 20},
			{ID: "v2", Name: "Lata", Price: 32.00, Stock: 5},
		},
	}

	c.Add(product, "v1")
	c.Add(product, "v2")
	c.Add(product, "v2")

	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("expected two lines, got %d", len(items))
	}
	if items[1].Price != 32.00 {
		t.Fatalf("expected variant price snapshot 32.00, got %v", items[1].Price)
	}
	if items[1].SelectedVariantName != "Lata" {
		t.Fatalf("expected variant name snapshot, got %q", items[1].SelectedVariantName)
	}
	if items[1].Quantity != 2 {
		t.Fatalf("expected variant line quantity 2, got %d", items[1].Quantity)
	}
}

func TestUpdateQuantityClampsAtOne(t *testing.T) {
	c := New()
	c.Add(domain.Product{ID: "p1", Price: 5}, "")

	c.UpdateQuantity("p1", -10, "")

	if got := c.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", got)
	}
}

func TestRemoveTargetsIdentityPair(t *testing.T) {
	c := New()
	product := domain.Product{ID: "p1", Price: 5, Variants: []domain.Variant{{ID: "v1", Price: 6}}}
	c.Add(product, "")
	c.Add(product, "v1")

	c.Remove("p1", "v1")

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line left, got %d", len(items))
	}
	if items[0].SelectedVariantID != "" {
		t.Fatalf("expected the base line to survive")
	}
}

func TestComputeTotalsTaxInclusive(t *testing.T) {
	items := []domain.CartItem{
		{Product: domain.Product{ID: "p1", Price: 10}, Quantity: 2, Discount: 1},
	}
	settings := domain.StoreSettings{TaxRate: 0.18, PricesIncludeTax: true}

	totals := ComputeTotals(items, settings)

	if !approxEqual(totals.Total, 18) {
		t.Fatalf("expected total 18, got %v", totals.Total)
	}
	if !approxEqual(totals.Discount, 2) {
		t.Fatalf("expected discount 2, got %v", totals.Discount)
	}
	wantTax := 18 - 18/1.18
	if !approxEqual(totals.Tax, wantTax) {
		t.Fatalf("expected tax %v, got %v", wantTax, totals.Tax)
	}
	if !approxEqual(totals.Subtotal, 18-wantTax) {
		t.Fatalf("expected subtotal %v, got %v", 18-wantTax, totals.Subtotal)
	}
	if !approxEqual(totals.Subtotal+totals.Tax, totals.Total) {
		t.Fatalf("inclusive mode must keep subtotal+tax == total")
	}
}

func TestComputeTotalsTaxExclusive(t *testing.T) {
	items := []domain.CartItem{
		{Product: domain.Product{ID: "p1", Price: 10}, Quantity: 2, Discount: 1},
	}
	settings := domain.StoreSettings{TaxRate: 0.18, PricesIncludeTax: false}

	totals := ComputeTotals(items, settings)

	if !approxEqual(totals.Subtotal, 18) {
		t.Fatalf("expected subtotal 18, got %v", totals.Subtotal)
	}
	if !approxEqual(totals.Tax, 18*0.18) {
		t.Fatalf("expected tax %v, got %v", 18*0.18, totals.Tax)
	}
	if !approxEqual(totals.Total, 18*1.18) {
		t.Fatalf("expected total %v, got %v", 18*1.18, totals.Total)
	}
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	items := []domain.CartItem{
		{Product: domain.Product{ID: "p1", Price: 2}, Quantity: 1, Discount: 10},
	}
	settings := domain.StoreSettings{TaxRate: 0.18, PricesIncludeTax: true}

	totals := ComputeTotals(items, settings)

	if totals.Total != 0 {
		t.Fatalf("expected total clamped to 0, got %v", totals.Total)
	}
	if totals.Tax != 0 {
		t.Fatalf("expected zero tax on zero total, got %v", totals.Tax)
	}
}
