package stock

import (
	"testing"

	"luminapos/backend/internal/domain"
)

func TestApplySaleDirectLineMayGoNegative(t *testing.T) {
	products := []domain.Product{{ID: "p1", Stock: 2}}
	items := []domain.CartItem{{Product: domain.Product{ID: "p1"}, Quantity: 5}}

	updated := ApplySale(products, items)

	if updated[0].Stock != -3 {
		t.Fatalf("expected stock -3, got %d", updated[0].Stock)
	}
}

func TestApplySaleVariantLineRecomputesAggregate(t *testing.T) {
	products := []domain.Product{{
		ID: "p17", Stock: 25, HasVariants: true,
		Variants: []domain.Variant{
			{ID: "v1", Stock: 20},
			{ID: "v2", Stock: 5},
		},
	}}
	items := []domain.CartItem{{
		Product:           domain.Product{ID: "p17"},
		Quantity:          3,
		SelectedVariantID: "v2",
	}}

	updated := ApplySale(products, items)

	if updated[0].Variants[1].Stock != 2 {
		t.Fatalf("expected variant stock 2, got %d", updated[0].Variants[1].Stock)
	}
	if updated[0].Stock != 22 {
		t.Fatalf("expected aggregate stock 22, got %d", updated[0].Stock)
	}
}

func TestApplySalePackCascadesToComponents(t *testing.T) {
	pack := domain.Product{
		ID: "pack1", IsPack: true, Stock: 100,
		PackItems: []domain.PackComponent{{ProductID: "p1", Quantity: 6}},
	}
	products := []domain.Product{
		{ID: "p1", Stock: 50},
		pack,
	}
	items := []domain.CartItem{{Product: pack, Quantity: 2}}

	updated := ApplySale(products, items)

	if updated[0].Stock != 38 {
		t.Fatalf("expected component stock 50-6*2=38, got %d", updated[0].Stock)
	}
	if updated[1].Stock != 98 {
		t.Fatalf("expected pack stock 98, got %d", updated[1].Stock)
	}
}

func TestApplySaleDirectAndPackStack(t *testing.T) {
	pack := domain.Product{
		ID: "pack1", IsPack: true, Stock: 100,
		PackItems: []domain.PackComponent{{ProductID: "p1", Quantity: 2}},
	}
	products := []domain.Product{
		{ID: "p1", Stock: 10},
		pack,
	}
	items := []domain.CartItem{
		{Product: domain.Product{ID: "p1"}, Quantity: 3},
		{Product: pack, Quantity: 2},
	}

	updated := ApplySale(products, items)

	// 10 - 3 direct - 2*2 via the pack.
	if updated[0].Stock != 3 {
		t.Fatalf("expected stock 3, got %d", updated[0].Stock)
	}
}

func TestApplySaleUntouchedProductsKeepStock(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", Stock: 10},
		{ID: "p2", Stock: 7},
	}
	items := []domain.CartItem{{Product: domain.Product{ID: "p1"}, Quantity: 1}}

	updated := ApplySale(products, items)

	if updated[1].Stock != 7 {
		t.Fatalf("expected untouched stock 7, got %d", updated[1].Stock)
	}
}

func TestVariantSum(t *testing.T) {
	variants := []domain.Variant{{Stock: 20}, {Stock: 5}, {Stock: 5}}
	if got := VariantSum(variants); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}
