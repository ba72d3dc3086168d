// Package stock implements the checkout stock deduction pass: one walk
// over the full catalog per sale, covering direct lines, variant-level
// stock and pack component cascades.
package stock

import "luminapos/backend/internal/domain"

// ApplySale returns the catalog with stock deducted for one completed
// sale. For every product:
//
//  1. Direct cart lines for the product decrement its variant's stock when
//     a variant was selected, otherwise the product's own stock field.
//  2. Every pack line in the cart that lists the product as a component
//     decrements its stock by componentQty × packsSold. A product can be
//     hit by both steps in the same sale.
//  3. Variant products get their stock recomputed as the sum of variant
//     stocks afterwards; the base field is derived, never authoritative.
//
// Stock is allowed to go negative: this pass records what was sold, it
// does not block sales on insufficient stock.
func ApplySale(products []domain.Product, items []domain.CartItem) []domain.Product {
	updated := make([]domain.Product, 0, len(products))

	for _, p := range products {
		newStock := p.Stock
		newVariants := cloneVariants(p.Variants)

		for _, line := range items {
			if line.ID != p.ID {
				continue
			}
			if line.SelectedVariantID != "" && len(newVariants) > 0 {
				for i := range newVariants {
					if newVariants[i].ID == line.SelectedVariantID {
						newVariants[i].Stock -= line.Quantity
					}
				}
			} else {
				newStock -= line.Quantity
			}
		}

		for _, line := range items {
			if !line.IsPack {
				continue
			}
			for _, component := range line.PackItems {
				if component.ProductID == p.ID {
					newStock -= component.Quantity * line.Quantity
				}
			}
		}

		if p.HasVariants {
			newStock = 0
			for _, v := range newVariants {
				newStock += v.Stock
			}
		}

		p.Stock = newStock
		p.Variants = newVariants
		updated = append(updated, p)
	}

	return updated
}

// VariantSum recomputes the derived aggregate stock of a variant product.
func VariantSum(variants []domain.Variant) int {
	sum := 0
	for _, v := range variants {
		sum += v.Stock
	}
	return sum
}

func cloneVariants(variants []domain.Variant) []domain.Variant {
	if variants == nil {
		return nil
	}
	cloned := make([]domain.Variant, len(variants))
	copy(cloned, variants)
	return cloned
}
