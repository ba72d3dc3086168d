package cart

import (
	"luminapos/backend/internal/domain"
)

// Cart accumulates sale lines for one terminal. Line identity is the
// (productID, variantID) pair. Cart is not safe for concurrent use; the
// service serializes access per terminal.
type Cart struct {
	items []domain.CartItem
}

func New() *Cart {
	return &Cart{items: make([]domain.CartItem, 0, 8)}
}

// Add appends a line for the product, or increments the quantity when a
// line with the same (productID, variantID) identity already exists. When
// a variant is selected its price and name are snapshotted into the line.
func (c *Cart) Add(product domain.Product, variantID string) {
	for i := range c.items {
		if c.items[i].ID == product.ID && c.items[i].SelectedVariantID == variantID {
			c.items[i].Quantity++
			return
		}
	}

	line := domain.CartItem{Product: product, Quantity: 1, SelectedVariantID: variantID}
	if variantID != "" {
		for _, v := range product.Variants {
			if v.ID == variantID {
				line.Price = v.Price
				line.SelectedVariantName = v.Name
				break
			}
		}
	}
	c.items = append(c.items, line)
}

// UpdateQuantity adds delta to the matching line's quantity, clamped to a
// minimum of 1. Unknown identities are ignored.
func (c *Cart) UpdateQuantity(productID string, delta int, variantID string) {
	for i := range c.items {
		if c.items[i].ID == productID && c.items[i].SelectedVariantID == variantID {
			qty := c.items[i].Quantity + delta
			if qty < 1 {
				qty = 1
			}
			c.items[i].Quantity = qty
			return
		}
	}
}

// Remove deletes the line with the matching identity, if present.
func (c *Cart) Remove(productID string, variantID string) {
	for i := range c.items {
		if c.items[i].ID == productID && c.items[i].SelectedVariantID == variantID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateDiscount sets the per-unit discount on the matching line.
func (c *Cart) UpdateDiscount(productID string, discount float64, variantID string) {
	for i := range c.items {
		if c.items[i].ID == productID && c.items[i].SelectedVariantID == variantID {
			c.items[i].Discount = discount
			return
		}
	}
}

func (c *Cart) Clear() {
	c.items = c.items[:0]
}

// Items returns a copy of the cart lines, snapshot-safe for checkout.
func (c *Cart) Items() []domain.CartItem {
	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Totals carries the checkout money split. Subtotal and Total are the
// values stored on the transaction; their relationship to Tax depends on
// whether prices include tax (see ComputeTotals).
type Totals struct {
	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64
}

// ComputeTotals derives the transaction amounts from the cart lines.
//
// The gross total is max(0, Σ price×qty − Σ discount×qty). When prices
// include tax the stored total IS the gross total and the stored subtotal
// is the total minus the tax carved out of it; when prices exclude tax the
// stored subtotal IS the gross total and tax is added on top. This
// asymmetry decides whether the stored total already contains tax and must
// not be "simplified".
func ComputeTotals(items []domain.CartItem, settings domain.StoreSettings) Totals {
	subtotal := 0.0
	discount := 0.0
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
		discount += item.Discount * float64(item.Quantity)
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	if settings.PricesIncludeTax {
		tax := total - total/(1+settings.TaxRate)
		return Totals{
			Subtotal: total - tax,
			Discount: discount,
			Tax:      tax,
			Total:    total,
		}
	}

	tax := total * settings.TaxRate
	return Totals{
		Subtotal: total,
		Discount: discount,
		Tax:      tax,
		Total:    total + tax,
	}
}
