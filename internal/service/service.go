package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"luminapos/backend/internal/cart"
	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/stock"
	"luminapos/backend/internal/store"
	"luminapos/backend/internal/store/router"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service owns the business rules on top of the persistence router:
// product validation, per-terminal carts, checkout, and the cash shift
// state machine. Shift mutual exclusion is enforced here, not in the
// stores: there is exactly one open shift per store at a time.
type Service struct {
	router *router.Router

	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func New(r *router.Router) *Service {
	return &Service{
		router: r,
		carts:  make(map[string]*cart.Cart),
	}
}

func (s *Service) Products(ctx context.Context) []domain.Product {
	return s.router.GetProducts(ctx)
}

// SaveProduct validates and persists a product. The three shapes are
// mutually exclusive: a product is plain, variant-carrying or a pack,
// and switching shape clears the other shape's data. Variant products
// get their stock recomputed from the variants; packs with no manual
// stock default to 100 so they stay sellable.
func (s *Service) SaveProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name required", store.ErrValidation)
	}
	if product.Price < 0 {
		return domain.Product{}, fmt.Errorf("%w: price cannot be negative", store.ErrValidation)
	}
	if product.HasVariants && product.IsPack {
		return domain.Product{}, fmt.Errorf("%w: product cannot be both variant and pack", store.ErrValidation)
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	switch {
	case product.HasVariants:
		if len(product.Variants) == 0 {
			return domain.Product{}, fmt.Errorf("%w: variant product needs at least one variant", store.ErrValidation)
		}
		for i := range product.Variants {
			product.Variants[i].Name = strings.TrimSpace(product.Variants[i].Name)
			if product.Variants[i].Name == "" {
				return domain.Product{}, fmt.Errorf("%w: variant name required", store.ErrValidation)
			}
			if product.Variants[i].ID == "" {
				product.Variants[i].ID = uuid.NewString()
			}
		}
		product.IsPack = false
		product.PackItems = nil
		product.Stock = stock.VariantSum(product.Variants)

	case product.IsPack:
		if len(product.PackItems) == 0 {
			return domain.Product{}, fmt.Errorf("%w: pack needs at least one component", store.ErrValidation)
		}
		catalog := s.router.GetProducts(ctx)
		byID := make(map[string]domain.Product, len(catalog))
		for _, p := range catalog {
			byID[p.ID] = p
		}
		for i, component := range product.PackItems {
			if component.Quantity < 1 {
				return domain.Product{}, fmt.Errorf("%w: pack component quantity must be at least 1", store.ErrValidation)
			}
			ref, ok := byID[component.ProductID]
			if !ok {
				return domain.Product{}, fmt.Errorf("%w: pack component %s not found", store.ErrValidation, component.ProductID)
			}
			if ref.IsPack {
				return domain.Product{}, fmt.Errorf("%w: pack cannot contain another pack", store.ErrValidation)
			}
			product.PackItems[i].ProductName = ref.Name
		}
		product.HasVariants = false
		product.Variants = nil
		if product.Stock == 0 {
			product.Stock = 100
		}

	default:
		product.HasVariants = false
		product.Variants = nil
		product.IsPack = false
		product.PackItems = nil
	}

	s.router.SaveProduct(ctx, product)
	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	found := false
	for _, p := range s.router.GetProducts(ctx) {
		if p.ID == productID {
			found = true
			break
		}
	}
	if !found {
		return store.ErrNotFound
	}
	s.router.DeleteProduct(ctx, productID)
	return nil
}

func (s *Service) AddToCart(ctx context.Context, terminalID string, productID string, variantID string) ([]domain.CartItem, error) {
	var product *domain.Product
	for _, p := range s.router.GetProducts(ctx) {
		if p.ID == productID {
			found := p
			product = &found
			break
		}
	}
	if product == nil {
		return nil, store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lockedCartFor(terminalID)
	c.Add(*product, variantID)
	return c.Items(), nil
}

func (s *Service) UpdateCartQuantity(terminalID string, productID string, delta int, variantID string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lockedCartFor(terminalID)
	c.UpdateQuantity(productID, delta, variantID)
	return c.Items()
}

func (s *Service) RemoveFromCart(terminalID string, productID string, variantID string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lockedCartFor(terminalID)
	c.Remove(productID, variantID)
	return c.Items()
}

func (s *Service) UpdateCartDiscount(terminalID string, productID string, discount float64, variantID string) ([]domain.CartItem, error) {
	if discount < 0 {
		return nil, fmt.Errorf("%w: discount cannot be negative", store.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lockedCartFor(terminalID)
	c.UpdateDiscount(productID, discount, variantID)
	return c.Items(), nil
}

func (s *Service) ClearCart(terminalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockedCartFor(terminalID).Clear()
}

func (s *Service) CartItems(terminalID string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockedCartFor(terminalID).Items()
}

func (s *Service) CartTotals(ctx context.Context, terminalID string) cart.Totals {
	settings := s.router.GetSettings(ctx)
	return cart.ComputeTotals(s.CartItems(terminalID), settings)
}

func (s *Service) lockedCartFor(terminalID string) *cart.Cart {
	if terminalID == "" {
		terminalID = "default"
	}
	c, ok := s.carts[terminalID]
	if !ok {
		c = cart.New()
		s.carts[terminalID] = c
	}
	return c
}

// Checkout turns the terminal's cart into a transaction: it requires an
// open shift, computes totals under the store's tax mode, deducts stock
// across the whole catalog, persists, and clears the cart.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	shiftID := s.router.GetActiveShiftID(ctx)
	if shiftID == "" {
		return domain.CheckoutResponse{}, store.ErrNoOpenShift
	}

	items := s.CartItems(req.TerminalID)
	if len(items) == 0 {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: cart is empty", store.ErrValidation)
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: payment method required", store.ErrValidation)
	}

	settings := s.router.GetSettings(ctx)
	totals := cart.ComputeTotals(items, settings)

	tx := domain.Transaction{
		ID:            uuid.NewString(),
		Date:          time.Now().UTC(),
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: req.PaymentMethod,
		Payments:      req.Payments,
		ShiftID:       shiftID,
	}

	s.router.SaveTransaction(ctx, tx)

	products := s.router.GetProducts(ctx)
	s.router.SaveProducts(ctx, stock.ApplySale(products, items))

	s.ClearCart(req.TerminalID)
	return domain.CheckoutResponse{Transaction: tx}, nil
}

func (s *Service) Transactions(ctx context.Context) []domain.Transaction {
	return s.router.GetTransactions(ctx)
}

// OpenShift starts a new cash shift with the counted drawer float and
// writes the opening movement. Only one shift can be open at a time.
func (s *Service) OpenShift(ctx context.Context, req domain.ShiftOpenRequest) (domain.CashShift, error) {
	if req.StartAmount < 0 {
		return domain.CashShift{}, fmt.Errorf("%w: start amount cannot be negative", store.ErrValidation)
	}
	if s.router.GetActiveShiftID(ctx) != "" {
		return domain.CashShift{}, store.ErrShiftAlreadyOpen
	}

	shift := domain.CashShift{
		ID:          uuid.NewString(),
		StartTime:   time.Now().UTC(),
		StartAmount: req.StartAmount,
		Status:      domain.ShiftStatusOpen,
	}
	s.router.SaveShift(ctx, shift)
	s.router.SetActiveShiftID(ctx, shift.ID)
	s.recordMovement(ctx, shift.ID, domain.MovementOpen, req.StartAmount, req.Description)
	return shift, nil
}

// RecordMovement logs a manual cash in or out against the open shift.
func (s *Service) RecordMovement(ctx context.Context, req domain.MovementRequest) (domain.CashMovement, error) {
	if req.Type != domain.MovementIn && req.Type != domain.MovementOut {
		return domain.CashMovement{}, fmt.Errorf("%w: movement type must be IN or OUT", store.ErrValidation)
	}
	if req.Amount <= 0 {
		return domain.CashMovement{}, fmt.Errorf("%w: amount must be positive", store.ErrValidation)
	}

	shiftID := s.router.GetActiveShiftID(ctx)
	if shiftID == "" {
		return domain.CashMovement{}, store.ErrNoOpenShift
	}

	return s.recordMovement(ctx, shiftID, req.Type, req.Amount, req.Description), nil
}

func (s *Service) recordMovement(ctx context.Context, shiftID string, movementType string, amount float64, description string) domain.CashMovement {
	movement := domain.CashMovement{
		ID:          uuid.NewString(),
		ShiftID:     shiftID,
		Type:        movementType,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
	s.router.SaveMovement(ctx, movement)
	return movement
}

// CloseShift ends the open shift with the counted drawer amount, writes
// the closing movement, clears the active pointer, and returns the
// closing report: the shift plus every movement and transaction
// attributed to it.
func (s *Service) CloseShift(ctx context.Context, req domain.ShiftCloseRequest) (domain.ClosingReport, error) {
	shiftID := s.router.GetActiveShiftID(ctx)
	if shiftID == "" {
		return domain.ClosingReport{}, store.ErrNoOpenShift
	}

	var shift *domain.CashShift
	for _, sh := range s.router.GetShifts(ctx) {
		if sh.ID == shiftID {
			found := sh
			shift = &found
			break
		}
	}
	if shift == nil {
		return domain.ClosingReport{}, store.ErrNotFound
	}

	now := time.Now().UTC()
	endAmount := req.EndAmount
	shift.EndTime = &now
	shift.EndAmount = &endAmount
	shift.Status = domain.ShiftStatusClosed

	s.router.SaveShift(ctx, *shift)
	s.recordMovement(ctx, shiftID, domain.MovementClose, req.EndAmount, req.Description)
	s.router.SetActiveShiftID(ctx, "")

	report := domain.ClosingReport{
		Shift:        *shift,
		Movements:    []domain.CashMovement{},
		Transactions: []domain.Transaction{},
	}
	for _, m := range s.router.GetMovements(ctx) {
		if m.ShiftID == shiftID {
			report.Movements = append(report.Movements, m)
		}
	}
	for _, tx := range s.router.GetTransactions(ctx) {
		if tx.ShiftID == shiftID {
			report.Transactions = append(report.Transactions, tx)
		}
	}
	return report, nil
}

// ActiveShift returns the open shift, or ErrNoOpenShift when the drawer
// is closed.
func (s *Service) ActiveShift(ctx context.Context) (domain.CashShift, error) {
	shiftID := s.router.GetActiveShiftID(ctx)
	if shiftID == "" {
		return domain.CashShift{}, store.ErrNoOpenShift
	}
	for _, sh := range s.router.GetShifts(ctx) {
		if sh.ID == shiftID {
			return sh, nil
		}
	}
	return domain.CashShift{}, store.ErrNotFound
}

func (s *Service) Shifts(ctx context.Context) []domain.CashShift {
	return s.router.GetShifts(ctx)
}

// ShiftSummary derives the drawer expectation for one shift by scanning
// its movements and transactions. Cash sales count payments made in
// cash; split payments contribute only their cash legs.
func (s *Service) ShiftSummary(ctx context.Context, shiftID string) (domain.ShiftSummary, error) {
	var shift *domain.CashShift
	for _, sh := range s.router.GetShifts(ctx) {
		if sh.ID == shiftID {
			found := sh
			shift = &found
			break
		}
	}
	if shift == nil {
		return domain.ShiftSummary{}, store.ErrNotFound
	}

	summary := domain.ShiftSummary{ShiftID: shiftID}
	for _, tx := range s.router.GetTransactions(ctx) {
		if tx.ShiftID != shiftID {
			continue
		}
		cashPart, digitalPart := splitPayment(tx)
		summary.CashSales += cashPart
		summary.DigitalSales += digitalPart
	}
	for _, m := range s.router.GetMovements(ctx) {
		if m.ShiftID != shiftID {
			continue
		}
		switch m.Type {
		case domain.MovementIn:
			summary.CashIn += m.Amount
		case domain.MovementOut:
			summary.CashOut += m.Amount
		}
	}
	summary.ExpectedCash = shift.StartAmount + summary.CashSales + summary.CashIn - summary.CashOut
	return summary, nil
}

func splitPayment(tx domain.Transaction) (cashPart float64, digitalPart float64) {
	if len(tx.Payments) > 0 {
		for _, p := range tx.Payments {
			if p.Method == "cash" {
				cashPart += p.Amount
			} else {
				digitalPart += p.Amount
			}
		}
		return cashPart, digitalPart
	}
	if tx.PaymentMethod == "cash" {
		return tx.Total, 0
	}
	return 0, tx.Total
}

func (s *Service) Settings(ctx context.Context) domain.StoreSettings {
	return s.router.GetSettings(ctx)
}

func (s *Service) SaveSettings(ctx context.Context, settings domain.StoreSettings) error {
	if settings.TaxRate < 0 || settings.TaxRate > 1 {
		return fmt.Errorf("%w: tax rate must be between 0 and 1", store.ErrValidation)
	}
	s.router.SaveSettings(ctx, settings)
	return nil
}

func (s *Service) Customers(ctx context.Context) []domain.Customer {
	return s.router.GetCustomers(ctx)
}

func (s *Service) SaveCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name required", store.ErrValidation)
	}
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	s.router.SaveCustomer(ctx, customer)
	return customer, nil
}

func (s *Service) Suppliers(ctx context.Context) []domain.Supplier {
	return s.router.GetSuppliers(ctx)
}

func (s *Service) SaveSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return domain.Supplier{}, fmt.Errorf("%w: supplier name required", store.ErrValidation)
	}
	if supplier.ID == "" {
		supplier.ID = uuid.NewString()
	}
	s.router.SaveSupplier(ctx, supplier)
	return supplier, nil
}

func (s *Service) Purchases(ctx context.Context) []domain.Purchase {
	return s.router.GetPurchases(ctx)
}

// RecordPurchase registers a stock receipt and increments the received
// products' stock. Variant products are skipped: their stock is derived
// from the variants and receipts are recorded per variant elsewhere.
func (s *Service) RecordPurchase(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	if len(purchase.Items) == 0 {
		return domain.Purchase{}, fmt.Errorf("%w: purchase needs at least one item", store.ErrValidation)
	}
	for _, item := range purchase.Items {
		if item.Quantity < 1 {
			return domain.Purchase{}, fmt.Errorf("%w: purchase quantity must be at least 1", store.ErrValidation)
		}
	}
	if purchase.ID == "" {
		purchase.ID = uuid.NewString()
	}
	if purchase.Date.IsZero() {
		purchase.Date = time.Now().UTC()
	}

	products := s.router.GetProducts(ctx)
	for i := range products {
		for _, item := range purchase.Items {
			if products[i].ID != item.ProductID {
				continue
			}
			if products[i].HasVariants {
				log.Printf("[service] WARN: purchase %s targets variant product %s, stock not adjusted", purchase.ID, item.ProductID)
				continue
			}
			products[i].Stock += item.Quantity
		}
	}

	s.router.SavePurchase(ctx, purchase)
	s.router.SaveProducts(ctx, products)
	return purchase, nil
}

func (s *Service) GetDemoTemplate(ctx context.Context) []domain.Product {
	return s.router.GetDemoTemplate(ctx)
}

func (s *Service) SaveDemoProductToTemplate(ctx context.Context, product domain.Product) (router.SyncResult, error) {
	validated, err := s.SaveProduct(ctx, product)
	if err != nil {
		return router.SyncResult{}, err
	}
	return s.router.SaveDemoProductToTemplate(ctx, validated), nil
}

func (s *Service) DeleteDemoProduct(ctx context.Context, productID string) router.SyncResult {
	return s.router.DeleteDemoProduct(ctx, productID)
}

func (s *Service) ResetDemoData(ctx context.Context) error {
	return s.router.ResetDemoData(ctx)
}

func (s *Service) SaveLead(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	if lead.Name == "" {
		return domain.Lead{}, fmt.Errorf("%w: lead name required", store.ErrValidation)
	}
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = "new"
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if err := s.router.SaveLead(ctx, lead); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (s *Service) Leads(ctx context.Context) ([]domain.Lead, error) {
	return s.router.GetLeads(ctx)
}

func (s *Service) DeleteLead(ctx context.Context, id string) error {
	return s.router.DeleteLead(ctx, id)
}

func (s *Service) AllStores(ctx context.Context) ([]domain.Store, error) {
	return s.router.GetAllStores(ctx)
}

func (s *Service) DeleteStore(ctx context.Context, storeID string) error {
	return s.router.DeleteStore(ctx, storeID)
}
