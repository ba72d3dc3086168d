// Package local implements the demo-mode backend: a single-device
// key-value store with one JSON blob per entity type under a fixed key,
// mirroring the browser-storage layout the demo sessions rely on.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/store"
)

const (
	keySession       = "lumina_session"
	keyProducts      = "lumina_products"
	keyTransactions  = "lumina_transactions"
	keyPurchases     = "lumina_purchases"
	keySettings      = "lumina_settings"
	keyCustomers     = "lumina_customers"
	keySuppliers     = "lumina_suppliers"
	keyShifts        = "lumina_shifts"
	keyMovements     = "lumina_movements"
	keyActiveShiftID = "lumina_active_shift"
)

type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) getJSON(key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *Store) remove(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

func (s *Store) GetProducts(_ context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := s.getJSON(keyProducts, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// HasProducts reports whether the products key has been seeded yet, so a
// fresh demo session can be initialized from the template on first read.
func (s *Store) HasProducts() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[keyProducts]
	return ok
}

func (s *Store) SaveProduct(ctx context.Context, product domain.Product) error {
	products, err := s.GetProducts(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range products {
		if products[i].ID == product.ID {
			products[i] = product
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, product)
	}
	return s.setJSON(keyProducts, products)
}

func (s *Store) SaveProducts(_ context.Context, products []domain.Product) error {
	return s.setJSON(keyProducts, products)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	products, err := s.GetProducts(ctx)
	if err != nil {
		return err
	}
	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.setJSON(keyProducts, kept)
}

func (s *Store) GetTransactions(_ context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if _, err := s.getJSON(keyTransactions, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx domain.Transaction) error {
	txs, err := s.GetTransactions(ctx)
	if err != nil {
		return err
	}
	// Newest first, matching the cloud ordering.
	txs = append([]domain.Transaction{tx}, txs...)
	return s.setJSON(keyTransactions, txs)
}

func (s *Store) GetPurchases(_ context.Context) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	if _, err := s.getJSON(keyPurchases, &purchases); err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	return purchases, nil
}

func (s *Store) SavePurchase(ctx context.Context, purchase domain.Purchase) error {
	purchases, err := s.GetPurchases(ctx)
	if err != nil {
		return err
	}
	purchases = append([]domain.Purchase{purchase}, purchases...)
	return s.setJSON(keyPurchases, purchases)
}

func (s *Store) GetCustomers(_ context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if _, err := s.getJSON(keyCustomers, &customers); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, nil
}

func (s *Store) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	customers, err := s.GetCustomers(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range customers {
		if customers[i].ID == customer.ID {
			customers[i] = customer
			replaced = true
			break
		}
	}
	if !replaced {
		customers = append(customers, customer)
	}
	return s.setJSON(keyCustomers, customers)
}

func (s *Store) GetSuppliers(_ context.Context) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	if _, err := s.getJSON(keySuppliers, &suppliers); err != nil {
		return nil, err
	}
	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}
	return suppliers, nil
}

func (s *Store) SaveSupplier(ctx context.Context, supplier domain.Supplier) error {
	suppliers, err := s.GetSuppliers(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range suppliers {
		if suppliers[i].ID == supplier.ID {
			suppliers[i] = supplier
			replaced = true
			break
		}
	}
	if !replaced {
		suppliers = append(suppliers, supplier)
	}
	return s.setJSON(keySuppliers, suppliers)
}

func (s *Store) GetSettings(_ context.Context) (domain.StoreSettings, error) {
	var settings domain.StoreSettings
	found, err := s.getJSON(keySettings, &settings)
	if err != nil {
		return domain.StoreSettings{}, err
	}
	if !found {
		return domain.DefaultSettings(), nil
	}
	return settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.StoreSettings) error {
	return s.setJSON(keySettings, settings)
}

func (s *Store) GetShifts(_ context.Context) ([]domain.CashShift, error) {
	var shifts []domain.CashShift
	if _, err := s.getJSON(keyShifts, &shifts); err != nil {
		return nil, err
	}
	if shifts == nil {
		shifts = []domain.CashShift{}
	}
	return shifts, nil
}

func (s *Store) SaveShift(ctx context.Context, shift domain.CashShift) error {
	shifts, err := s.GetShifts(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range shifts {
		if shifts[i].ID == shift.ID {
			shifts[i] = shift
			replaced = true
			break
		}
	}
	if !replaced {
		shifts = append([]domain.CashShift{shift}, shifts...)
	}
	return s.setJSON(keyShifts, shifts)
}

func (s *Store) GetMovements(_ context.Context) ([]domain.CashMovement, error) {
	var movements []domain.CashMovement
	if _, err := s.getJSON(keyMovements, &movements); err != nil {
		return nil, err
	}
	if movements == nil {
		movements = []domain.CashMovement{}
	}
	return movements, nil
}

func (s *Store) SaveMovement(ctx context.Context, movement domain.CashMovement) error {
	movements, err := s.GetMovements(ctx)
	if err != nil {
		return err
	}
	movements = append([]domain.CashMovement{movement}, movements...)
	return s.setJSON(keyMovements, movements)
}

func (s *Store) GetActiveShiftID(_ context.Context) (string, error) {
	var id string
	if _, err := s.getJSON(keyActiveShiftID, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) SetActiveShiftID(_ context.Context, id string) error {
	if id == "" {
		s.remove(keyActiveShiftID)
		return nil
	}
	return s.setJSON(keyActiveShiftID, id)
}

// GetSession returns the stored session profile, or ErrNotFound when no
// session has been saved.
func (s *Store) GetSession(_ context.Context) (domain.UserProfile, error) {
	var profile domain.UserProfile
	found, err := s.getJSON(keySession, &profile)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if !found {
		return domain.UserProfile{}, store.ErrNotFound
	}
	return profile, nil
}

func (s *Store) SaveSession(_ context.Context, profile domain.UserProfile) error {
	return s.setJSON(keySession, profile)
}

func (s *Store) ClearSession(_ context.Context) error {
	s.remove(keySession)
	return nil
}

// Reset re-seeds the products key from the given template and clears every
// other demo collection: empty transactions, purchases, customers,
// suppliers, shifts and movements, default settings, no active shift.
func (s *Store) Reset(_ context.Context, template []domain.Product) error {
	if template == nil {
		template = []domain.Product{}
	}
	if err := s.setJSON(keyProducts, template); err != nil {
		return err
	}
	if err := s.setJSON(keyTransactions, []domain.Transaction{}); err != nil {
		return err
	}
	if err := s.setJSON(keyPurchases, []domain.Purchase{}); err != nil {
		return err
	}
	if err := s.setJSON(keyCustomers, []domain.Customer{}); err != nil {
		return err
	}
	if err := s.setJSON(keySuppliers, []domain.Supplier{}); err != nil {
		return err
	}
	if err := s.setJSON(keyShifts, []domain.CashShift{}); err != nil {
		return err
	}
	if err := s.setJSON(keyMovements, []domain.CashMovement{}); err != nil {
		return err
	}
	if err := s.setJSON(keySettings, domain.DefaultSettings()); err != nil {
		return err
	}
	s.remove(keyActiveShiftID)
	return nil
}
