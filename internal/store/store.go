package store

import (
	"context"
	"errors"

	"luminapos/backend/internal/domain"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrNoOpenShift      = errors.New("no open shift")
	ErrShiftAlreadyOpen = errors.New("shift already open")
	ErrPermissionDenied = errors.New("permission denied")
)

// Backend is the storage port every entity read/write goes through. Two
// implementations exist: the local key-value store used by demo sessions
// and a Postgres scope bound to one store_id. Collections with a natural
// date/timestamp ordering are returned newest-first.
type Backend interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SaveProduct(ctx context.Context, product domain.Product) error
	SaveProducts(ctx context.Context, products []domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	GetTransactions(ctx context.Context) ([]domain.Transaction, error)
	SaveTransaction(ctx context.Context, tx domain.Transaction) error

	GetPurchases(ctx context.Context) ([]domain.Purchase, error)
	SavePurchase(ctx context.Context, purchase domain.Purchase) error

	GetCustomers(ctx context.Context) ([]domain.Customer, error)
	SaveCustomer(ctx context.Context, customer domain.Customer) error

	GetSuppliers(ctx context.Context) ([]domain.Supplier, error)
	SaveSupplier(ctx context.Context, supplier domain.Supplier) error

	GetSettings(ctx context.Context) (domain.StoreSettings, error)
	SaveSettings(ctx context.Context, settings domain.StoreSettings) error

	GetShifts(ctx context.Context) ([]domain.CashShift, error)
	SaveShift(ctx context.Context, shift domain.CashShift) error

	GetMovements(ctx context.Context) ([]domain.CashMovement, error)
	SaveMovement(ctx context.Context, movement domain.CashMovement) error

	GetActiveShiftID(ctx context.Context) (string, error)
	SetActiveShiftID(ctx context.Context, id string) error
}
