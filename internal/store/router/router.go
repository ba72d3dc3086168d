// Package router decides, per operation, whether a request hits the
// local demo store or the cloud scope of the session's store. Reads
// degrade to empty collections when the backing store fails so a broken
// connection never blanks the terminal; writes are logged and swallowed
// for the same reason, except template writes, which report their sync
// outcome explicitly.
package router

import (
	"context"
	"errors"
	"log"
	"time"

	"luminapos/backend/internal/cache"
	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/session"
	"luminapos/backend/internal/store"
	"luminapos/backend/internal/store/cloud"
	"luminapos/backend/internal/store/local"
)

const templateCacheKey = "demo:template:products"

// SyncStatus is the outcome of a demo template write.
type SyncStatus string

const (
	// SyncFull means the write landed both locally and in the shared
	// cloud template.
	SyncFull SyncStatus = "synced"
	// SyncLocalOnly means the local write succeeded but the cloud was
	// unreachable; the template will catch up on a later write.
	SyncLocalOnly SyncStatus = "local_only"
	// SyncRejected means the cloud accepted the connection but blocked
	// the write; the local copy still holds the change.
	SyncRejected SyncStatus = "rejected"
)

type SyncResult struct {
	Status  SyncStatus `json:"status"`
	Warning string     `json:"warning,omitempty"`
}

type Router struct {
	local       *local.Store
	cloud       *cloud.Store
	cache       cache.TemplateCache
	sessions    *session.Manager
	templateTTL time.Duration
}

// New builds a router. cloudStore may be nil, in which case every
// session runs against the local store and template syncs degrade to
// local-only.
func New(localStore *local.Store, cloudStore *cloud.Store, templateCache cache.TemplateCache, sessions *session.Manager, templateTTL time.Duration) *Router {
	if templateCache == nil {
		templateCache = cache.NoopTemplateCache{}
	}
	return &Router{
		local:       localStore,
		cloud:       cloudStore,
		cache:       templateCache,
		sessions:    sessions,
		templateTTL: templateTTL,
	}
}

// backend picks the store for one request. The identity comes from the
// request context so concurrent requests with different tokens cannot
// cross into each other's scope; the persisted login session is only a
// fallback for callers outside the HTTP path. Demo identities always get
// the local store, seeded from the template on first use.
func (r *Router) backend(ctx context.Context) store.Backend {
	profile, ok := r.requestProfile(ctx)
	if r.cloud == nil || !ok || session.IsDemoProfile(profile) {
		r.ensureSeeded(ctx)
		return r.local
	}

	storeID, err := r.sessions.StoreID(ctx, profile.ID)
	if err != nil {
		log.Printf("[router] WARN: store id unresolved, falling back to local: %v", err)
		r.ensureSeeded(ctx)
		return r.local
	}
	return r.cloud.Scope(storeID)
}

// requestProfile resolves the identity for one operation: the context
// profile first, the persisted login session only as a fallback.
func (r *Router) requestProfile(ctx context.Context) (domain.UserProfile, bool) {
	if profile, ok := session.ProfileFromContext(ctx); ok {
		return profile, true
	}
	return r.sessions.Profile()
}

func (r *Router) ensureSeeded(ctx context.Context) {
	if r.local.HasProducts() {
		return
	}
	template := r.GetDemoTemplate(ctx)
	if err := r.local.SaveProducts(ctx, template); err != nil {
		log.Printf("[router] WARN: seeding demo products failed: %v", err)
	}
}

func (r *Router) GetProducts(ctx context.Context) []domain.Product {
	products, err := r.backend(ctx).GetProducts(ctx)
	if err != nil {
		log.Printf("[router] WARN: get products failed: %v", err)
		return []domain.Product{}
	}
	return products
}

func (r *Router) SaveProduct(ctx context.Context, product domain.Product) {
	if err := r.backend(ctx).SaveProduct(ctx, product); err != nil {
		log.Printf("[router] WARN: save product %s failed: %v", product.ID, err)
	}
}

func (r *Router) SaveProducts(ctx context.Context, products []domain.Product) {
	if err := r.backend(ctx).SaveProducts(ctx, products); err != nil {
		log.Printf("[router] WARN: save products failed: %v", err)
	}
}

func (r *Router) DeleteProduct(ctx context.Context, productID string) {
	if err := r.backend(ctx).DeleteProduct(ctx, productID); err != nil {
		log.Printf("[router] WARN: delete product %s failed: %v", productID, err)
	}
}

func (r *Router) GetTransactions(ctx context.Context) []domain.Transaction {
	txs, err := r.backend(ctx).GetTransactions(ctx)
	if err != nil {
		log.Printf("[router] WARN: get transactions failed: %v", err)
		return []domain.Transaction{}
	}
	return txs
}

func (r *Router) SaveTransaction(ctx context.Context, tx domain.Transaction) {
	if err := r.backend(ctx).SaveTransaction(ctx, tx); err != nil {
		log.Printf("[router] WARN: save transaction %s failed: %v", tx.ID, err)
	}
}

func (r *Router) GetPurchases(ctx context.Context) []domain.Purchase {
	purchases, err := r.backend(ctx).GetPurchases(ctx)
	if err != nil {
		log.Printf("[router] WARN: get purchases failed: %v", err)
		return []domain.Purchase{}
	}
	return purchases
}

func (r *Router) SavePurchase(ctx context.Context, purchase domain.Purchase) {
	if err := r.backend(ctx).SavePurchase(ctx, purchase); err != nil {
		log.Printf("[router] WARN: save purchase %s failed: %v", purchase.ID, err)
	}
}

func (r *Router) GetCustomers(ctx context.Context) []domain.Customer {
	customers, err := r.backend(ctx).GetCustomers(ctx)
	if err != nil {
		log.Printf("[router] WARN: get customers failed: %v", err)
		return []domain.Customer{}
	}
	return customers
}

func (r *Router) SaveCustomer(ctx context.Context, customer domain.Customer) {
	if err := r.backend(ctx).SaveCustomer(ctx, customer); err != nil {
		log.Printf("[router] WARN: save customer %s failed: %v", customer.ID, err)
	}
}

func (r *Router) GetSuppliers(ctx context.Context) []domain.Supplier {
	suppliers, err := r.backend(ctx).GetSuppliers(ctx)
	if err != nil {
		log.Printf("[router] WARN: get suppliers failed: %v", err)
		return []domain.Supplier{}
	}
	return suppliers
}

func (r *Router) SaveSupplier(ctx context.Context, supplier domain.Supplier) {
	if err := r.backend(ctx).SaveSupplier(ctx, supplier); err != nil {
		log.Printf("[router] WARN: save supplier %s failed: %v", supplier.ID, err)
	}
}

func (r *Router) GetSettings(ctx context.Context) domain.StoreSettings {
	settings, err := r.backend(ctx).GetSettings(ctx)
	if err != nil {
		log.Printf("[router] WARN: get settings failed: %v", err)
		return domain.DefaultSettings()
	}
	return settings
}

func (r *Router) SaveSettings(ctx context.Context, settings domain.StoreSettings) {
	if err := r.backend(ctx).SaveSettings(ctx, settings); err != nil {
		log.Printf("[router] WARN: save settings failed: %v", err)
	}
}

func (r *Router) GetShifts(ctx context.Context) []domain.CashShift {
	shifts, err := r.backend(ctx).GetShifts(ctx)
	if err != nil {
		log.Printf("[router] WARN: get shifts failed: %v", err)
		return []domain.CashShift{}
	}
	return shifts
}

func (r *Router) SaveShift(ctx context.Context, shift domain.CashShift) {
	if err := r.backend(ctx).SaveShift(ctx, shift); err != nil {
		log.Printf("[router] WARN: save shift %s failed: %v", shift.ID, err)
	}
}

func (r *Router) GetMovements(ctx context.Context) []domain.CashMovement {
	movements, err := r.backend(ctx).GetMovements(ctx)
	if err != nil {
		log.Printf("[router] WARN: get movements failed: %v", err)
		return []domain.CashMovement{}
	}
	return movements
}

func (r *Router) SaveMovement(ctx context.Context, movement domain.CashMovement) {
	if err := r.backend(ctx).SaveMovement(ctx, movement); err != nil {
		log.Printf("[router] WARN: save movement %s failed: %v", movement.ID, err)
	}
}

func (r *Router) GetActiveShiftID(ctx context.Context) string {
	id, err := r.backend(ctx).GetActiveShiftID(ctx)
	if err != nil {
		log.Printf("[router] WARN: get active shift failed: %v", err)
		return ""
	}
	return id
}

func (r *Router) SetActiveShiftID(ctx context.Context, id string) {
	if err := r.backend(ctx).SetActiveShiftID(ctx, id); err != nil {
		log.Printf("[router] WARN: set active shift failed: %v", err)
	}
}

// GetDemoTemplate returns the demo catalog template, falling through
// three tiers: the cloud template store, the cached copy of the last
// successful fetch, and finally the hardcoded seed. It never fails.
func (r *Router) GetDemoTemplate(ctx context.Context) []domain.Product {
	if r.cloud != nil {
		products, err := r.cloud.GetTemplateProducts(ctx, session.DemoTemplateID)
		if err == nil && len(products) > 0 {
			if err := r.cache.Set(ctx, templateCacheKey, products, r.templateTTL); err != nil {
				log.Printf("[router] WARN: caching template failed: %v", err)
			}
			return products
		}
		if err != nil {
			log.Printf("[router] WARN: cloud template unavailable: %v", err)
		}
	}

	cached, found, err := r.cache.Get(ctx, templateCacheKey)
	if err != nil {
		log.Printf("[router] WARN: template cache read failed: %v", err)
	}
	if found && len(cached) > 0 {
		return cached
	}

	return store.SeedTemplate()
}

// SaveDemoProductToTemplate writes a demo product locally and then tries
// to sync it into the shared cloud template. The local write always
// wins; the result reports how far the sync got.
func (r *Router) SaveDemoProductToTemplate(ctx context.Context, product domain.Product) SyncResult {
	if err := r.local.SaveProduct(ctx, product); err != nil {
		log.Printf("[router] WARN: local template save failed: %v", err)
	}

	if r.cloud == nil {
		return SyncResult{Status: SyncLocalOnly, Warning: "no cloud connection, product saved locally"}
	}

	err := r.cloud.UpsertTemplateProduct(ctx, session.DemoTemplateID, product)
	if err != nil {
		if errors.Is(err, store.ErrPermissionDenied) {
			log.Printf("[router] WARN: template write blocked for product %s", product.ID)
			return SyncResult{Status: SyncRejected, Warning: "cloud rejected the template write, product saved locally"}
		}
		log.Printf("[router] WARN: template sync failed for product %s: %v", product.ID, err)
		return SyncResult{Status: SyncLocalOnly, Warning: "cloud unreachable, product saved locally"}
	}

	r.refreshTemplateCache(ctx)
	return SyncResult{Status: SyncFull}
}

// DeleteDemoProduct removes a product from the local demo catalog and
// tries to remove it from the shared template too.
func (r *Router) DeleteDemoProduct(ctx context.Context, productID string) SyncResult {
	if err := r.local.DeleteProduct(ctx, productID); err != nil {
		log.Printf("[router] WARN: local template delete failed: %v", err)
	}

	if r.cloud == nil {
		return SyncResult{Status: SyncLocalOnly, Warning: "no cloud connection, product removed locally"}
	}

	err := r.cloud.DeleteTemplateProduct(ctx, session.DemoTemplateID, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SyncResult{Status: SyncFull}
		}
		if errors.Is(err, store.ErrPermissionDenied) {
			return SyncResult{Status: SyncRejected, Warning: "cloud rejected the template delete, product removed locally"}
		}
		log.Printf("[router] WARN: template delete failed for product %s: %v", productID, err)
		return SyncResult{Status: SyncLocalOnly, Warning: "cloud unreachable, product removed locally"}
	}

	r.refreshTemplateCache(ctx)
	return SyncResult{Status: SyncFull}
}

func (r *Router) refreshTemplateCache(ctx context.Context) {
	products, err := r.cloud.GetTemplateProducts(ctx, session.DemoTemplateID)
	if err != nil {
		log.Printf("[router] WARN: template cache refresh failed: %v", err)
		return
	}
	if err := r.cache.Set(ctx, templateCacheKey, products, r.templateTTL); err != nil {
		log.Printf("[router] WARN: caching template failed: %v", err)
	}
}

// ResetDemoData re-seeds the local demo store from the template and
// wipes everything else: sales, purchases, shifts, movements, contacts,
// settings, active shift pointer.
func (r *Router) ResetDemoData(ctx context.Context) error {
	template := r.GetDemoTemplate(ctx)
	return r.local.Reset(ctx, template)
}

func (r *Router) SaveLead(ctx context.Context, lead domain.Lead) error {
	if r.cloud == nil {
		log.Printf("[router] WARN: lead %s dropped, no cloud connection", lead.ID)
		return nil
	}
	return r.cloud.SaveLead(ctx, lead)
}

func (r *Router) GetLeads(ctx context.Context) ([]domain.Lead, error) {
	if r.cloud == nil {
		return []domain.Lead{}, nil
	}
	return r.cloud.GetLeads(ctx)
}

func (r *Router) DeleteLead(ctx context.Context, id string) error {
	if r.cloud == nil {
		return store.ErrNotFound
	}
	return r.cloud.DeleteLead(ctx, id)
}

func (r *Router) GetAllStores(ctx context.Context) ([]domain.Store, error) {
	if r.cloud == nil {
		return []domain.Store{}, nil
	}
	return r.cloud.GetAllStores(ctx)
}

func (r *Router) DeleteStore(ctx context.Context, storeID string) error {
	if r.cloud == nil {
		return store.ErrNotFound
	}
	return r.cloud.DeleteStore(ctx, storeID)
}
