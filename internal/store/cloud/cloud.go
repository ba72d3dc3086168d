// Package cloud implements the multi-tenant Postgres backend. A Store
// owns the connection pool and the cross-tenant operations (profiles,
// leads, stores, the shared demo template); Scope binds it to one
// store_id and implements the per-store storage port.
package cloud

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Scope binds the pool to one store_id. Every read and write through the
// returned backend is filtered to that tenant.
func (s *Store) Scope(storeID string) *Scope {
	return &Scope{db: s.db, storeID: storeID}
}

func (s *Store) LookupStoreID(ctx context.Context, userID string) (string, error) {
	var storeID string
	err := s.db.QueryRowContext(ctx, `
		SELECT store_id
		FROM profiles
		WHERE id = $1
	`, userID).Scan(&storeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", err
	}
	return storeID, nil
}

// GetCredentials returns the profile and stored password hash for a
// login attempt.
func (s *Store) GetCredentials(ctx context.Context, email string) (domain.UserProfile, string, error) {
	var p domain.UserProfile
	var passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(name, ''), COALESCE(role, 'cashier'), password_hash
		FROM profiles
		WHERE email = $1
	`, email).Scan(&p.ID, &p.Email, &p.Name, &p.Role, &passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserProfile{}, "", store.ErrNotFound
		}
		return domain.UserProfile{}, "", err
	}
	return p, passwordHash, nil
}

// GetTemplateProducts reads the shared demo catalog, which lives under
// the reserved template store id like any other tenant's products.
func (s *Store) GetTemplateProducts(ctx context.Context, templateID string) ([]domain.Product, error) {
	return s.Scope(templateID).GetProducts(ctx)
}

// UpsertTemplateProduct writes one product into the shared template.
// Row-level security can silently filter the write for non-privileged
// roles, so the statement returns the written id: zero rows back means
// the write was blocked, reported as ErrPermissionDenied.
func (s *Store) UpsertTemplateProduct(ctx context.Context, templateID string, product domain.Product) error {
	variants, packItems, images, err := encodeProductColumns(product)
	if err != nil {
		return err
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO products (
			id, store_id, name, price, stock, category, barcode,
			has_variants, variants, is_pack, pack_items, images, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, stock = EXCLUDED.stock,
			category = EXCLUDED.category, barcode = EXCLUDED.barcode,
			has_variants = EXCLUDED.has_variants, variants = EXCLUDED.variants,
			is_pack = EXCLUDED.is_pack, pack_items = EXCLUDED.pack_items,
			images = EXCLUDED.images, updated_at = now()
		RETURNING id
	`, product.ID, templateID, product.Name, product.Price, product.Stock,
		product.Category, product.Barcode, product.HasVariants, variants,
		product.IsPack, packItems, images).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isPermissionDenied(err) {
			return store.ErrPermissionDenied
		}
		return err
	}
	return nil
}

func (s *Store) DeleteTemplateProduct(ctx context.Context, templateID string, productID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM products
		WHERE id = $1 AND store_id = $2
	`, productID, templateID)
	if err != nil {
		if isPermissionDenied(err) {
			return store.ErrPermissionDenied
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SaveLead(ctx context.Context, lead domain.Lead) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (id, name, business_name, phone, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, business_name = EXCLUDED.business_name,
			phone = EXCLUDED.phone, status = EXCLUDED.status
	`, lead.ID, lead.Name, lead.BusinessName, lead.Phone, lead.Status, lead.CreatedAt)
	return err
}

func (s *Store) GetLeads(ctx context.Context) ([]domain.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, business_name, phone, status, created_at
		FROM leads
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0, 32)
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.BusinessName, &lead.Phone, &lead.Status, &lead.CreatedAt); err != nil {
			return nil, err
		}
		lead.CreatedAt = lead.CreatedAt.UTC()
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetAllStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, settings, created_at
		FROM stores
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]domain.Store, 0, 32)
	for rows.Next() {
		var st domain.Store
		var settings []byte
		if err := rows.Scan(&st.ID, &st.Name, &settings, &st.CreatedAt); err != nil {
			return nil, err
		}
		if err := decodeJSONColumn(settings, &st.Settings); err != nil {
			return nil, err
		}
		st.CreatedAt = st.CreatedAt.UTC()
		stores = append(stores, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

// DeleteStore removes a tenant and every row scoped to it.
func (s *Store) DeleteStore(ctx context.Context, storeID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{
		"cash_movements", "cash_shifts", "transactions", "purchases",
		"customers", "suppliers", "products", "profiles",
	} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE store_id = $1`, storeID); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, storeID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

func isPermissionDenied(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42501"
}

// decodeJSONColumn tolerates both structured jsonb values and values
// stored as a JSON-encoded string, which older rows carry.
func decodeJSONColumn(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	firstErr := json.Unmarshal(raw, dest)
	if firstErr == nil {
		return nil
	}
	var nested string
	if err := json.Unmarshal(raw, &nested); err != nil {
		return firstErr
	}
	if nested == "" {
		return nil
	}
	return json.Unmarshal([]byte(nested), dest)
}

func encodeProductColumns(p domain.Product) (variants []byte, packItems []byte, images []byte, err error) {
	if variants, err = json.Marshal(emptyIfNilVariants(p.Variants)); err != nil {
		return nil, nil, nil, err
	}
	if packItems, err = json.Marshal(emptyIfNilComponents(p.PackItems)); err != nil {
		return nil, nil, nil, err
	}
	if images, err = json.Marshal(emptyIfNilStrings(p.Images)); err != nil {
		return nil, nil, nil, err
	}
	return variants, packItems, images, nil
}

func emptyIfNilVariants(v []domain.Variant) []domain.Variant {
	if v == nil {
		return []domain.Variant{}
	}
	return v
}

func emptyIfNilComponents(v []domain.PackComponent) []domain.PackComponent {
	if v == nil {
		return []domain.PackComponent{}
	}
	return v
}

func emptyIfNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
