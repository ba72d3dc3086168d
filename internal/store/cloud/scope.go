package cloud

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"luminapos/backend/internal/domain"
	"luminapos/backend/internal/store"
)

// Scope is the per-tenant view of the pool. It satisfies the same
// storage port as the local demo store.
type Scope struct {
	db      *sql.DB
	storeID string
}

func (s *Scope) GetProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, stock, category, barcode,
			has_variants, variants, is_pack, pack_items, images
		FROM products
		WHERE store_id = $1
		ORDER BY name
	`, s.storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		var barcode sql.NullString
		var variants, packItems, images []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category,
			&barcode, &p.HasVariants, &variants, &p.IsPack, &packItems, &images); err != nil {
			return nil, err
		}
		if barcode.Valid {
			p.Barcode = barcode.String
		}
		if err := decodeJSONColumn(variants, &p.Variants); err != nil {
			return nil, err
		}
		if err := decodeJSONColumn(packItems, &p.PackItems); err != nil {
			return nil, err
		}
		if err := decodeJSONColumn(images, &p.Images); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Scope) SaveProduct(ctx context.Context, product domain.Product) error {
	variants, packItems, images, err := encodeProductColumns(product)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
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
	`, product.ID, s.storeID, product.Name, product.Price, product.Stock,
		product.Category, nullIfEmpty(product.Barcode), product.HasVariants,
		variants, product.IsPack, packItems, images)
	if isPermissionDenied(err) {
		return store.ErrPermissionDenied
	}
	return err
}

func (s *Scope) SaveProducts(ctx context.Context, products []domain.Product) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, product := range products {
		variants, packItems, images, err := encodeProductColumns(product)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
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
		`, product.ID, s.storeID, product.Name, product.Price, product.Stock,
			product.Category, nullIfEmpty(product.Barcode), product.HasVariants,
			variants, product.IsPack, packItems, images)
		if err != nil {
			if isPermissionDenied(err) {
				return store.ErrPermissionDenied
			}
			return err
		}
	}

	return tx.Commit()
}

func (s *Scope) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM products
		WHERE id = $1 AND store_id = $2
	`, id, s.storeID)
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

func (s *Scope) GetTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, items, subtotal, tax, discount, total,
			payment_method, payments, profit, COALESCE(shift_id, '')
		FROM transactions
		WHERE store_id = $1
		ORDER BY date DESC
	`, s.storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0, 64)
	for rows.Next() {
		var tx domain.Transaction
		var items, payments []byte
		if err := rows.Scan(&tx.ID, &tx.Date, &items, &tx.Subtotal, &tx.Tax,
			&tx.Discount, &tx.Total, &tx.PaymentMethod, &payments, &tx.Profit, &tx.ShiftID); err != nil {
			return nil, err
		}
		if err := decodeJSONColumn(items, &tx.Items); err != nil {
			return nil, err
		}
		if err := decodeJSONColumn(payments, &tx.Payments); err != nil {
			return nil, err
		}
		tx.Date = tx.Date.UTC()
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Scope) SaveTransaction(ctx context.Context, tx domain.Transaction) error {
	items, err := json.Marshal(tx.Items)
	if err != nil {
		return err
	}
	payments, err := json.Marshal(tx.Payments)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, store_id, date, items, subtotal, tax, discount, total,
			payment_method, payments, profit, shift_id
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, tx.ID, s.storeID, tx.Date, items, tx.Subtotal, tx.Tax, tx.Discount,
		tx.Total, tx.PaymentMethod, payments, tx.Profit, nullIfEmpty(tx.ShiftID))
	if isPermissionDenied(err) {
		return store.ErrPermissionDenied
	}
	return err
}

func (s *Scope) GetPurchases(ctx context.Context) ([]domain.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, COALESCE(supplier_id, ''), total, items
		FROM purchases
		WHERE store_id = $1
		ORDER BY date DESC
	`, s.storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, 32)
	for rows.Next() {
		var p domain.Purchase
		var items []byte
		if err := rows.Scan(&p.ID, &p.Date, &p.SupplierID, &p.Total, &items); err != nil {
			return nil, err
		}
		if err := decodeJSONColumn(items, &p.Items); err != nil {
			return nil, err
		}
		p.Date = p.Date.UTC()
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (s *Scope) SavePurchase(ctx context.Context, purchase domain.Purchase) error {
	items, err := json.Marshal(purchase.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, store_id, date, supplier_id, total, items)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, purchase.ID, s.storeID, purchase.Date, nullIfEmpty(purchase.SupplierID), purchase.Total, items)
	if isPermissionDenied(err) {
		return store.ErrPermissionDenied
	}
	return err
}

func (s *Scope) GetCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(phone, ''), COALESCE(email, '')
		FROM customers
		WHERE store_id = $1
		ORDER BY name
	`, s.storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 32)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Scope) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, store_id, name, phone, email)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, phone = EXCLUDED.phone, email = EXCLUDED.email
	`, customer.ID, s.storeID, customer.Name, nullIfEmpty(customer.Phone), nullIfEmpty(customer.Email))
	if isPermissionDenied(err) {
		return store.ErrPermissionDenied
	}
	return err
}

func (s *Scope) GetSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(phone, '')
		FROM suppliers
		WHERE store_id = $1
		ORDER BY name
	`, s.storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 16)
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Phone); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *Scope) SaveSupplier(ctx context.Context, supplier domain.Supplier) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, store_id, name, phone)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, phone = EXCLUDED.phone
	`, supplier.ID, s.storeID, supplier.Name, nullIfEmpty(supplier.Phone))
	if isPermissionDenied(err) {
		return store.ErrPermissionDenied
	}
	return err
}

func (s *Scope) GetSettings(ctx context.Context) (domain.StoreSettings, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT settings
		FROM stores
		WHERE id = $1
	`, s.storeID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultSettings(), nil
		}
		return domain.StoreSettings{}, err
	}

	settings := domain.DefaultSettings()
	if err := decodeJSONColumn(raw, &settings); err != nil {
		return domain.StoreSettings{}, err
	}
	return settings, nil
}

func (s *Scope) SaveSettings(ctx context.Context, settings domain.StoreSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE stores
		SET settings = $2
		WHERE id = $1
	`, s.storeID, raw)
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

func (s *Scope) GetShifts(ctx context.Context) ([]domain.CashShift, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_time, end_time, start_amount, end_amount, status,
			total_sales_cash, total_sales_digital
		FROM cash_shifts
		WHERE store_id = $1
		ORDER BY start_time DESC
	`, s.storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]domain.CashShift, 0, 32)
	for rows.Next() {
		var shift domain.CashShift
		var endTime sql.NullTime
		var endAmount sql.NullFloat64
		if err := rows.Scan(&shift.ID, &shift.StartTime, &endTime, &shift.StartAmount,
			&endAmount, &shift.Status, &shift.TotalSalesCash, &shift.TotalSalesDigital); err != nil {
			return nil, err
		}
		shift.StartTime = shift.StartTime.UTC()
		if endTime.Valid {
			at := endTime.Time.UTC()
			shift.EndTime = &at
		}
		if endAmount.Valid {
			amount := endAmount.Float64
			shift.EndAmount = &amount
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (s *Scope) SaveShift(ctx context.Context, shift domain.CashShift) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_shifts (
			id, store_id, start_time, end_time, start_amount, end_amount,
			status, total_sales_cash, total_sales_digital
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			end_time = EXCLUDED.end_time, end_amount = EXCLUDED.end_amount,
			status = EXCLUDED.status, total_sales_cash = EXCLUDED.total_sales_cash,
			total_sales_digital = EXCLUDED.total_sales_digital
	`, shift.ID, s.storeID, shift.StartTime, nullTime(shift.EndTime),
		shift.StartAmount, nullFloat(shift.EndAmount), shift.Status,
		shift.TotalSalesCash, shift.TotalSalesDigital)
	if isPermissionDenied(err) {
		return store.ErrPermissionDenied
	}
	return err
}

func (s *Scope) GetMovements(ctx context.Context) ([]domain.CashMovement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(shift_id, ''), type, amount, COALESCE(description, ''), timestamp
		FROM cash_movements
		WHERE store_id = $1
		ORDER BY timestamp DESC
	`, s.storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]domain.CashMovement, 0, 64)
	for rows.Next() {
		var m domain.CashMovement
		if err := rows.Scan(&m.ID, &m.ShiftID, &m.Type, &m.Amount, &m.Description, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Timestamp = m.Timestamp.UTC()
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

func (s *Scope) SaveMovement(ctx context.Context, movement domain.CashMovement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_movements (id, store_id, shift_id, type, amount, description, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, movement.ID, s.storeID, nullIfEmpty(movement.ShiftID), movement.Type,
		movement.Amount, nullIfEmpty(movement.Description), movement.Timestamp)
	if isPermissionDenied(err) {
		return store.ErrPermissionDenied
	}
	return err
}

// GetActiveShiftID derives the open-shift pointer from shift status; the
// cloud schema has no separate pointer row.
func (s *Scope) GetActiveShiftID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id
		FROM cash_shifts
		WHERE store_id = $1 AND status = $2
		ORDER BY start_time DESC
		LIMIT 1
	`, s.storeID, domain.ShiftStatusOpen).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// SetActiveShiftID is a no-op in the cloud backend: the status column on
// cash_shifts is authoritative and SaveShift already updates it.
func (s *Scope) SetActiveShiftID(_ context.Context, _ string) error {
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
