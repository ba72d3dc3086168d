package domain

import "time"

// Variant is a sub-SKU of a product with its own price and stock. The
// parent product's stock is always the sum of its variant stocks.
type Variant struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// PackComponent references a non-pack product consumed when one pack unit
// is sold. ProductName is a denormalized snapshot for receipts.
type PackComponent struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       float64         `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Barcode     string          `json:"barcode,omitempty"`
	HasVariants bool            `json:"hasVariants,omitempty"`
	Variants    []Variant       `json:"variants,omitempty"`
	IsPack      bool            `json:"isPack,omitempty"`
	PackItems   []PackComponent `json:"packItems,omitempty"`
	Images      []string        `json:"images,omitempty"`
}

// CartItem is a product snapshot plus sale quantity. Cart identity is the
// (ID, SelectedVariantID) pair: adding the same pair again increments
// Quantity instead of appending a second line.
type CartItem struct {
	Product
	Quantity            int     `json:"quantity"`
	Discount            float64 `json:"discount"`
	SelectedVariantID   string  `json:"selectedVariantId,omitempty"`
	SelectedVariantName string  `json:"selectedVariantName,omitempty"`
}

type Payment struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// Transaction is created once at checkout and never mutated afterwards.
type Transaction struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	Items         []CartItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Discount      float64    `json:"discount"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"paymentMethod"`
	Payments      []Payment  `json:"payments,omitempty"`
	Profit        float64    `json:"profit"`
	ShiftID       string     `json:"shiftId"`
}

const (
	ShiftStatusOpen   = "OPEN"
	ShiftStatusClosed = "CLOSED"
)

type CashShift struct {
	ID                string     `json:"id"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           *time.Time `json:"endTime,omitempty"`
	StartAmount       float64    `json:"startAmount"`
	EndAmount         *float64   `json:"endAmount,omitempty"`
	Status            string     `json:"status"`
	TotalSalesCash    float64    `json:"totalSalesCash"`
	TotalSalesDigital float64    `json:"totalSalesDigital"`
}

const (
	MovementOpen  = "OPEN"
	MovementClose = "CLOSE"
	MovementIn    = "IN"
	MovementOut   = "OUT"
)

// CashMovement is one entry of the append-only cash log: a row is written
// for every shift lifecycle event and every manual cash in/out.
type CashMovement struct {
	ID          string    `json:"id"`
	ShiftID     string    `json:"shiftId"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type StoreSettings struct {
	Name             string  `json:"name"`
	Currency         string  `json:"currency"`
	TaxRate          float64 `json:"taxRate"`
	PricesIncludeTax bool    `json:"pricesIncludeTax"`
	Address          string  `json:"address"`
	Phone            string  `json:"phone"`
}

type PurchaseItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unitCost"`
}

type Purchase struct {
	ID         string         `json:"id"`
	Date       time.Time      `json:"date"`
	SupplierID string         `json:"supplierId"`
	Total      float64        `json:"total"`
	Items      []PurchaseItem `json:"items"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Supplier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// UserProfile is the session identity. The demo sentinel id and the demo
// e-mail domain mark local-only sandbox sessions.
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

type Lead struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BusinessName string    `json:"business_name"`
	Phone        string    `json:"phone"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Store struct {
	ID        string        `json:"id"`
	Name      string        `json:"name,omitempty"`
	Settings  StoreSettings `json:"settings"`
	CreatedAt time.Time     `json:"created_at"`
}

type Actor struct {
	Username string
	Role     string
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	Profile     UserProfile `json:"profile"`
	ExpiresAt   string      `json:"expires_at"`
}

type CheckoutRequest struct {
	TerminalID    string    `json:"terminal_id"`
	PaymentMethod string    `json:"payment_method"`
	Payments      []Payment `json:"payments,omitempty"`
}

type CheckoutResponse struct {
	Transaction Transaction `json:"transaction"`
}

type ShiftOpenRequest struct {
	StartAmount float64 `json:"start_amount"`
	Description string  `json:"description"`
}

type ShiftCloseRequest struct {
	EndAmount   float64 `json:"end_amount"`
	Description string  `json:"description"`
}

type MovementRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// ClosingReport is produced when a shift is closed: the closed shift plus
// every movement and transaction attributed to it.
type ClosingReport struct {
	Shift        CashShift      `json:"shift"`
	Movements    []CashMovement `json:"movements"`
	Transactions []Transaction  `json:"transactions"`
}

// ShiftSummary holds totals derived by scanning movements and transactions
// for one shift. Nothing here is stored; it is recomputed on demand.
type ShiftSummary struct {
	ShiftID      string  `json:"shift_id"`
	CashSales    float64 `json:"cash_sales"`
	DigitalSales float64 `json:"digital_sales"`
	CashIn       float64 `json:"cash_in"`
	CashOut      float64 `json:"cash_out"`
	ExpectedCash float64 `json:"expected_cash"`
}

// DefaultSettings are the demo-mode store settings (tax-inclusive pricing,
// Peru IGV rate), used when no settings row exists yet.
func DefaultSettings() StoreSettings {
	return StoreSettings{
		Name:             "Mi Bodega Demo",
		Currency:         "S/",
		TaxRate:          0.18,
		PricesIncludeTax: true,
		Address:          "Av. Larco 123, Miraflores",
		Phone:            "999-000-123",
	}
}
