package market

import "time"

type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
)

type Product struct {
	ID          string
	SupplierID  string
	Name        string
	PriceCents  int
	Stock       int
	RatingAvg   float64
	RatingCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type Cart struct {
	BuyerID string     `json:"buyer_id"`
	Items   []CartItem `json:"items"`
}

// CartLine is a cart item joined with the product fields the order paths
// need: supplier (single-supplier check), price (snapshot), stock.
type CartLine struct {
	ProductID  string
	SupplierID string
	Qty        int
	PriceCents int
	Stock      int
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type OrderItem struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"` // snapshot, copied once at creation
}

type Order struct {
	ID            string        `json:"id"`
	BuyerID       string        `json:"buyer_id"`
	SupplierID    string        `json:"supplier_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentID     string        `json:"payment_id,omitempty"` // gateway tx id, gateway-paid orders only
	Items         []OrderItem   `json:"items"`
	TotalCents    int           `json:"total_cents"`
	DeliveryDate  time.Time     `json:"delivery_date"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Total sums the snapshot subtotals. Stored prices, never the product table.
func (o Order) Total() int {
	t := 0
	for _, it := range o.Items {
		t += it.PriceCents * it.Qty
	}
	return t
}

type Review struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	BuyerID       string    `json:"buyer_id"`
	Rating        int       `json:"rating"` // 1..5
	Comment       string    `json:"comment,omitempty"`
	SupplierReply string    `json:"supplier_reply,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
