package cart

import "context"

// GuestScope is the storage partition for carts with no authenticated
// identity. Authenticated carts are scoped by the user's email.
const GuestScope = "guest"

// Display fallbacks applied to lines with incomplete metadata, pending a
// catalog backfill. The storefront copy is Vietnamese.
const (
	FallbackImage = "/images/default-product.jpg"
	FallbackBrand = "Không xác định"
	FallbackTitle = "Sản phẩm không xác định"
)

// Line is one product entry in a cart, uniquely keyed by ProductID.
type Line struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Brand     string  `json:"brand"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is a finalized purchase as the storefront presents it. Several
// server-side records sharing an order code collapse into one Order.
type Order struct {
	OrderCode  string  `json:"orderCode"`
	Date       string  `json:"date"`
	TotalPrice float64 `json:"totalPrice"`
	Items      []Line  `json:"items"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
}

// Store is the durable per-scope cart storage. Load reports presence
// separately from errors so an absent entry is not a failure.
type Store interface {
	Load(ctx context.Context, scope string) ([]Line, bool, error)
	Save(ctx context.Context, scope string, lines []Line) error
	Delete(ctx context.Context, scope string) error
}
