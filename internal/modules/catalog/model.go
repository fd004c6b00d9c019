package catalog

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "Uncategorized"

// Product is a catalog entry with its stock and sales counters.
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	InventoryCount int     `json:"inventory_count"`
	Category       string  `json:"category"`
	ProductSales   int     `json:"product_sales"`
}

// ProductSummary is the id/name projection used by the product listing.
type ProductSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Category labels products. Categories are created on demand and never removed.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SearchFilter holds optional case-insensitive substring filters. Empty fields are ignored.
type SearchFilter struct {
	Name        string
	Description string
	Category    string
}
