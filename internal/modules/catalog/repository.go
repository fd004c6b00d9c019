package catalog

import "context"

// Repository defines the interface for product and category storage.
// Lookups return ErrNotFound when no row matches.
type Repository interface {
	// Create ensures p.Category exists and inserts p in one transaction, setting p.ID.
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	ListSummaries(ctx context.Context) ([]ProductSummary, error)
	Search(ctx context.Context, f SearchFilter) ([]*Product, error)
	// Update writes every column of p, ensuring its category in the same transaction.
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	EnsureCategory(ctx context.Context, name string) (*Category, error)
	// RecordPurchase moves qty units from inventory_count to product_sales.
	RecordPurchase(ctx context.Context, id int64, qty int) error
}
