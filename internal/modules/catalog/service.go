package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/georgemunganga/printa-catalog/internal/events"
)

// Service defines catalog business logic.
type Service interface {
	// AddProduct validates required fields, rejects duplicate names and stores the product.
	AddProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetAllProducts(ctx context.Context) ([]ProductSummary, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	// UpdateProduct overwrites only the fields present in req.
	UpdateProduct(ctx context.Context, id int64, req CreateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) (*Product, error)
	SearchProducts(ctx context.Context, f SearchFilter) ([]*Product, error)
	// BuyProduct sells one unit, failing with ErrOutOfStock when inventory is exhausted.
	BuyProduct(ctx context.Context, id int64) (*Product, error)
	EnsureCategory(ctx context.Context, name string) (*Category, error)
	PopularityScores(ctx context.Context) ([]Score, error)
}

// CreateProductRequest carries product fields for create and update.
// A nil field was not supplied by the caller.
type CreateProductRequest struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	Price          *float64 `json:"price"`
	InventoryCount *int     `json:"inventory_count"`
	Category       *string  `json:"category"`
	ProductSales   *int     `json:"product_sales"`
}

// purchaseQuantity is the number of units sold per purchase.
const purchaseQuantity = 1

type service struct {
	repo      Repository
	publisher events.Publisher
	producer  string
	log       *slog.Logger
}

// NewService creates a catalog service. Change events are published under
// the producer name; pass events.Nop{} to disable them.
func NewService(repo Repository, publisher events.Publisher, producer string, log *slog.Logger) Service {
	return &service{repo: repo, publisher: publisher, producer: producer, log: log}
}

func (s *service) AddProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.Name == nil || *req.Name == "" {
		return nil, &MissingFieldError{Field: "name"}
	}
	if req.Price == nil {
		return nil, &MissingFieldError{Field: "price"}
	}
	if req.InventoryCount == nil {
		return nil, &MissingFieldError{Field: "inventory_count"}
	}

	_, err := s.repo.GetByName(ctx, *req.Name)
	switch {
	case err == nil:
		return nil, ErrDuplicateName
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("lookup product %q: %w", *req.Name, err)
	}

	p := &Product{
		Name:           *req.Name,
		Price:          *req.Price,
		InventoryCount: *req.InventoryCount,
		Category:       DefaultCategory,
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil && *req.Category != "" {
		p.Category = *req.Category
	}
	if req.ProductSales != nil {
		p.ProductSales = *req.ProductSales
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProductCreated, p)
	return p, nil
}

func (s *service) GetAllProducts(ctx context.Context) ([]ProductSummary, error) {
	products, err := s.repo.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmpty
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProduct(ctx context.Context, id int64, req CreateProductRequest) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.InventoryCount != nil {
		p.InventoryCount = *req.InventoryCount
	}
	// a blank category would leave the product without one
	if req.Category != nil && *req.Category != "" {
		p.Category = *req.Category
	}
	if req.ProductSales != nil {
		p.ProductSales = *req.ProductSales
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProductUpdated, p)
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProductDeleted, p)
	return p, nil
}

func (s *service) SearchProducts(ctx context.Context, f SearchFilter) ([]*Product, error) {
	products, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return products, nil
}

func (s *service) BuyProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.InventoryCount <= 0 {
		return nil, ErrOutOfStock
	}
	if err := s.repo.RecordPurchase(ctx, id, purchaseQuantity); err != nil {
		return nil, err
	}
	p.InventoryCount -= purchaseQuantity
	p.ProductSales += purchaseQuantity
	s.publish(ctx, events.ProductPurchased, p)
	return p, nil
}

func (s *service) EnsureCategory(ctx context.Context, name string) (*Category, error) {
	if name == "" {
		name = DefaultCategory
	}
	return s.repo.EnsureCategory(ctx, name)
}

func (s *service) PopularityScores(ctx context.Context) ([]Score, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeScores(products)
}

func (s *service) publish(ctx context.Context, eventType string, p *Product) {
	ev, err := events.NewEnvelope(s.producer, eventType, middleware.GetReqID(ctx), p)
	if err != nil {
		s.log.ErrorContext(ctx, "build event", "event_type", eventType, "product_id", p.ID, "error", err)
		return
	}
	s.publisher.Publish(ctx, fmt.Sprint(p.ID), ev)
}
