package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/georgemunganga/printa-catalog/internal/database"
)

var productColumns = []string{"id", "name", "description", "price", "inventory_count", "category", "product_sales"}

// runner is satisfied by both *sql.DB and *sql.Tx.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type sqlRepo struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewSQLRepository returns a Repository over the product and category tables.
func NewSQLRepository(db *sql.DB, dialect database.Dialect) Repository {
	return &sqlRepo{db: db, sb: dialect.Builder()}
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var description, category sql.NullString
	var inventory, sales sql.NullInt64
	if err := scan(&p.ID, &p.Name, &description, &p.Price, &inventory, &category, &sales); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Category = category.String
	p.InventoryCount = int(inventory.Int64)
	p.ProductSales = int(sales.Int64)
	return p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *sqlRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *sqlRepo) Create(ctx context.Context, p *Product) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.ensureCategory(ctx, tx, p.Category); err != nil {
			return err
		}
		query, args, err := r.sb.Insert("product").
			Columns("name", "description", "price", "inventory_count", "category", "product_sales").
			Values(p.Name, nullable(p.Description), p.Price, p.InventoryCount, p.Category, p.ProductSales).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&p.ID); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return nil
	})
}

func (r *sqlRepo) getOne(ctx context.Context, where sq.Eq) (*Product, error) {
	query, args, err := r.sb.Select(productColumns...).From("product").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *sqlRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *sqlRepo) GetByName(ctx context.Context, name string) (*Product, error) {
	return r.getOne(ctx, sq.Eq{"name": name})
}

func (r *sqlRepo) queryProducts(ctx context.Context, b sq.SelectBuilder) ([]*Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *sqlRepo) List(ctx context.Context) ([]*Product, error) {
	return r.queryProducts(ctx, r.sb.Select(productColumns...).From("product").OrderBy("id"))
}

func (r *sqlRepo) ListSummaries(ctx context.Context) ([]ProductSummary, error) {
	query, args, err := r.sb.Select("id", "name").From("product").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductSummary
	for rows.Next() {
		var s ProductSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// containsFold matches col against v as a case-insensitive substring.
// Both sides go through the database's LOWER.
func containsFold(col, v string) sq.Sqlizer {
	return sq.Expr("LOWER("+col+") LIKE LOWER(?)", "%"+v+"%")
}

func (r *sqlRepo) Search(ctx context.Context, f SearchFilter) ([]*Product, error) {
	b := r.sb.Select(productColumns...).From("product")
	if f.Name != "" {
		b = b.Where(containsFold("name", f.Name))
	}
	if f.Description != "" {
		b = b.Where(containsFold("description", f.Description))
	}
	if f.Category != "" {
		b = b.Where(containsFold("category", f.Category))
	}
	return r.queryProducts(ctx, b.OrderBy("id"))
}

func (r *sqlRepo) Update(ctx context.Context, p *Product) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if p.Category != "" {
			if _, err := r.ensureCategory(ctx, tx, p.Category); err != nil {
				return err
			}
		}
		query, args, err := r.sb.Update("product").
			SetMap(map[string]interface{}{
				"name":            p.Name,
				"description":     nullable(p.Description),
				"price":           p.Price,
				"inventory_count": p.InventoryCount,
				"category":        nullable(p.Category),
				"product_sales":   p.ProductSales,
			}).
			Where(sq.Eq{"id": p.ID}).
			ToSql()
		if err != nil {
			return err
		}
		return execOne(ctx, tx, "update product", query, args)
	})
}

func (r *sqlRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("product").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	return execOne(ctx, r.db, "delete product", query, args)
}

func (r *sqlRepo) RecordPurchase(ctx context.Context, id int64, qty int) error {
	query, args, err := r.sb.Update("product").
		Set("inventory_count", sq.Expr("inventory_count - ?", qty)).
		Set("product_sales", sq.Expr("COALESCE(product_sales, 0) + ?", qty)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return execOne(ctx, r.db, "record purchase", query, args)
}

// execOne runs a single-row statement and maps zero affected rows to ErrNotFound.
func execOne(ctx context.Context, run runner, op, query string, args []interface{}) error {
	res, err := run.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRepo) EnsureCategory(ctx context.Context, name string) (*Category, error) {
	return r.ensureCategory(ctx, r.db, name)
}

func (r *sqlRepo) ensureCategory(ctx context.Context, run runner, name string) (*Category, error) {
	query, args, err := r.sb.Insert("category").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := run.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert category %q: %w", name, err)
	}

	query, args, err = r.sb.Select("id", "name").From("category").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return nil, err
	}
	c := &Category{}
	if err := run.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name); err != nil {
		return nil, fmt.Errorf("load category %q: %w", name, err)
	}
	return c, nil
}
