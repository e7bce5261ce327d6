package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-catalog/internal/domain"

	"github.com/Masterminds/squirrel"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// Dialect selects the SQL flavour spoken by the relational adapter
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

var productColumns = []string{
	"id", "name", "price", "category", "stock", "description", "created_at", "updated_at",
}

type sqlProductRepository struct {
	db      *sql.DB
	dialect Dialect
	builder squirrel.StatementBuilderType
}

// NewSQLProductRepository creates a ProductRepository backed by the products table
func NewSQLProductRepository(db *sql.DB, dialect Dialect) ProductRepository {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if dialect == DialectPostgres {
		placeholder = squirrel.Dollar
	}

	return &sqlProductRepository{
		db:      db,
		dialect: dialect,
		builder: squirrel.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// Create inserts a new product and refreshes it from the stored row
func (r *sqlProductRepository) Create(ctx context.Context, product *domain.Product) error {
	insert := r.builder.
		Insert("products").
		Columns("name", "price", "category", "stock", "description", "created_at", "updated_at").
		Values(
			product.Name,
			product.Price,
			product.Category,
			product.Stock,
			product.Description,
			product.CreatedAt,
			product.UpdatedAt,
		)

	id, err := r.insert(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	stored, err := r.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read created product: %w", err)
	}

	*product = *stored
	return nil
}

// insert runs the statement and returns the generated id
func (r *sqlProductRepository) insert(ctx context.Context, insert squirrel.InsertBuilder) (int64, error) {
	if r.dialect == DialectPostgres {
		var id int64
		err := insert.Suffix("RETURNING id").RunWith(r.db).QueryRowContext(ctx).Scan(&id)
		return id, err
	}

	result, err := insert.RunWith(r.db).ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Update writes every mutable column of an existing product
func (r *sqlProductRepository) Update(ctx context.Context, product *domain.Product) error {
	result, err := r.builder.
		Update("products").
		SetMap(map[string]interface{}{
			"name":        product.Name,
			"price":       product.Price,
			"category":    product.Category,
			"stock":       product.Stock,
			"description": product.Description,
			"updated_at":  product.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": product.ID}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product by ID
func (r *sqlProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.builder.
		Delete("products").
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *sqlProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.builder.
		Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		QueryRowContext(ctx)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves all products, newest first
func (r *sqlProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.builder.
		Select(productColumns...).
		From("products").
		OrderBy("created_at DESC", "id DESC").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.Stock,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
