package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"product-catalog/internal/domain"
)

// DefaultSeedProducts returns the catalog a fresh in-memory store starts with
func DefaultSeedProducts() []domain.Product {
	return []domain.Product{
		{Name: "Laptop", Price: 15000000, Category: "Electronics", Stock: 10},
		{Name: "Smartphone", Price: 5000000, Category: "Electronics", Stock: 20},
	}
}

type memoryProductRepository struct {
	mu       sync.RWMutex
	products []*domain.Product
	nextID   int64
}

// NewMemoryProductRepository creates a process-local ProductRepository.
// Seed products get consecutive ids starting at 1; state lives until the process exits.
func NewMemoryProductRepository(seed []domain.Product) ProductRepository {
	r := &memoryProductRepository{
		products: make([]*domain.Product, 0, len(seed)),
		nextID:   1,
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	for i := range seed {
		product := seed[i]
		product.ID = r.nextID
		r.nextID++
		if product.CreatedAt.IsZero() {
			product.CreatedAt = now
		}
		if product.UpdatedAt.IsZero() {
			product.UpdatedAt = product.CreatedAt
		}
		r.products = append(r.products, &product)
	}

	return r
}

// Create stores a copy of product under the next free id
func (r *memoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++

	stored := *product
	r.products = append(r.products, &stored)
	return nil
}

// Update replaces the stored product with the same id
func (r *memoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 {
		return ErrProductNotFound
	}

	stored := *product
	r.products[i] = &stored
	return nil
}

// Delete removes the product with the given id
func (r *memoryProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}

	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

// FindByID returns a copy of the stored product
func (r *memoryProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}

	product := *r.products[i]
	return &product, nil
}

// List returns copies of all products, newest first
func (r *memoryProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	products := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		product := *p
		products = append(products, &product)
	}
	r.mu.RUnlock()

	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})

	return products, nil
}

// indexOf must be called with the lock held
func (r *memoryProductRepository) indexOf(id int64) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
