package repository

import (
	"context"
	"time"

	"product-catalog/internal/domain"
)

// LatencyProfile holds the artificial delay applied after each operation
type LatencyProfile struct {
	List     time.Duration
	FindByID time.Duration
	Create   time.Duration
	Update   time.Duration
	Delete   time.Duration
}

// DefaultLatencyProfile mirrors the response times of the demo in-memory backend
func DefaultLatencyProfile() LatencyProfile {
	return LatencyProfile{
		List:   500 * time.Millisecond,
		Create: 800 * time.Millisecond,
		Update: 600 * time.Millisecond,
		Delete: 400 * time.Millisecond,
	}
}

type delayedProductRepository struct {
	repo    ProductRepository
	latency LatencyProfile
}

// NewDelayedProductRepository wraps repo so every call waits before returning.
// The wait is cut short when ctx is cancelled; the operation itself has already run.
func NewDelayedProductRepository(repo ProductRepository, latency LatencyProfile) ProductRepository {
	return &delayedProductRepository{repo: repo, latency: latency}
}

func (r *delayedProductRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.repo.Create(ctx, product)
	return sleepFor(ctx, r.latency.Create, err)
}

func (r *delayedProductRepository) Update(ctx context.Context, product *domain.Product) error {
	err := r.repo.Update(ctx, product)
	return sleepFor(ctx, r.latency.Update, err)
}

func (r *delayedProductRepository) Delete(ctx context.Context, id int64) error {
	err := r.repo.Delete(ctx, id)
	return sleepFor(ctx, r.latency.Delete, err)
}

func (r *delayedProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := r.repo.FindByID(ctx, id)
	return product, sleepFor(ctx, r.latency.FindByID, err)
}

func (r *delayedProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := r.repo.List(ctx)
	return products, sleepFor(ctx, r.latency.List, err)
}

// sleepFor sleeps for d unless ctx ends first; err is passed through untouched
func sleepFor(ctx context.Context, d time.Duration, err error) error {
	if d <= 0 {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return err
}
