package service

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/events"
	"product-catalog/internal/repository"

	"go.uber.org/zap"
)

// ErrProductNotFound is returned when no product has the requested id
var ErrProductNotFound = repository.ErrProductNotFound

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (*domain.Product, error)
}

type productService struct {
	repo      repository.ProductRepository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(repo repository.ProductRepository, publisher events.Publisher, logger *zap.Logger) ProductService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}

	return &productService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// List returns every product, newest first
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get returns a single product
func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates input, applies defaults and stores a new product
func (s *productService) Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	input = input.Normalize()
	if err := input.ValidateCreate(); err != nil {
		return nil, err
	}

	product := input.NewProduct()
	product.CreatedAt = s.now()
	product.UpdatedAt = product.CreatedAt

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreated, product)
	return product, nil
}

// Update merges the supplied fields into an existing product.
// The existence check runs before validation, so a missing id wins over a bad payload.
func (s *productService) Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input = input.Normalize()
	if err := input.ValidateUpdate(); err != nil {
		return nil, err
	}

	input.ApplyTo(product)
	product.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ProductUpdated, updated)
	return updated, nil
}

// Delete removes a product and returns the snapshot taken before removal
func (s *productService) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.publish(ctx, events.ProductDeleted, product)
	return product, nil
}

// publish sends a change event; failures are logged and never fail the write
func (s *productService) publish(ctx context.Context, eventType events.EventType, product *domain.Product) {
	event := events.NewProductEvent(eventType, product)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish product event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(eventType)),
			zap.Int64("product_id", product.ID),
			zap.Error(err),
		)
	}
}
