package client

import (
	"context"
	"errors"
	"sync"

	"product-catalog/internal/domain"
)

// Store keeps a local copy of the catalog in sync with the API.
// Every operation sets Loading for its duration and records the last failure in Err.
type Store struct {
	api ProductAPI

	mu       sync.RWMutex
	products []domain.Product
	loading  bool
	err      string
}

// NewStore creates an empty store. Nothing is fetched until Fetch is called.
func NewStore(api ProductAPI) *Store {
	return &Store{api: api}
}

// Open creates a store and loads the catalog once. The store is returned even
// when the first fetch fails, with the failure recorded in Err.
func Open(ctx context.Context, api ProductAPI) (*Store, error) {
	s := NewStore(api)
	return s, s.Fetch(ctx)
}

// Products returns a copy of the local collection
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	return products
}

// Loading reports whether an operation is in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the message of the last failed operation, or "" after a success
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Fetch replaces the local collection with the server's
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()

	resp, err := s.api.GetProducts(ctx)
	return s.finish(err, func() {
		s.products = resp.Data
	})
}

// Create adds a product and prepends the stored record
func (s *Store) Create(ctx context.Context, input domain.ProductInput) (*ProductResponse, error) {
	s.begin()

	resp, err := checkProduct(s.api.CreateProduct(ctx, input))
	if err := s.finish(err, func() {
		s.products = append([]domain.Product{*resp.Data}, s.products...)
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// Update changes a product and replaces the local copy with the same id
func (s *Store) Update(ctx context.Context, id int64, input domain.ProductInput) (*ProductResponse, error) {
	s.begin()

	resp, err := checkProduct(s.api.UpdateProduct(ctx, id, input))
	if err := s.finish(err, func() {
		for i := range s.products {
			if s.products[i].ID == id {
				s.products[i] = *resp.Data
			}
		}
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete removes a product remotely and from the local collection
func (s *Store) Delete(ctx context.Context, id int64) (*ProductResponse, error) {
	s.begin()

	resp, err := checkProduct(s.api.DeleteProduct(ctx, id))
	if err := s.finish(err, func() {
		kept := s.products[:0:0]
		for _, p := range s.products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.products = kept
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

// finish applies the local change on success or records err, then clears
// the loading flag under the same lock
func (s *Store) finish(err error, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.err = err.Error()
	} else {
		apply()
	}
	s.loading = false
	return err
}

func checkProduct(resp *ProductResponse, err error) (*ProductResponse, error) {
	if err == nil && (resp == nil || resp.Data == nil) {
		err = errors.New("response carried no product")
	}
	return resp, err
}
