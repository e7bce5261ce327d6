package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"product-catalog/internal/domain"
)

// DefaultBaseURL is where the catalog API listens in a local setup
const DefaultBaseURL = "http://localhost:5000/api"

// APIError is returned for every non-2xx response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ProductResponse is the envelope around a single product
type ProductResponse struct {
	Success bool            `json:"success"`
	Data    *domain.Product `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ListResponse is the envelope around the product collection
type ListResponse struct {
	Success bool             `json:"success"`
	Data    []domain.Product `json:"data"`
	Total   int              `json:"total"`
	Error   string           `json:"error,omitempty"`
}

// ProductAPI is the set of catalog operations the Store depends on
type ProductAPI interface {
	GetProducts(ctx context.Context) (*ListResponse, error)
	GetProduct(ctx context.Context, id int64) (*ProductResponse, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (*ProductResponse, error)
	UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, id int64) (*ProductResponse, error)
}

// Client talks to the catalog HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds every request made by the client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the API rooted at baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client sends requests to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetProducts fetches the whole catalog
func (c *Client) GetProducts(ctx context.Context) (*ListResponse, error) {
	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProduct fetches a single product
func (c *Client) GetProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	return c.productRequest(ctx, http.MethodGet, productPath(id), nil)
}

// CreateProduct submits a new product
func (c *Client) CreateProduct(ctx context.Context, input domain.ProductInput) (*ProductResponse, error) {
	return c.productRequest(ctx, http.MethodPost, "/products", input)
}

// UpdateProduct sends the supplied fields of input; nil fields are left out of the body
func (c *Client) UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (*ProductResponse, error) {
	return c.productRequest(ctx, http.MethodPut, productPath(id), input)
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id int64) (*ProductResponse, error) {
	return c.productRequest(ctx, http.MethodDelete, productPath(id), nil)
}

func productPath(id int64) string {
	return fmt.Sprintf("/products/%d", id)
}

func (c *Client) productRequest(ctx context.Context, method, path string, body interface{}) (*ProductResponse, error) {
	var resp ProductResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// errorEnvelope picks the error message out of a failure response
type errorEnvelope struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call catalog API: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
		}

		var envelope errorEnvelope
		if json.Unmarshal(payload, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
