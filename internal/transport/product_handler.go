package transport

import (
	"errors"
	"net/http"
	"strconv"

	"product-catalog/internal/domain"
	"product-catalog/internal/middleware"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgProductNotFound = "Product not found"
	msgInvalidBody     = "Invalid request body"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListProducts handles listing the whole catalog
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to fetch products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	middleware.RespondWithList(w, products, len(products))
}

// GetProduct handles fetching a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, msgProductNotFound)
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to fetch product", id)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, product, "")
}

// CreateProduct handles adding a product to the catalog
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to create product", 0)
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))
	middleware.RespondWithData(w, http.StatusCreated, product, "Product created successfully")
}

// UpdateProduct handles a partial update of an existing product
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, msgProductNotFound)
		return
	}

	// A missing id is reported before anything about the payload
	if _, err := h.productService.Get(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err, "Failed to update product", id)
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to update product", id)
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", product.ID))
	middleware.RespondWithData(w, http.StatusOK, product, "Product updated successfully")
}

// DeleteProduct handles removing a product; the removed record is echoed back
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, msgProductNotFound)
		return
	}

	product, err := h.productService.Delete(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to delete product", id)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithData(w, http.StatusOK, product, "Product deleted successfully")
}

// productID parses the {id} path segment. Anything that is not an integer cannot name a product.
func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) decodeInput(w http.ResponseWriter, r *http.Request) (domain.ProductInput, bool) {
	payload, err := middleware.DecodeJSONObject(w, r)
	if err != nil {
		h.logger.Debug("Product payload decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return domain.ProductInput{}, false
	}

	input, err := domain.DecodeProductInput(payload)
	if err != nil {
		h.respondWithServiceError(w, err, msgInvalidBody, 0)
		return domain.ProductInput{}, false
	}

	return input, true
}

// respondWithServiceError maps service errors to envelope responses.
// Internal failures are logged and the caller only sees fallback.
func (h *ProductHandler) respondWithServiceError(w http.ResponseWriter, err error, fallback string, id int64) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.Debug("Product validation failed",
			zap.String("reason", validationErr.Message),
			zap.Any("fields", validationErr.Fields),
		)
		middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, msgProductNotFound)
	default:
		h.logger.Error(fallback, zap.Int64("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
