package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"kobo-inventory/internal/catalog"
	"kobo-inventory/internal/model"
	"kobo-inventory/internal/service"

	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader lets clients retry a sale without recording it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// CatalogImporter imports a catalogue file for a user.
type CatalogImporter interface {
	Import(ctx context.Context, userID int64, path string) (*catalog.Result, error)
}

// ImportRequest is the payload of POST /api/products/import.
type ImportRequest struct {
	File string `json:"file" validate:"required,max=512"`
}

// ImportFailureResponse reports a failed import together with the rows
// stored before it stopped.
type ImportFailureResponse struct {
	model.ErrorResponse
	Result *catalog.Result `json:"result"`
}

// ProductHandler handles product and sale HTTP requests.
type ProductHandler struct {
	products service.ProductService
	ledger   service.LedgerService
	importer CatalogImporter
	decoder  requestDecoder
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(
	products service.ProductService,
	ledger service.LedgerService,
	importer CatalogImporter,
	logger zerolog.Logger,
) *ProductHandler {
	logger = logger.With().Str("handler", "product").Logger()
	return &ProductHandler{
		products: products,
		ledger:   ledger,
		importer: importer,
		decoder:  newRequestDecoder(logger),
		logger:   logger,
	}
}

// Create handles POST /api/products/newProduct.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	var req model.CreateProductRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	id, err := h.products.Create(r.Context(), uid, &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateProductResponse{
		Message:   "Product created successfully",
		ProductID: id,
	})
}

// Get handles GET /api/products/getProduct?productId=.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "productId must be a positive integer", h.logger)
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetAll handles GET /api/products/getAllProducts.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAll(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetPage handles GET /api/products/getProductsWithPagination?start=&end=.
func (h *ProductHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	start, errStart := strconv.Atoi(r.URL.Query().Get("start"))
	end, errEnd := strconv.Atoi(r.URL.Query().Get("end"))
	if errStart != nil || errEnd != nil {
		respondError(w, r, model.ErrInvalidPagination, h.logger)
		return
	}

	products, err := h.products.GetRange(r.Context(), start, end)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// ByCategory handles POST /api/categories/products.
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryFilterRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	products, err := h.products.GetByCategory(r.Context(), req.Category)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// RecordSale handles POST /api/products/productSold.
func (h *ProductHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	var req model.SaleRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > 255 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "Idempotency-Key must be at most 255 characters", h.logger)
		return
	}

	result, err := h.ledger.RecordSale(r.Context(), uid, req.ProductID, req.AmountSold, key)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.SaleResponse{
		Message:    "Product sold successfully",
		SaleResult: *result,
	})
}

// Import handles POST /api/products/import.
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	var req ImportRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	result, err := h.importer.Import(r.Context(), uid, req.File)
	if err != nil && result != nil {
		status, body := errorResponse(r, err, h.logger)
		writeJSON(w, status, ImportFailureResponse{ErrorResponse: body, Result: result})
		return
	}
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
