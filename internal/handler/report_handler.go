package handler

import (
	"net/http"

	"kobo-inventory/internal/model"
	"kobo-inventory/internal/service"

	"github.com/rs/zerolog"
)

// ReportHandler serves the financial reports.
type ReportHandler struct {
	reports service.ReportService
	decoder requestDecoder
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports service.ReportService, logger zerolog.Logger) *ReportHandler {
	logger = logger.With().Str("handler", "report").Logger()
	return &ReportHandler{
		reports: reports,
		decoder: newRequestDecoder(logger),
		logger:  logger,
	}
}

// ProductReport handles POST /api/products/getProductReport.
func (h *ReportHandler) ProductReport(w http.ResponseWriter, r *http.Request) {
	var req model.ProductIDRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	report, err := h.reports.ProductReport(r.Context(), req.ProductID)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// AllProductsReport handles GET /api/products/getAllProductsReport.
func (h *ReportHandler) AllProductsReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.AllProductsReport(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// BestSelling handles GET /api/products/bestSellingProducts.
func (h *ReportHandler) BestSelling(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.reports.BestSellingProducts(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if sellers == nil {
		sellers = []model.BestSeller{}
	}

	writeJSON(w, http.StatusOK, sellers)
}

// LowStock handles GET /api/products/lowStockProducts.
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.reports.LowStockProducts(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}
