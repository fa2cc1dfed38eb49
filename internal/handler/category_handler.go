package handler

import (
	"net/http"

	"kobo-inventory/internal/model"
	"kobo-inventory/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category HTTP requests.
type CategoryHandler struct {
	categories service.CategoryService
	decoder    requestDecoder
	logger     zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	logger = logger.With().Str("handler", "category").Logger()
	return &CategoryHandler{
		categories: categories,
		decoder:    newRequestDecoder(logger),
		logger:     logger,
	}
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	writeJSON(w, http.StatusOK, categories)
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	id, err := h.categories.Create(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateCategoryResponse{
		Message:    "Category created successfully",
		CategoryID: id,
	})
}
