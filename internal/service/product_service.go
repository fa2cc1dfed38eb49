package service

import (
	"context"
	"fmt"

	"kobo-inventory/internal/model"
	"kobo-inventory/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// Create validates and stores a product owned by userID.
func (s *productService) Create(ctx context.Context, userID int64, req *model.CreateProductRequest) (int64, error) {
	if req == nil {
		return 0, fmt.Errorf("product request is nil")
	}

	p, err := req.ToProduct(userID)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry date %q: %w", req.ExpiryDate, err)
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create product")
		return 0, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Int64("user_id", userID).Msg("product created")
	return id, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// GetAll retrieves every product.
func (s *productService) GetAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")
	return products, nil
}

// GetRange retrieves products in positions [start, end).
func (s *productService) GetRange(ctx context.Context, start, end int) ([]model.Product, error) {
	if start < 0 || end < 0 || start >= end {
		s.logger.Warn().Int("start", start).Int("end", end).Msg("invalid pagination window")
		return nil, model.ErrInvalidPagination
	}

	products, err := s.repo.GetRange(ctx, start, end-start)
	if err != nil {
		s.logger.Error().Err(err).Int("start", start).Int("end", end).Msg("failed to get product range")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetByCategory retrieves the products filed under category.
func (s *productService) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	products, err := s.repo.GetByCategory(ctx, category)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("failed to get products by category")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}
