package service

import (
	"context"
	"fmt"

	"kobo-inventory/internal/model"
	"kobo-inventory/internal/repository"

	"github.com/rs/zerolog"
)

type categoryService struct {
	repo   repository.CategoryRepository
	logger zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		logger: logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (int64, error) {
	if req == nil {
		return 0, fmt.Errorf("category request is nil")
	}

	id, err := s.repo.Create(ctx, &model.Category{Name: req.Name, ProductType: req.ProductType})
	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to create category")
		return 0, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Int64("category_id", id).Str("name", req.Name).Msg("category created")
	return id, nil
}
