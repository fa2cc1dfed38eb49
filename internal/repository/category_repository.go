package repository

import (
	"context"

	"kobo-inventory/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, product_type FROM categories ORDER BY id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, model.NewPersistenceFault("categories.list", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ProductType); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, model.NewPersistenceFault("categories.list", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, model.NewPersistenceFault("categories.list", err)
	}

	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, product_type) VALUES ($1, $2) RETURNING id`,
		c.Name, c.ProductType,
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Str("name", c.Name).Msg("failed to create category")
		return 0, model.NewPersistenceFault("categories.create", err)
	}
	return id, nil
}
