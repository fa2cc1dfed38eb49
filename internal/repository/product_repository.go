package repository

import (
	"context"
	"errors"

	"kobo-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, category, buying_price, quantity, unit, expiry_date, threshold_value, user_id, sold_amount`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// Create inserts a product and returns its generated ID.
func (r *productRepository) Create(ctx context.Context, p *model.Product) (int64, error) {
	query := `
		INSERT INTO products (name, category, buying_price, quantity, unit, expiry_date, threshold_value, user_id, sold_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		p.Name, p.Category, p.BuyingPrice, p.Quantity, p.Unit, p.ExpiryDate, p.ThresholdValue, p.UserID,
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Str("name", p.Name).Int64("user_id", p.UserID).Msg("failed to create product")
		return 0, model.NewPersistenceFault("products.create", err)
	}

	r.logger.Debug().Int64("product_id", id).Msg("product created")
	return id, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, model.NewPersistenceFault("products.get_by_id", err)
	}

	return p, nil
}

// GetAll retrieves every product ordered by ID.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`

	products, err := queryProducts(ctx, r.pool, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, model.NewPersistenceFault("products.get_all", err)
	}
	return products, nil
}

// GetRange retrieves a window of products ordered by ID.
func (r *productRepository) GetRange(ctx context.Context, offset, limit int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`

	products, err := queryProducts(ctx, r.pool, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query product range")
		return nil, model.NewPersistenceFault("products.get_range", err)
	}
	return products, nil
}

// GetByCategory retrieves the products filed under category.
func (r *productRepository) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY id`

	products, err := queryProducts(ctx, r.pool, query, category)
	if err != nil {
		r.logger.Error().Err(err).Str("category", category).Msg("failed to query products by category")
		return nil, model.NewPersistenceFault("products.get_by_category", err)
	}
	return products, nil
}

// ApplySale decrements stock and increments sold_amount in a single
// conditional statement. The row lock it takes serializes concurrent sales
// of the same product until tx ends. amount is compared as bigint so values
// past the integer column range are rejected as insufficient stock.
func (r *productRepository) ApplySale(ctx context.Context, tx pgx.Tx, id int64, amount int) (int, int, error) {
	query := `
		UPDATE products
		SET quantity = quantity - $1::bigint, sold_amount = sold_amount + $1::bigint
		WHERE id = $2 AND quantity >= $1::bigint
		RETURNING quantity, sold_amount
	`

	var quantity, soldAmount int
	err := tx.QueryRow(ctx, query, amount, id).Scan(&quantity, &soldAmount)
	if err == nil {
		return quantity, soldAmount, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Int64("product_id", id).Int("amount", amount).Msg("failed to apply sale")
		return 0, 0, model.NewPersistenceFault("products.apply_sale", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to check product existence")
		return 0, 0, model.NewPersistenceFault("products.exists", err)
	}
	if !exists {
		return 0, 0, model.ErrProductNotFound
	}

	r.logger.Debug().Int64("product_id", id).Int("amount", amount).Msg("insufficient stock for sale")
	return 0, 0, model.ErrInsufficientStock
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.BuyingPrice,
		&p.Quantity,
		&p.Unit,
		&p.ExpiryDate,
		&p.ThresholdValue,
		&p.UserID,
		&p.SoldAmount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func queryProducts(ctx context.Context, db DBTX, query string, args ...any) ([]model.Product, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
