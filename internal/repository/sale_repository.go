package repository

import (
	"context"

	"kobo-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// saleRepository implements the SaleRepository interface using PostgreSQL.
type saleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSaleRepository creates a new PostgreSQL-backed sale ledger.
func NewSaleRepository(pool *pgxpool.Pool, logger zerolog.Logger) SaleRepository {
	return &saleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "sale").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *saleRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, model.NewPersistenceFault("sales.begin", err)
	}
	return tx, nil
}

// Create appends a sale within the provided transaction.
func (r *saleRepository) Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	query := `
		INSERT INTO sales (product_id, quantity_sold, sale_date)
		VALUES ($1, $2, NOW())
		RETURNING id, sale_date
	`

	err := tx.QueryRow(ctx, query, sale.ProductID, sale.QuantitySold).Scan(&sale.ID, &sale.SaleDate)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("product_id", sale.ProductID).
			Int("quantity_sold", sale.QuantitySold).
			Msg("failed to record sale")
		return model.NewPersistenceFault("sales.create", err)
	}

	r.logger.Debug().
		Int64("sale_id", sale.ID).
		Int64("product_id", sale.ProductID).
		Msg("sale recorded")

	return nil
}

// SumByProduct returns the total quantity recorded for a product.
func (r *saleRepository) SumByProduct(ctx context.Context, productID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_sold), 0)::bigint FROM sales WHERE product_id = $1`, productID,
	).Scan(&total)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to sum sales")
		return 0, model.NewPersistenceFault("sales.sum_by_product", err)
	}
	return total, nil
}
