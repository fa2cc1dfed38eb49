package repository

import (
	"context"
	"errors"
	"time"

	"kobo-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// reportRepository implements the ReportRepository interface using PostgreSQL.
type reportRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "report").Logger(),
	}
}

// ProductTotals returns the raw totals of one product.
func (r *reportRepository) ProductTotals(ctx context.Context, productID int64) (*model.StockTotals, error) {
	query := `
		SELECT quantity, sold_amount,
		       quantity::bigint * buying_price,
		       sold_amount::bigint * buying_price
		FROM products
		WHERE id = $1
	`

	var t model.StockTotals
	err := r.pool.QueryRow(ctx, query, productID).Scan(&t.Quantity, &t.SoldAmount, &t.QuantityValue, &t.SoldValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to query product totals")
		return nil, model.NewPersistenceFault("reports.product_totals", err)
	}

	return &t, nil
}

// AllTotals returns the totals summed over every product.
func (r *reportRepository) AllTotals(ctx context.Context) (model.StockTotals, int64, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(quantity), 0)::bigint,
		       COALESCE(SUM(sold_amount), 0)::bigint,
		       COALESCE(SUM(quantity::bigint * buying_price), 0)::bigint,
		       COALESCE(SUM(sold_amount::bigint * buying_price), 0)::bigint
		FROM products
	`

	var (
		t     model.StockTotals
		count int64
	)
	err := r.pool.QueryRow(ctx, query).Scan(&count, &t.Quantity, &t.SoldAmount, &t.QuantityValue, &t.SoldValue)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query aggregate totals")
		return model.StockTotals{}, 0, model.NewPersistenceFault("reports.all_totals", err)
	}

	return t, count, nil
}

// ProfitBetween sums per-sale profit for sales dated in [start, end).
// Per-sale profit is the stored formula quantity_sold * buying_price minus
// quantity_sold * buying_price.
func (r *reportRepository) ProfitBetween(ctx context.Context, productID *int64, start, end time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(s.quantity_sold * p.buying_price - s.quantity_sold * p.buying_price), 0)::bigint
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.sale_date >= $1 AND s.sale_date < $2
		  AND ($3::bigint IS NULL OR s.product_id = $3)
	`

	var profit int64
	if err := r.pool.QueryRow(ctx, query, start, end, productID).Scan(&profit); err != nil {
		r.logger.Error().Err(err).
			Time("start", start).
			Time("end", end).
			Msg("failed to query profit window")
		return 0, model.NewPersistenceFault("reports.profit_between", err)
	}

	return profit, nil
}

// BestSelling ranks products by units sold.
func (r *reportRepository) BestSelling(ctx context.Context, limit int) ([]model.BestSeller, error) {
	query := `
		SELECT p.id, p.name, p.category, p.buying_price, p.quantity, p.unit, p.expiry_date,
		       p.threshold_value, p.user_id, p.sold_amount,
		       SUM(s.quantity_sold)::bigint AS total_sold
		FROM products p
		JOIN sales s ON s.product_id = p.id
		GROUP BY p.id
		ORDER BY total_sold DESC, p.id ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Msg("failed to query best sellers")
		return nil, model.NewPersistenceFault("reports.best_selling", err)
	}
	defer rows.Close()

	sellers := []model.BestSeller{}
	for rows.Next() {
		var b model.BestSeller
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Category,
			&b.BuyingPrice,
			&b.Quantity,
			&b.Unit,
			&b.ExpiryDate,
			&b.ThresholdValue,
			&b.UserID,
			&b.SoldAmount,
			&b.TotalSold,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan best seller row")
			return nil, model.NewPersistenceFault("reports.best_selling", err)
		}
		sellers = append(sellers, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating best seller rows")
		return nil, model.NewPersistenceFault("reports.best_selling", err)
	}

	return sellers, nil
}

// LowStock returns products whose quantity is below threshold.
func (r *reportRepository) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE quantity < $1 ORDER BY id`

	products, err := queryProducts(ctx, r.pool, query, threshold)
	if err != nil {
		r.logger.Error().Err(err).Int("threshold", threshold).Msg("failed to query low stock products")
		return nil, model.NewPersistenceFault("reports.low_stock", err)
	}
	return products, nil
}
