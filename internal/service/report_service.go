package service

import (
	"context"
	"fmt"
	"time"

	"kobo-inventory/internal/model"
	"kobo-inventory/internal/repository"

	"github.com/rs/zerolog"
)

const (
	// LowStockThreshold is the quantity below which a product is reported as low on stock.
	LowStockThreshold = 5

	// BestSellerLimit caps the best-selling products report.
	BestSellerLimit = 10
)

// reportService implements ReportService.
type reportService struct {
	repo   repository.ReportRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(repo repository.ReportRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("service", "report").Logger(),
	}
}

// ProductReport returns the financial view of one product.
func (s *reportService) ProductReport(ctx context.Context, productID int64) (*model.ProductReport, error) {
	totals, err := s.repo.ProductTotals(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to get product totals")
		return nil, fmt.Errorf("failed to build product report: %w", err)
	}
	if totals == nil {
		return nil, model.ErrProductNotFound
	}

	moM, yoY, err := s.periodDeltas(ctx, &productID)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to compute period profit")
		return nil, fmt.Errorf("failed to build product report: %w", err)
	}

	report := model.NewProductReport(*totals, moM, yoY)
	return &report, nil
}

// AllProductsReport returns the financial view summed over every product.
func (s *reportService) AllProductsReport(ctx context.Context) (*model.ProductReport, error) {
	totals, count, err := s.repo.AllTotals(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get totals")
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	if count == 0 {
		return nil, model.ErrNoProductsFound
	}

	moM, yoY, err := s.periodDeltas(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute period profit")
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	report := model.NewProductReport(totals, moM, yoY)
	s.logger.Debug().Int64("products", count).Msg("built report over all products")
	return &report, nil
}

// BestSellingProducts returns the top sellers by units sold.
func (s *reportService) BestSellingProducts(ctx context.Context) ([]model.BestSeller, error) {
	sellers, err := s.repo.BestSelling(ctx, BestSellerLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get best selling products")
		return nil, fmt.Errorf("failed to get best selling products: %w", err)
	}
	return sellers, nil
}

// LowStockProducts returns products whose quantity is below LowStockThreshold.
func (s *reportService) LowStockProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.LowStock(ctx, LowStockThreshold)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get low stock products")
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return products, nil
}

// periodDeltas returns the month-over-month and year-over-year profit deltas.
func (s *reportService) periodDeltas(ctx context.Context, productID *int64) (moM, yoY int64, err error) {
	w := calendarWindows(s.now())

	profit := func(start, end time.Time) int64 {
		if err != nil {
			return 0
		}
		var p int64
		p, err = s.repo.ProfitBetween(ctx, productID, start, end)
		return p
	}

	currentMonth := profit(w.monthStart, w.nextMonthStart)
	previousMonth := profit(w.prevMonthStart, w.monthStart)
	currentYear := profit(w.yearStart, w.nextYearStart)
	previousYear := profit(w.prevYearStart, w.yearStart)
	if err != nil {
		return 0, 0, err
	}

	return currentMonth - previousMonth, currentYear - previousYear, nil
}

// windows holds the half-open calendar boundaries around a reference time.
type windows struct {
	prevMonthStart, monthStart, nextMonthStart time.Time
	prevYearStart, yearStart, nextYearStart    time.Time
}

func calendarWindows(now time.Time) windows {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	return windows{
		prevMonthStart: monthStart.AddDate(0, -1, 0),
		monthStart:     monthStart,
		nextMonthStart: monthStart.AddDate(0, 1, 0),
		prevYearStart:  yearStart.AddDate(-1, 0, 0),
		yearStart:      yearStart,
		nextYearStart:  yearStart.AddDate(1, 0, 0),
	}
}
