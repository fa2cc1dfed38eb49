package service

import (
	"context"
	"errors"
	"fmt"

	"kobo-inventory/internal/idempotency"
	"kobo-inventory/internal/metrics"
	"kobo-inventory/internal/model"
	"kobo-inventory/internal/repository"

	"github.com/rs/zerolog"
)

// SaleObserver receives the outcome of every sale attempt.
type SaleObserver interface {
	ObserveSale(outcome string, units int)
}

type nopObserver struct{}

func (nopObserver) ObserveSale(string, int) {}

// ledgerService implements LedgerService.
type ledgerService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	guard       idempotency.Guard
	observer    SaleObserver
	logger      zerolog.Logger
}

// NewLedgerService creates a new ledger service. A nil guard disables
// idempotency keys and a nil observer discards sale outcomes.
func NewLedgerService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	guard idempotency.Guard,
	observer SaleObserver,
	logger zerolog.Logger,
) LedgerService {
	if guard == nil {
		guard = idempotency.Nop{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &ledgerService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		guard:       guard,
		observer:    observer,
		logger:      logger.With().Str("service", "ledger").Logger(),
	}
}

// RecordSale moves amountSold units from stock to sold and appends a sale in
// one transaction.
func (s *ledgerService) RecordSale(
	ctx context.Context,
	userID, productID int64,
	amountSold int,
	idempotencyKey string,
) (result *model.SaleResult, err error) {
	if amountSold <= 0 {
		s.logger.Warn().Int64("product_id", productID).Int("amount_sold", amountSold).Msg("invalid sale amount")
		s.observer.ObserveSale(metrics.OutcomeInvalid, amountSold)
		return nil, model.ErrInvalidAmount
	}

	defer func() {
		s.observer.ObserveSale(saleOutcome(err), amountSold)
	}()

	claimKey := ""
	if idempotencyKey != "" {
		claimKey = fmt.Sprintf("%d:%s", userID, idempotencyKey)
		claimed, claimErr := s.guard.Claim(ctx, claimKey)
		switch {
		case claimErr != nil:
			// Redis being down must not block sales; the key is simply not enforced.
			s.logger.Warn().Err(claimErr).Str("idempotency_key", idempotencyKey).Msg("idempotency guard unavailable")
			claimKey = ""
		case !claimed:
			s.logger.Info().Str("idempotency_key", idempotencyKey).Int64("product_id", productID).Msg("duplicate sale request")
			return nil, model.ErrDuplicateSale
		}
	}

	defer func() {
		if err != nil && claimKey != "" {
			if relErr := s.guard.Release(context.WithoutCancel(ctx), claimKey); relErr != nil {
				s.logger.Error().Err(relErr).Str("idempotency_key", idempotencyKey).Msg("failed to release idempotency key")
			}
		}
	}()

	// Start transaction
	tx, err := s.saleRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	quantity, soldAmount, err := s.productRepo.ApplySale(ctx, tx, productID, amountSold)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) || errors.Is(err, model.ErrInsufficientStock) {
			s.logger.Info().Err(err).Int64("product_id", productID).Int("amount_sold", amountSold).Msg("sale rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to update stock")
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	sale := &model.Sale{ProductID: productID, QuantitySold: amountSold}
	if err = s.saleRepo.Create(ctx, tx, sale); err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to append sale")
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to record sale: %w", model.NewPersistenceFault("sales.commit", err))
	}

	s.logger.Info().
		Int64("sale_id", sale.ID).
		Int64("product_id", productID).
		Int64("user_id", userID).
		Int("amount_sold", amountSold).
		Int("quantity", quantity).
		Msg("sale recorded")

	return &model.SaleResult{
		ProductID:  productID,
		AmountSold: amountSold,
		Quantity:   quantity,
		SoldAmount: soldAmount,
		SaleID:     sale.ID,
	}, nil
}

func saleOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeRecorded
	case errors.Is(err, model.ErrProductNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, model.ErrInsufficientStock):
		return metrics.OutcomeInsufficient
	case errors.Is(err, model.ErrDuplicateSale):
		return metrics.OutcomeDuplicate
	default:
		return metrics.OutcomeError
	}
}
