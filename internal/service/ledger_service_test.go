package service

import (
	"context"
	"errors"
	"testing"

	"kobo-inventory/internal/metrics"
	"kobo-inventory/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	sales    *MockSaleRepository
	products *MockProductRepository
	guard    *MockGuard
	tx       *MockTx
	observer *recordingObserver
	service  LedgerService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		sales:    new(MockSaleRepository),
		products: new(MockProductRepository),
		guard:    new(MockGuard),
		tx:       new(MockTx),
		observer: &recordingObserver{},
	}
	f.service = NewLedgerService(f.sales, f.products, f.guard, f.observer, zerolog.Nop())
	return f
}

func (f *ledgerFixture) assertExpectations(t *testing.T) {
	f.sales.AssertExpectations(t)
	f.products.AssertExpectations(t)
	f.guard.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func TestLedgerService_RecordSale_Success(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.sales.On("BeginTx", ctx).Return(f.tx, nil)
	f.products.On("ApplySale", ctx, f.tx, int64(1), 3).Return(7, 5, nil)
	f.sales.On("Create", ctx, f.tx, mock.AnythingOfType("*model.Sale")).
		Run(func(args mock.Arguments) {
			sale := args.Get(2).(*model.Sale)
			assert.Equal(t, int64(1), sale.ProductID)
			assert.Equal(t, 3, sale.QuantitySold)
			sale.ID = 42
		}).
		Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	result, err := f.service.RecordSale(ctx, 9, 1, 3, "")

	require.NoError(t, err)
	assert.Equal(t, &model.SaleResult{ProductID: 1, AmountSold: 3, Quantity: 7, SoldAmount: 5, SaleID: 42}, result)
	assert.True(t, f.tx.committed)
	assert.False(t, f.tx.rolledBack)
	assert.Equal(t, []string{metrics.OutcomeRecorded}, f.observer.outcomes)
	f.guard.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestLedgerService_RecordSale_InvalidAmount(t *testing.T) {
	for _, amount := range []int{0, -1, -100} {
		f := newLedgerFixture()

		result, err := f.service.RecordSale(context.Background(), 9, 1, amount, "key")

		assert.ErrorIs(t, err, model.ErrInvalidAmount)
		assert.Nil(t, result)
		assert.Equal(t, []string{metrics.OutcomeInvalid}, f.observer.outcomes)
		f.sales.AssertNotCalled(t, "BeginTx", mock.Anything)
		f.guard.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything)
	}
}

func TestLedgerService_RecordSale_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{name: "unknown product", err: model.ErrProductNotFound, outcome: metrics.OutcomeNotFound},
		{name: "not enough stock", err: model.ErrInsufficientStock, outcome: metrics.OutcomeInsufficient},
		{name: "driver failure", err: model.NewPersistenceFault("products.apply_sale", errors.New("conn reset")), outcome: metrics.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newLedgerFixture()

			f.sales.On("BeginTx", ctx).Return(f.tx, nil)
			f.products.On("ApplySale", ctx, f.tx, int64(1), 50).Return(0, 0, tt.err)
			f.tx.On("Rollback", ctx).Return(nil)

			result, err := f.service.RecordSale(ctx, 9, 1, 50, "")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, result)
			assert.True(t, f.tx.rolledBack)
			assert.Equal(t, []string{tt.outcome}, f.observer.outcomes)
			f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestLedgerService_RecordSale_AmountBeyondStockColumn(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.sales.On("BeginTx", ctx).Return(f.tx, nil)
	f.products.On("ApplySale", ctx, f.tx, int64(1), 3_000_000_000).Return(0, 0, model.ErrInsufficientStock)
	f.tx.On("Rollback", ctx).Return(nil)

	result, err := f.service.RecordSale(ctx, 9, 1, 3_000_000_000, "")

	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.NotErrorIs(t, err, model.ErrPersistence)
	assert.Nil(t, result)
	assert.True(t, f.tx.rolledBack)
	assert.Equal(t, []string{metrics.OutcomeInsufficient}, f.observer.outcomes)
	f.assertExpectations(t)
}

func TestLedgerService_RecordSale_AppendFails(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	fault := model.NewPersistenceFault("sales.create", errors.New("disk full"))

	f.sales.On("BeginTx", ctx).Return(f.tx, nil)
	f.products.On("ApplySale", ctx, f.tx, int64(1), 2).Return(8, 2, nil)
	f.sales.On("Create", ctx, f.tx, mock.AnythingOfType("*model.Sale")).Return(fault)
	f.tx.On("Rollback", ctx).Return(nil)

	result, err := f.service.RecordSale(ctx, 9, 1, 2, "")

	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.Nil(t, result)
	assert.True(t, f.tx.rolledBack)
	assert.False(t, f.tx.committed)
	f.assertExpectations(t)
}

func TestLedgerService_RecordSale_CommitFails(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.sales.On("BeginTx", ctx).Return(f.tx, nil)
	f.products.On("ApplySale", ctx, f.tx, int64(1), 2).Return(8, 2, nil)
	f.sales.On("Create", ctx, f.tx, mock.AnythingOfType("*model.Sale")).Return(nil)
	f.tx.On("Commit", ctx).Return(errors.New("serialization failure"))
	f.tx.On("Rollback", ctx).Return(nil)

	result, err := f.service.RecordSale(ctx, 9, 1, 2, "")

	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.Nil(t, result)
	assert.Equal(t, []string{metrics.OutcomeError}, f.observer.outcomes)
	f.assertExpectations(t)
}

func TestLedgerService_RecordSale_BeginTxFails(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	fault := model.NewPersistenceFault("sales.begin", errors.New("pool closed"))

	f.sales.On("BeginTx", ctx).Return(nil, fault)

	result, err := f.service.RecordSale(ctx, 9, 1, 2, "")

	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.Nil(t, result)
	f.products.AssertNotCalled(t, "ApplySale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestLedgerService_RecordSale_IdempotencyKey(t *testing.T) {
	t.Run("first use records the sale", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.guard.On("Claim", ctx, "9:abc").Return(true, nil)
		f.sales.On("BeginTx", ctx).Return(f.tx, nil)
		f.products.On("ApplySale", ctx, f.tx, int64(1), 1).Return(9, 1, nil)
		f.sales.On("Create", ctx, f.tx, mock.AnythingOfType("*model.Sale")).Return(nil)
		f.tx.On("Commit", ctx).Return(nil)

		_, err := f.service.RecordSale(ctx, 9, 1, 1, "abc")

		require.NoError(t, err)
		f.guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("replay is rejected before touching stock", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.guard.On("Claim", ctx, "9:abc").Return(false, nil)

		result, err := f.service.RecordSale(ctx, 9, 1, 1, "abc")

		assert.ErrorIs(t, err, model.ErrDuplicateSale)
		assert.Nil(t, result)
		assert.Equal(t, []string{metrics.OutcomeDuplicate}, f.observer.outcomes)
		f.sales.AssertNotCalled(t, "BeginTx", mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("failed sale releases the key", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.guard.On("Claim", ctx, "9:abc").Return(true, nil)
		f.guard.On("Release", mock.Anything, "9:abc").Return(nil)
		f.sales.On("BeginTx", ctx).Return(f.tx, nil)
		f.products.On("ApplySale", ctx, f.tx, int64(1), 1).Return(0, 0, model.ErrInsufficientStock)
		f.tx.On("Rollback", ctx).Return(nil)

		_, err := f.service.RecordSale(ctx, 9, 1, 1, "abc")

		assert.ErrorIs(t, err, model.ErrInsufficientStock)
		f.assertExpectations(t)
	})

	t.Run("unavailable guard does not block the sale", func(t *testing.T) {
		ctx := context.Background()
		f := newLedgerFixture()

		f.guard.On("Claim", ctx, "9:abc").Return(false, errors.New("connection refused"))
		f.sales.On("BeginTx", ctx).Return(f.tx, nil)
		f.products.On("ApplySale", ctx, f.tx, int64(1), 1).Return(0, 0, model.ErrProductNotFound)
		f.tx.On("Rollback", ctx).Return(nil)

		_, err := f.service.RecordSale(ctx, 9, 1, 1, "abc")

		assert.ErrorIs(t, err, model.ErrProductNotFound)
		f.guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestNewLedgerService_NilCollaborators(t *testing.T) {
	ctx := context.Background()
	sales := new(MockSaleRepository)
	products := new(MockProductRepository)
	tx := new(MockTx)

	service := NewLedgerService(sales, products, nil, nil, zerolog.Nop())

	sales.On("BeginTx", ctx).Return(tx, nil)
	products.On("ApplySale", ctx, tx, int64(3), 1).Return(0, 1, nil)
	sales.On("Create", ctx, tx, mock.AnythingOfType("*model.Sale")).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	result, err := service.RecordSale(ctx, 1, 3, 1, "ignored-without-guard")

	require.NoError(t, err)
	assert.Equal(t, 0, result.Quantity)
	assert.Equal(t, 1, result.SoldAmount)
}
