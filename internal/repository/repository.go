package repository

import (
	"context"
	"time"

	"kobo-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx so queries can run either
// standalone or inside a caller-owned transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// Create inserts a product and returns its generated ID.
	Create(ctx context.Context, p *model.Product) (int64, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetAll retrieves every product ordered by ID.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetRange retrieves up to limit products ordered by ID, skipping offset rows.
	GetRange(ctx context.Context, offset, limit int) ([]model.Product, error)

	// GetByCategory retrieves the products filed under category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)

	// ApplySale moves amount units from quantity to sold_amount within tx,
	// only if enough stock remains. Returns the new quantity and sold_amount,
	// ErrProductNotFound or ErrInsufficientStock.
	ApplySale(ctx context.Context, tx pgx.Tx, id int64, amount int) (quantity, soldAmount int, err error)
}

// SaleRepository defines the interface for the append-only sale ledger.
type SaleRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create appends a sale within the provided transaction and fills in its
	// ID and SaleDate.
	Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error

	// SumByProduct returns the total quantity recorded for a product.
	SumByProduct(ctx context.Context, productID int64) (int64, error)
}

// ReportRepository defines the read-only aggregate queries behind reports.
type ReportRepository interface {
	// ProductTotals returns the raw totals of one product. Returns nil when absent.
	ProductTotals(ctx context.Context, productID int64) (*model.StockTotals, error)

	// AllTotals returns the totals summed over every product and the number
	// of products they cover.
	AllTotals(ctx context.Context) (model.StockTotals, int64, error)

	// ProfitBetween sums per-sale profit for sales in [start, end). A nil
	// productID covers every product.
	ProfitBetween(ctx context.Context, productID *int64, start, end time.Time) (int64, error)

	// BestSelling ranks products by units sold, highest first, ties by ID.
	BestSelling(ctx context.Context, limit int) ([]model.BestSeller, error)

	// LowStock returns products whose quantity is below threshold, by ID.
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, c *model.Category) (int64, error)
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// Create inserts a user. Returns ErrUserExists on a duplicate email.
	Create(ctx context.Context, u *model.User) (int64, error)

	// GetByEmail returns nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns nil when the user does not exist.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error

	// EnableTwoFactor marks 2FA as active. Returns ErrUserNotFound when absent.
	EnableTwoFactor(ctx context.Context, id int64) error
}

// PasswordResetRepository defines the interface for reset token storage.
type PasswordResetRepository interface {
	// Replace drops any outstanding tokens for the email and stores reset.
	Replace(ctx context.Context, reset *model.PasswordReset) error

	// GetByToken returns nil when the token is unknown.
	GetByToken(ctx context.Context, token string) (*model.PasswordReset, error)

	// CompleteReset stores the new password hash and drops every token for
	// the email in one transaction. Returns ErrUserNotFound when absent.
	CompleteReset(ctx context.Context, email, passwordHash string) error
}
