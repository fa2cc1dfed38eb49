package service

import (
	"context"

	"kobo-inventory/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// Create validates and stores a product owned by userID.
	Create(ctx context.Context, userID int64, req *model.CreateProductRequest) (int64, error)

	// GetByID returns ErrProductNotFound when the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetAll retrieves every product.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetRange retrieves products in positions [start, end).
	GetRange(ctx context.Context, start, end int) ([]model.Product, error)

	// GetByCategory retrieves the products filed under category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)
}

// LedgerService records sales against product stock.
type LedgerService interface {
	// RecordSale moves amountSold units of a product from stock to sold and
	// appends a sale, atomically. A non-empty idempotencyKey makes replays
	// fail with ErrDuplicateSale.
	RecordSale(ctx context.Context, userID, productID int64, amountSold int, idempotencyKey string) (*model.SaleResult, error)
}

// ReportService computes financial views over products and sales.
type ReportService interface {
	ProductReport(ctx context.Context, productID int64) (*model.ProductReport, error)
	AllProductsReport(ctx context.Context) (*model.ProductReport, error)
	BestSellingProducts(ctx context.Context) ([]model.BestSeller, error)
	LowStockProducts(ctx context.Context) ([]model.Product, error)
}

// CategoryService defines operations for category management.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, req *model.CreateCategoryRequest) (int64, error)
}

// AuthService defines account, session and password reset operations.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResult, error)
	EnableTwoFactor(ctx context.Context, userID int64, otp string) error
	ForgetPassword(ctx context.Context, email string) error
	LoadReset(ctx context.Context, token string) (*model.UserSummary, error)
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
}
