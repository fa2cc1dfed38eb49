package model

import "time"

// Sale is one append-only ledger entry.
type Sale struct {
	ID           int64     `json:"id" db:"id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	QuantitySold int       `json:"quantity_sold" db:"quantity_sold"`
	SaleDate     time.Time `json:"sale_date" db:"sale_date"`
}

// SaleRequest is the payload of POST /api/products/productSold.
type SaleRequest struct {
	ProductID  int64 `json:"productId"`
	AmountSold int   `json:"amountSold"`
}

// SaleResult is the product state after a recorded sale.
type SaleResult struct {
	ProductID  int64 `json:"productId"`
	AmountSold int   `json:"amountSold"`
	Quantity   int   `json:"quantity"`
	SoldAmount int   `json:"soldAmount"`
	SaleID     int64 `json:"saleId"`
}

// SaleResponse is the HTTP body for a successful sale.
type SaleResponse struct {
	Message string `json:"message"`
	SaleResult
}
