package model

import "time"

// Product is a stocked item owned by the user who created it.
// Quantity and SoldAmount only change through recorded sales.
type Product struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Category       string     `json:"category" db:"category"`
	BuyingPrice    int64      `json:"buying_price" db:"buying_price"`
	Quantity       int        `json:"quantity" db:"quantity"`
	Unit           string     `json:"unit" db:"unit"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	ThresholdValue int        `json:"threshold_value" db:"threshold_value"`
	UserID         int64      `json:"user_id" db:"user_id"`
	SoldAmount     int        `json:"sold_amount" db:"sold_amount"`
}

// CreateProductRequest is the payload for adding a product to the catalogue.
type CreateProductRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Category       string `json:"category" validate:"required,max=255"`
	BuyingPrice    int64  `json:"buying_price" validate:"gte=0"`
	Quantity       int    `json:"quantity" validate:"gte=0,lte=2147483647"`
	Unit           string `json:"unit" validate:"max=50"`
	ExpiryDate     string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	ThresholdValue int    `json:"threshold_value" validate:"gte=0,lte=2147483647"`
}

// ToProduct builds the product owned by userID. ExpiryDate must already be
// validated.
func (r *CreateProductRequest) ToProduct(userID int64) (*Product, error) {
	p := &Product{
		Name:           r.Name,
		Category:       r.Category,
		BuyingPrice:    r.BuyingPrice,
		Quantity:       r.Quantity,
		Unit:           r.Unit,
		ThresholdValue: r.ThresholdValue,
		UserID:         userID,
	}
	if r.ExpiryDate != "" {
		t, err := time.Parse(time.DateOnly, r.ExpiryDate)
		if err != nil {
			return nil, err
		}
		p.ExpiryDate = &t
	}
	return p, nil
}

// CreateProductResponse is returned after a product is stored.
type CreateProductResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
}

// ProductIDRequest carries a product id in a request body.
type ProductIDRequest struct {
	ProductID int64 `json:"productId"`
}

// CategoryFilterRequest selects products by category name.
type CategoryFilterRequest struct {
	Category string `json:"category" validate:"required"`
}
