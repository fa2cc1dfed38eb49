package model

// Category is a lookup entry for grouping products.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	ProductType string `json:"product_type" db:"product_type"`
}

// CreateCategoryRequest is the payload for POST /api/categories.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	ProductType string `json:"product_type" validate:"required,max=255"`
}

// CreateCategoryResponse is returned after a category is stored.
type CreateCategoryResponse struct {
	Message    string `json:"message"`
	CategoryID int64  `json:"category_id"`
}
