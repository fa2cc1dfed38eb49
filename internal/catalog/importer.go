package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"kobo-inventory/internal/model"
	"kobo-inventory/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ProductCreator stores a validated product for a user.
type ProductCreator interface {
	Create(ctx context.Context, userID int64, req *model.CreateProductRequest) (int64, error)
}

// LineError describes a rejected catalogue row.
type LineError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result summarises an import.
type Result struct {
	Imported   int         `json:"imported"`
	ProductIDs []int64     `json:"product_ids"`
	Errors     []LineError `json:"errors"`
}

// Importer turns catalogue rows into products.
type Importer struct {
	loader   Loader
	products ProductCreator
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewImporter creates an importer reading files through loader.
func NewImporter(loader Loader, products ProductCreator, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:   loader,
		products: products,
		validate: validation.New(),
		logger:   logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads the catalogue at path and creates one product per valid row,
// owned by userID. Invalid rows are skipped and reported in the result.
// path must be relative and stay within the catalogue root. If storing a row
// fails the import stops and the rows committed so far are returned with the
// error.
func (i *Importer) Import(ctx context.Context, userID int64, path string) (*Result, error) {
	if path == "" || !filepath.IsLocal(path) {
		return nil, model.ErrInvalidImportPath
	}

	rows, err := i.loader.Load(ctx, filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		i.logger.Warn().Err(err).Str("path", path).Msg("catalogue could not be loaded")
		return nil, fmt.Errorf("%w: %v", model.ErrImportUnreadable, err)
	}

	result := &Result{ProductIDs: []int64{}, Errors: []LineError{}}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, reason := i.parse(row)
		if reason != "" {
			result.Errors = append(result.Errors, LineError{Line: row.Line, Reason: reason})
			continue
		}

		id, err := i.products.Create(ctx, userID, req)
		if err != nil {
			i.logger.Error().Err(err).Int("line", row.Line).Str("path", path).Msg("failed to import row")
			return result, fmt.Errorf("failed to import line %d: %w", row.Line, err)
		}
		result.Imported++
		result.ProductIDs = append(result.ProductIDs, id)
	}

	i.logger.Info().
		Str("path", path).
		Int64("user_id", userID).
		Int("imported", result.Imported).
		Int("rejected", len(result.Errors)).
		Msg("catalogue imported")

	return result, nil
}

// parse converts a row to a product request. A non-empty reason rejects it.
func (i *Importer) parse(row Row) (*model.CreateProductRequest, string) {
	if len(row.Values) != len(Columns) {
		return nil, fmt.Sprintf("expected %d columns, got %d", len(Columns), len(row.Values))
	}

	v := make([]string, len(row.Values))
	for idx, value := range row.Values {
		v[idx] = strings.TrimSpace(value)
	}

	buyingPrice, err := strconv.ParseInt(v[2], 10, 64)
	if err != nil {
		return nil, "buying_price must be an integer"
	}
	quantity, err := strconv.Atoi(v[3])
	if err != nil {
		return nil, "quantity must be an integer"
	}
	threshold := 0
	if v[6] != "" {
		if threshold, err = strconv.Atoi(v[6]); err != nil {
			return nil, "threshold_value must be an integer"
		}
	}

	req := &model.CreateProductRequest{
		Name:           v[0],
		Category:       v[1],
		BuyingPrice:    buyingPrice,
		Quantity:       quantity,
		Unit:           v[4],
		ExpiryDate:     v[5],
		ThresholdValue: threshold,
	}
	if err := i.validate.Struct(req); err != nil {
		return nil, validation.Summary(err)
	}

	return req, ""
}
