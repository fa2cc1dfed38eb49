package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kobo-inventory/internal/middleware"
	"kobo-inventory/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrInvalidAmount, http.StatusBadRequest},
		{model.ErrInsufficientStock, http.StatusBadRequest},
		{model.ErrInvalidPagination, http.StatusBadRequest},
		{model.ErrPasswordMismatch, http.StatusBadRequest},
		{model.ErrInvalidImportPath, http.StatusBadRequest},
		{model.ErrInvalidCredentials, http.StatusUnauthorized},
		{model.ErrOTPRequired, http.StatusUnauthorized},
		{model.ErrProductNotFound, http.StatusNotFound},
		{model.ErrNoProductsFound, http.StatusNotFound},
		{model.ErrInvalidResetToken, http.StatusNotFound},
		{model.ErrDuplicateSale, http.StatusConflict},
		{model.ErrUserExists, http.StatusConflict},
		{fmt.Errorf("%w: truncated gzip", model.ErrImportUnreadable), http.StatusUnprocessableEntity},
		{fmt.Errorf("failed to get product: %w", model.ErrProductNotFound), http.StatusNotFound},
		{model.NewPersistenceFault("products.update", errors.New("deadlock")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondError(t *testing.T) {
	t.Run("Domain error keeps its message and correlation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		var captured *http.Request
		middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			captured = r
		})).ServeHTTP(httptest.NewRecorder(), req)

		w := httptest.NewRecorder()
		respondError(w, captured, fmt.Errorf("failed to record sale: %w", model.ErrInsufficientStock), zerolog.Nop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCodeInsufficientStock, resp.Error)
		assert.Equal(t, model.ErrInsufficientStock.Message, resp.Message)
		assert.NotEmpty(t, resp.CorrelationID)
	})

	t.Run("Persistence fault hides driver detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := model.NewPersistenceFault("sales.insert", errors.New(`relation "sales" does not exist`))
		respondError(w, httptest.NewRequest(http.MethodPost, "/", nil), err, zerolog.Nop())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCodePersistenceFault, resp.Error)
		assert.NotContains(t, resp.Message, "relation")
	})

	t.Run("Unknown error", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("nil pointer"), zerolog.Nop())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCodeInternalError, resp.Error)
		assert.Equal(t, "Internal server error", resp.Message)
	})
}
