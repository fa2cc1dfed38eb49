package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"kobo-inventory/internal/middleware"
	"kobo-inventory/internal/model"
	"kobo-inventory/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Debug().Str("error", code).Str("message", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.RequestIDFrom(r.Context()),
	})
}

// respondError maps a service error to its status code and body. Persistence
// faults and unknown errors are logged and reported without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, body := errorResponse(r, err, logger)
	logger.Debug().Str("error", body.Error).Str("message", body.Message).Int("status", status).Msg("handler error")
	writeJSON(w, status, body)
}

// errorResponse builds the status and body respondError writes for err.
func errorResponse(r *http.Request, err error, logger zerolog.Logger) (int, model.ErrorResponse) {
	status := statusFor(err)
	body := model.ErrorResponse{CorrelationID: middleware.RequestIDFrom(r.Context())}

	var domainErr *model.DomainError
	if status != http.StatusInternalServerError && errors.As(err, &domainErr) {
		body.Error, body.Message = domainErr.Code, domainErr.Message
		return status, body
	}

	logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", body.CorrelationID).
		Msg("request failed")

	if errors.Is(err, model.ErrPersistence) {
		body.Error, body.Message = model.ErrPersistence.Code, model.ErrPersistence.Message
		return http.StatusInternalServerError, body
	}
	body.Error, body.Message = model.ErrCodeInternalError, "Internal server error"
	return http.StatusInternalServerError, body
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInsufficientStock),
		errors.Is(err, model.ErrInvalidPagination),
		errors.Is(err, model.ErrPasswordMismatch),
		errors.Is(err, model.ErrInvalidImportPath):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrWrongPassword),
		errors.Is(err, model.ErrInvalidOTP),
		errors.Is(err, model.ErrOTPRequired),
		errors.Is(err, model.ErrEmailNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrProductNotFound),
		errors.Is(err, model.ErrNoProductsFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrTokenNotFound),
		errors.Is(err, model.ErrInvalidResetToken):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateSale),
		errors.Is(err, model.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrImportUnreadable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestDecoder decodes and validates JSON bodies.
type requestDecoder struct {
	validate *validator.Validate
	logger   zerolog.Logger
}

func newRequestDecoder(logger zerolog.Logger) requestDecoder {
	return requestDecoder{validate: validation.New(), logger: logger}
}

// decode reads r's body into dst and validates it. On failure it writes a 400
// response and returns false.
func (d requestDecoder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		message := "Invalid request body"
		if errors.Is(err, io.EOF) {
			message = "Request body is empty"
		}
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, message, d.logger)
		return false
	}
	return d.check(w, r, dst)
}

// check validates dst, writing a 400 response with field errors on failure.
func (d requestDecoder) check(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := d.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:         model.ErrCodeValidation,
			Message:       validation.Summary(err),
			CorrelationID: middleware.RequestIDFrom(r.Context()),
			Fields:        validation.FieldErrors(err),
		})
		return false
	}
	return true
}

// userID returns the authenticated caller. Routes using it sit behind the
// auth middleware.
func userID(r *http.Request) (int64, error) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return 0, fmt.Errorf("no authenticated user in request context")
	}
	return claims.UserID, nil
}
