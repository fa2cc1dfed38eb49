package handler

import (
	"net/http"
	"time"

	"kobo-inventory/internal/model"
	"kobo-inventory/internal/service"

	"github.com/rs/zerolog"
)

// CookieSettings controls the session cookie set on login.
type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler handles account and session HTTP requests.
type AuthHandler struct {
	auth    service.AuthService
	cookie  CookieSettings
	decoder requestDecoder
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth service.AuthService, cookie CookieSettings, logger zerolog.Logger) *AuthHandler {
	logger = logger.With().Str("handler", "auth").Logger()
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{
		auth:    auth,
		cookie:  cookie,
		decoder: newRequestDecoder(logger),
		logger:  logger,
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	resp, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, result)
}

// EnableTwoFactor handles POST /api/enable-2fa.
func (h *AuthHandler) EnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	var req model.EnableTwoFactorRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	if err := h.auth.EnableTwoFactor(r.Context(), uid, req.OTP); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "2FA enabled successfully"})
}

// ForgetPassword handles POST /api/forget-password.
func (h *AuthHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgetPasswordRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	if err := h.auth.ForgetPassword(r.Context(), req.Email); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Email Sent Successfully for resetting password"})
}

// LoadReset handles GET /api/reset-password?token=.
func (h *AuthHandler) LoadReset(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.LoadReset(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.UserSummary{"user": *user})
}

// ResetPassword handles POST /api/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if !h.decoder.decode(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Password reset successfully"})
}
