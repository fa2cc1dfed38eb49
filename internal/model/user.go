package model

import "time"

// User is an account able to sign in and own products.
type User struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	IsAdmin          bool       `json:"is_admin"`
	IsVerified       bool       `json:"is_verified"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	TOTPSecret       string     `json:"-"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UserSummary is the public view of a user returned by auth endpoints.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the public view of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PasswordReset is an outstanding reset token for an email address.
type PasswordReset struct {
	Email     string
	Token     string
	CreatedAt time.Time
}

// RegisterRequest is the payload for POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterResponse carries the enrollment QR code for the new account.
type RegisterResponse struct {
	QRCode string      `json:"qrCode"`
	User   UserSummary `json:"user"`
}

// LoginRequest is the payload for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	OTP      string `json:"otp" validate:"omitempty,numeric,len=6"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

// EnableTwoFactorRequest confirms 2FA enrollment with a current code.
type EnableTwoFactorRequest struct {
	OTP string `json:"otp" validate:"required,numeric,len=6"`
}

// ForgetPasswordRequest is the payload for POST /api/forget-password.
type ForgetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the payload for POST /api/reset-password.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
