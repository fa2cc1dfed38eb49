package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"time"

	"kobo-inventory/internal/auth"
	"kobo-inventory/internal/mailer"
	"kobo-inventory/internal/model"
	"kobo-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthDeps collects the collaborators of the auth service.
type AuthDeps struct {
	Users    repository.UserRepository
	Resets   repository.PasswordResetRepository
	Hasher   *auth.Hasher
	Tokens   *auth.TokenIssuer
	TOTP     *auth.TOTP
	Mailer   mailer.Mailer
	ResetURL string
	ResetTTL time.Duration
}

// authService implements AuthService.
type authService struct {
	AuthDeps
	now    func() time.Time
	logger zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(deps AuthDeps, logger zerolog.Logger) AuthService {
	return &authService{
		AuthDeps: deps,
		now:      time.Now,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account and a TOTP enrollment for it.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	email := auth.NormalizeEmail(req.Email)

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if existing != nil {
		return nil, model.ErrUserExists
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.TOTP.Enroll(email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to enroll TOTP")
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		TOTPSecret:   enrollment.Secret,
	}
	id, err := s.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrUserExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.ID = id

	s.logger.Info().Int64("user_id", id).Msg("user registered")
	return &model.RegisterResponse{QRCode: enrollment.QRCode, User: user.Summary()}, nil
}

// Login verifies credentials, and the OTP when 2FA is active, and issues a token.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResult, error) {
	user, err := s.Users.GetByEmail(ctx, auth.NormalizeEmail(req.Email))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := s.Hasher.Check(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info().Int64("user_id", user.ID).Msg("wrong password")
			return nil, model.ErrWrongPassword
		}
		return nil, err
	}

	if user.TwoFactorEnabled {
		if req.OTP == "" {
			return nil, model.ErrOTPRequired
		}
		if !s.TOTP.Validate(user.TOTPSecret, req.OTP) {
			s.logger.Info().Int64("user_id", user.ID).Msg("invalid OTP")
			return nil, model.ErrInvalidOTP
		}
	}

	token, err := s.Tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, err
	}

	if err := s.Users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update last login")
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return &model.LoginResult{Message: "Successfully logged in", Token: token, User: user.Summary()}, nil
}

// EnableTwoFactor turns on 2FA once the user proves they hold the secret.
func (s *authService) EnableTwoFactor(ctx context.Context, userID int64, otp string) error {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to look up user")
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}
	if user == nil {
		return model.ErrUserNotFound
	}

	if !s.TOTP.Validate(user.TOTPSecret, otp) {
		return model.ErrInvalidOTP
	}

	if err := s.Users.EnableTwoFactor(ctx, userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to enable two-factor")
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("two-factor enabled")
	return nil
}

// ForgetPassword stores a fresh reset token and mails its link.
func (s *authService) ForgetPassword(ctx context.Context, email string) error {
	email = auth.NormalizeEmail(email)

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return fmt.Errorf("failed to start password reset: %w", err)
	}
	if user == nil {
		return model.ErrEmailNotFound
	}

	reset := &model.PasswordReset{
		Email:     email,
		Token:     uuid.NewString(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.Resets.Replace(ctx, reset); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to store reset token")
		return fmt.Errorf("failed to start password reset: %w", err)
	}

	link := s.ResetURL + "?token=" + url.QueryEscape(reset.Token)
	msg := mailer.Message{
		To:      email,
		Subject: "Password Reset",
		HTML: fmt.Sprintf(
			`<p>Hello %s,</p><p>Click <a href="%s">here</a> to reset your password.</p>`,
			html.EscapeString(user.Name), html.EscapeString(link),
		),
	}
	// The token is already stored; a failed delivery is logged and the
	// caller may request another link.
	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to send reset email")
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset requested")
	return nil
}

// LoadReset resolves an outstanding reset token to its user.
func (s *authService) LoadReset(ctx context.Context, token string) (*model.UserSummary, error) {
	user, err := s.resolveReset(ctx, token)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

// ResetPassword sets a new password for the token's owner and consumes the token.
func (s *authService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return model.ErrPasswordMismatch
	}

	user, err := s.resolveReset(ctx, req.Token)
	if err != nil {
		return err
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	if err := s.Resets.CompleteReset(ctx, user.Email, hash); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to reset password")
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *authService) resolveReset(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.ErrTokenNotFound
	}

	reset, err := s.Resets.GetByToken(ctx, token)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up reset token")
		return nil, fmt.Errorf("failed to load reset token: %w", err)
	}
	if reset == nil || s.now().Sub(reset.CreatedAt) > s.ResetTTL {
		return nil, model.ErrInvalidResetToken
	}

	user, err := s.Users.GetByEmail(ctx, reset.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to load reset token: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}
