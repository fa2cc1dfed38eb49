package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kobo-inventory/internal/auth"
	"kobo-inventory/internal/mailer"
	"kobo-inventory/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testTOTPSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"
	testResetURL   = "https://inventory.example.com/reset-password"
)

var authNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

type authFixture struct {
	users   *MockUserRepository
	resets  *MockPasswordResetRepository
	mailer  *MockMailer
	hasher  *auth.Hasher
	tokens  *auth.TokenIssuer
	totp    *auth.TOTP
	service AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  new(MockUserRepository),
		resets: new(MockPasswordResetRepository),
		mailer: new(MockMailer),
		hasher: auth.NewHasher(4),
		tokens: auth.NewTokenIssuer("test-secret", time.Hour),
		totp:   auth.NewTOTP("Kobo Inventory"),
	}
	s := NewAuthService(AuthDeps{
		Users:    f.users,
		Resets:   f.resets,
		Hasher:   f.hasher,
		Tokens:   f.tokens,
		TOTP:     f.totp,
		Mailer:   f.mailer,
		ResetURL: testResetURL,
		ResetTTL: time.Hour,
	}, zerolog.Nop()).(*authService)
	s.now = func() time.Time { return authNow }
	f.service = s
	return f
}

func (f *authFixture) user(t *testing.T, password string, twoFactor bool) *model.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &model.User{
		ID:               5,
		Name:             "Ada",
		Email:            "ada@example.com",
		PasswordHash:     hash,
		TwoFactorEnabled: twoFactor,
		TOTPSecret:       testTOTPSecret,
	}
}

func (f *authFixture) code(t *testing.T) string {
	t.Helper()
	code, err := f.totp.Code(testTOTPSecret)
	require.NoError(t, err)
	return code
}

// wrongCode returns a six digit code that differs from every code accepted
// within the validation skew.
func (f *authFixture) wrongCode(t *testing.T) string {
	t.Helper()
	for _, candidate := range []string{"000000", "111111", "222222", "333333"} {
		if !f.totp.Validate(testTOTPSecret, candidate) {
			return candidate
		}
	}
	t.Fatal("could not find an invalid code")
	return ""
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account with a TOTP enrollment", func(t *testing.T) {
		f := newAuthFixture()
		req := &model.RegisterRequest{Name: "John", Email: "John.Doe+shop@Gmail.com", Password: "secret1"}

		f.users.On("GetByEmail", ctx, "johndoe@gmail.com").Return(nil, nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "johndoe@gmail.com" &&
				u.TOTPSecret != "" &&
				f.hasher.Check(u.PasswordHash, "secret1") == nil
		})).Return(int64(5), nil)

		resp, err := f.service.Register(ctx, req)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.QRCode, "data:image/png;base64,"))
		assert.Equal(t, model.UserSummary{ID: 5, Name: "John", Email: "johndoe@gmail.com"}, resp.User)
		f.users.AssertExpectations(t)
	})

	t.Run("existing email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(&model.User{ID: 1}, nil)

		_, err := f.service.Register(ctx, &model.RegisterRequest{Name: "Ada", Email: "ADA@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, model.ErrUserExists)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("concurrent duplicate insert", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(nil, nil)
		f.users.On("Create", ctx, mock.Anything).Return(int64(0), model.ErrUserExists)

		_, err := f.service.Register(ctx, &model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, model.ErrUserExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)

		_, err := f.service.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", false), nil)

		_, err := f.service.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "nope-nope"})

		assert.ErrorIs(t, err, model.ErrWrongPassword)
		f.users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success without two-factor", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", false), nil)
		f.users.On("UpdateLastLogin", ctx, int64(5), authNow).Return(nil)

		result, err := f.service.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "secret1"})

		require.NoError(t, err)
		assert.Equal(t, "Successfully logged in", result.Message)
		assert.Equal(t, int64(5), result.User.ID)

		claims, err := f.tokens.Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(5), claims.UserID)
		f.users.AssertExpectations(t)
	})

	t.Run("two-factor requires a code", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", true), nil)

		_, err := f.service.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, model.ErrOTPRequired)
	})

	t.Run("two-factor rejects a wrong code", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", true), nil)

		_, err := f.service.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "secret1", OTP: f.wrongCode(t)})

		assert.ErrorIs(t, err, model.ErrInvalidOTP)
	})

	t.Run("two-factor accepts the current code", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", true), nil)
		f.users.On("UpdateLastLogin", ctx, int64(5), authNow).Return(nil)

		result, err := f.service.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "secret1", OTP: f.code(t)})

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("last login update fails", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", false), nil)
		f.users.On("UpdateLastLogin", ctx, int64(5), authNow).Return(model.NewPersistenceFault("users.update_last_login", errors.New("boom")))

		_, err := f.service.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, model.ErrPersistence)
	})
}

func TestAuthService_EnableTwoFactor(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByID", ctx, int64(5)).Return(nil, nil)

		err := f.service.EnableTwoFactor(ctx, 5, "123456")

		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("invalid code", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByID", ctx, int64(5)).Return(f.user(t, "secret1", false), nil)

		err := f.service.EnableTwoFactor(ctx, 5, f.wrongCode(t))

		assert.ErrorIs(t, err, model.ErrInvalidOTP)
		f.users.AssertNotCalled(t, "EnableTwoFactor", mock.Anything, mock.Anything)
	})

	t.Run("valid code", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByID", ctx, int64(5)).Return(f.user(t, "secret1", false), nil)
		f.users.On("EnableTwoFactor", ctx, int64(5)).Return(nil)

		require.NoError(t, f.service.EnableTwoFactor(ctx, 5, f.code(t)))
		f.users.AssertExpectations(t)
	})
}

func TestAuthService_ForgetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)

		err := f.service.ForgetPassword(ctx, "nobody@example.com")

		assert.ErrorIs(t, err, model.ErrEmailNotFound)
		f.resets.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
	})

	t.Run("stores a token and mails the link", func(t *testing.T) {
		f := newAuthFixture()
		var stored *model.PasswordReset

		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", false), nil)
		f.resets.On("Replace", ctx, mock.AnythingOfType("*model.PasswordReset")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*model.PasswordReset) }).
			Return(nil)
		f.mailer.On("Send", ctx, mock.MatchedBy(func(msg mailer.Message) bool {
			return msg.To == "ada@example.com" &&
				stored != nil &&
				strings.Contains(msg.HTML, testResetURL+"?token="+stored.Token)
		})).Return(nil)

		require.NoError(t, f.service.ForgetPassword(ctx, "Ada@Example.com"))

		require.NotNil(t, stored)
		assert.NotEmpty(t, stored.Token)
		assert.Equal(t, authNow, stored.CreatedAt)
		f.resets.AssertExpectations(t)
		f.mailer.AssertExpectations(t)
	})

	t.Run("delivery failure is not reported to the caller", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", false), nil)
		f.resets.On("Replace", ctx, mock.Anything).Return(nil)
		f.mailer.On("Send", ctx, mock.Anything).Return(errors.New("smtp down"))

		assert.NoError(t, f.service.ForgetPassword(ctx, "ada@example.com"))
	})
}

func TestAuthService_LoadReset(t *testing.T) {
	ctx := context.Background()
	fresh := &model.PasswordReset{Email: "ada@example.com", Token: "tok", CreatedAt: authNow.Add(-10 * time.Minute)}
	stale := &model.PasswordReset{Email: "ada@example.com", Token: "old", CreatedAt: authNow.Add(-2 * time.Hour)}

	t.Run("missing token", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.service.LoadReset(ctx, "")
		assert.ErrorIs(t, err, model.ErrTokenNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthFixture()
		f.resets.On("GetByToken", ctx, "nope").Return(nil, nil)

		_, err := f.service.LoadReset(ctx, "nope")
		assert.ErrorIs(t, err, model.ErrInvalidResetToken)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture()
		f.resets.On("GetByToken", ctx, "old").Return(stale, nil)

		_, err := f.service.LoadReset(ctx, "old")
		assert.ErrorIs(t, err, model.ErrInvalidResetToken)
	})

	t.Run("user deleted", func(t *testing.T) {
		f := newAuthFixture()
		f.resets.On("GetByToken", ctx, "tok").Return(fresh, nil)
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(nil, nil)

		_, err := f.service.LoadReset(ctx, "tok")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("valid token", func(t *testing.T) {
		f := newAuthFixture()
		f.resets.On("GetByToken", ctx, "tok").Return(fresh, nil)
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", false), nil)

		summary, err := f.service.LoadReset(ctx, "tok")

		require.NoError(t, err)
		assert.Equal(t, &model.UserSummary{ID: 5, Name: "Ada", Email: "ada@example.com"}, summary)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmation mismatch", func(t *testing.T) {
		f := newAuthFixture()

		err := f.service.ResetPassword(ctx, &model.ResetPasswordRequest{Token: "tok", Password: "newpass1", ConfirmPassword: "newpass2"})

		assert.ErrorIs(t, err, model.ErrPasswordMismatch)
		f.resets.AssertNotCalled(t, "GetByToken", mock.Anything, mock.Anything)
	})

	t.Run("stores the new hash", func(t *testing.T) {
		f := newAuthFixture()
		reset := &model.PasswordReset{Email: "ada@example.com", Token: "tok", CreatedAt: authNow}

		f.resets.On("GetByToken", ctx, "tok").Return(reset, nil)
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(f.user(t, "secret1", false), nil)
		f.resets.On("CompleteReset", ctx, "ada@example.com", mock.MatchedBy(func(hash string) bool {
			return f.hasher.Check(hash, "newpass1") == nil
		})).Return(nil)

		err := f.service.ResetPassword(ctx, &model.ResetPasswordRequest{Token: "tok", Password: "newpass1", ConfirmPassword: "newpass1"})

		require.NoError(t, err)
		f.resets.AssertExpectations(t)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newAuthFixture()
		f.resets.On("GetByToken", ctx, "bad").Return(nil, nil)

		err := f.service.ResetPassword(ctx, &model.ResetPasswordRequest{Token: "bad", Password: "newpass1", ConfirmPassword: "newpass1"})

		assert.ErrorIs(t, err, model.ErrInvalidResetToken)
	})
}
