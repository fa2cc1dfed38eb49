package auth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpSecretSize = 20
	qrCodeSize     = 200
)

// Enrollment is a freshly generated TOTP secret and its scannable QR code.
type Enrollment struct {
	Secret string
	// QRCode is a data URL holding a PNG image of the otpauth URL.
	QRCode string
}

// TOTP generates and validates time-based one-time codes.
type TOTP struct {
	issuer string
	now    func() time.Time
}

// NewTOTP creates a TOTP helper that labels enrollments with issuer.
func NewTOTP(issuer string) *TOTP {
	return &TOTP{issuer: issuer, now: time.Now}
}

// Enroll creates a new secret for the account and renders its QR code.
func (t *TOTP) Enroll(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: accountName,
		SecretSize:  totpSecretSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return &Enrollment{
		Secret: key.Secret(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Validate reports whether code is valid for secret at the current time,
// allowing one period of clock skew either side.
func (t *TOTP) Validate(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, t.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// Code returns the current code for secret.
func (t *TOTP) Code(secret string) (string, error) {
	return totp.GenerateCode(secret, t.now().UTC())
}
