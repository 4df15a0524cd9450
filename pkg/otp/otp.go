package otp

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Window is the validity window of a single code. A code issued inside a
// window stays valid for that window plus one preceding-window of drift.
const Window = 180 * time.Second

// ErrDelivery indicates the delivery channel rejected or could not accept
// the message. No retry is attempted.
var ErrDelivery = errors.New("code delivery failed")

// Mailer delivers a one-time code message to an address.
type Mailer interface {
	Send(address, subject, body string) error
}

// Service derives 6-digit time-windowed codes from a server secret and the
// recipient address. Codes are never stored; verification recomputes them
// for the relevant windows and compares.
type Service struct {
	secret []byte
	mailer Mailer
	now    func() time.Time
}

func NewService(secret []byte, mailer Mailer) *Service {
	return &Service{secret: secret, mailer: mailer, now: time.Now}
}

// userSecret derives the per-address TOTP secret as
// base32(HMAC-SHA256(serverSecret, address)).
func (s *Service) userSecret(address string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(address))
	return base32.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *Service) code(address string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(s.userSecret(address), at, totp.ValidateOpts{
		Period:    uint(Window / time.Second),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// Issue computes the code for the current window and dispatches it to the
// address over the mailer. A delivery failure is surfaced to the caller
// wrapped in ErrDelivery; it is not retried.
func (s *Service) Issue(address string) error {
	code, err := s.code(address, s.now())
	if err != nil {
		return err
	}
	body := fmt.Sprintf("This is the otp: %s to verify your email, please do not share it with anyone. It expires in 3 minutes.\nIf you didn't perform this action please contact us.", code)
	if err := s.mailer.Send(address, "Action required to verify email", body); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// Verify reports whether submitted matches the code for the current window
// or the immediately preceding one (one window of clock drift tolerance).
// The check is stateless: codes are not consumed on use.
func (s *Service) Verify(address, submitted string) bool {
	now := s.now()
	for _, at := range []time.Time{now, now.Add(-Window)} {
		code, err := s.code(address, at)
		if err == nil && subtle.ConstantTimeCompare([]byte(code), []byte(submitted)) == 1 {
			return true
		}
	}
	return false
}
