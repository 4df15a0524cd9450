package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SignedTTL is the hard upper bound embedded in the signed payload.
	SignedTTL = 48 * time.Hour
	// StoreTTL bounds the effective session lifetime: the revocable-store
	// entry lapses well before the signed expiry does.
	StoreTTL = 3 * time.Hour
)

// Store is the revocable allow-list backing issued tokens. Get must not
// return entries past their TTL.
type Store interface {
	Get(key string) (string, bool)
	SetWithTTL(key, value string, ttl time.Duration) error
	Delete(key string) error
}

// Claims is the signed token payload.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer mints, verifies and revokes session tokens. A token is usable only
// while both the signature/expiry check passes and the store entry for that
// exact token string exists and names the same subject.
type Issuer struct {
	secret []byte
	store  Store
	now    func() time.Time
}

func NewIssuer(secret []byte, store Store) *Issuer {
	return &Issuer{secret: secret, store: store, now: time.Now}
}

// Issue signs an HS256 token for the subject and registers it in the
// revocable store under its own TTL.
func (i *Issuer) Issue(userID, role string) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			// unique id so two sessions for one subject issued in the same
			// second are distinct, independently revocable tokens
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SignedTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", err
	}
	if err := i.store.SetWithTTL(signed, userID, StoreTTL); err != nil {
		return "", err
	}
	return signed, nil
}

// Verify returns the claims for a usable token, or nil. Bad signature,
// structural decode failure, expiry, a missing store entry and a subject
// mismatch all collapse into the same nil result.
func (i *Issuer) Verify(tokenStr string) *Claims {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tok.Valid {
		return nil
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok {
		return nil
	}
	subject, ok := i.store.Get(tokenStr)
	if !ok || subject != claims.UserID {
		return nil
	}
	return claims
}

// Revoke deletes the store entry for the token, invalidating it immediately
// regardless of the signed expiry. Revoking an absent token is not an error.
func (i *Issuer) Revoke(tokenStr string) {
	_ = i.store.Delete(tokenStr)
}
