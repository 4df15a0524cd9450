package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a salted bcrypt digest of the plaintext secret.
func Hash(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// Verify reports whether plain matches digest. A malformed digest fails
// verification rather than surfacing an error to the caller.
func Verify(plain string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(plain)) == nil
}
