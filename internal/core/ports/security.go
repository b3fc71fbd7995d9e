package ports

import "time"

// PasswordHasher derives and checks one-way salted password hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. Malformed hashes yield false.
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints and validates signed, time-bound identity assertions.
type TokenIssuer interface {
	Issue(identityID int64) (token string, expiresAt time.Time, err error)
	// Verify returns the identity id carried by a valid, unexpired token, or
	// domain.ErrUnauthenticated.
	Verify(token string) (int64, error)
}
