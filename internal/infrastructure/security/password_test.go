package security

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/lagoulette/smartport/internal/core/domain"
)

func TestBcryptHasher_HashIsSaltedPerCall(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct hashes for identical input")
	}
	if first == "pw1" || strings.Contains(first, "pw1") {
		t.Fatalf("hash must not contain the plaintext")
	}
	if !h.Verify("pw1", first) || !h.Verify("pw1", second) {
		t.Fatalf("both hashes must verify")
	}
}

func TestBcryptHasher_VerifyMismatch(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, _ := h.Hash("correct horse")

	if h.Verify("battery staple", hash) {
		t.Fatalf("wrong password verified")
	}
}

func TestBcryptHasher_VerifyMalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, bad := range []string{"", "not-a-hash", "$2a$10$short", "$argon2id$v=19$m=65536,t=3,p=1$abc$def"} {
		if h.Verify("anything", bad) {
			t.Fatalf("malformed hash %q verified", bad)
		}
	}
}

func TestBcryptHasher_RejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 73))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := NewBcryptHasher(99).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := NewBcryptHasher(12).cost; got != 12 {
		t.Fatalf("expected cost 12, got %d", got)
	}
}
