package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lagoulette/smartport/internal/infrastructure/security"
)

func newIssuer(t *testing.T, secret string) *security.JWTIssuer {
	t.Helper()
	issuer, err := security.NewJWTIssuer(secret, time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newIssuer(t, "secret"))(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, _, err := newIssuer(t, "secret").Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, c, called := runAuth(t, "Bearer "+token)

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got, _ := c.Get(IdentityIDKey).(int64); got != 42 {
		t.Fatalf("expected identity id 42, got %v", c.Get(IdentityIDKey))
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	token, _, _ := newIssuer(t, "secret").Issue(7)

	rec, _, called := runAuth(t, "bearer "+token)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected lower-case scheme to pass, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	foreign, _, _ := newIssuer(t, "other-secret").Issue(42)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-token"},
		{"foreign signature", "Bearer " + foreign},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, c, called := runAuth(t, tc.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if c.Get(IdentityIDKey) != nil {
				t.Fatalf("identity id must not be set")
			}
		})
	}
}
