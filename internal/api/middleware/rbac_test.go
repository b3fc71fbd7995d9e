package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lagoulette/smartport/internal/core/domain"
)

type stubGuard struct {
	identities map[int64]*domain.Identity
	err        error
}

func (g *stubGuard) Authorize(_ context.Context, id int64, role domain.Role) (*domain.Identity, error) {
	if g.err != nil {
		return nil, g.err
	}
	identity, ok := g.identities[id]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if identity.Role != role {
		return nil, domain.ErrForbidden
	}
	return identity, nil
}

func newGuard() *stubGuard {
	return &stubGuard{identities: map[int64]*domain.Identity{
		1: {ID: 1, Username: "root", Role: domain.RoleAdmin},
		2: {ID: 2, Username: "alice", Role: domain.RoleEditor},
	}}
}

func runRBAC(t *testing.T, guard *stubGuard, role domain.Role, id any) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if id != nil {
		c.Set(IdentityIDKey, id)
	}

	called := false
	err := RequireRole(guard, role)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, called, err
}

func TestRequireRole_Allows(t *testing.T) {
	c, called, err := runRBAC(t, newGuard(), domain.RoleEditor, int64(2))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	identity, ok := c.Get(IdentityKey).(*domain.Identity)
	if !ok || identity.Username != "alice" {
		t.Fatalf("identity not stored in context: %v", c.Get(IdentityKey))
	}
}

func TestRequireRole_AdminIsNotImplicitlyEditor(t *testing.T) {
	_, called, err := runRBAC(t, newGuard(), domain.RoleEditor, int64(1))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRole_UnknownIdentity(t *testing.T) {
	_, called, err := runRBAC(t, newGuard(), domain.RoleAdmin, int64(99))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	_, called, err := runRBAC(t, newGuard(), domain.RoleAdmin, nil)
	if called {
		t.Fatalf("should not reach next handler")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestRequireRole_StoreFailure(t *testing.T) {
	guard := newGuard()
	guard.err = errors.New("connection reset")

	_, called, err := runRBAC(t, guard, domain.RoleAdmin, int64(1))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if err == nil || errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}
