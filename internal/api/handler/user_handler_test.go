package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lagoulette/smartport/internal/api/middleware"
	"github.com/lagoulette/smartport/internal/core/domain"
)

func adminContext(e *echo.Echo, method, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/users/"+id, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/users/"+id, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set(middleware.IdentityIDKey, int64(1))
	return c, rec
}

func TestUserHandler_Get(t *testing.T) {
	e := newEcho()
	stub := &stubIdentityService{
		getFn: func(ctx context.Context, actorID, targetID int64) (*domain.PublicIdentity, error) {
			if actorID != 1 || targetID != 5 {
				t.Fatalf("unexpected ids: %d %d", actorID, targetID)
			}
			return &domain.PublicIdentity{ID: 5, Username: "alice", Role: domain.RoleEditor}, nil
		},
	}

	c, rec := adminContext(e, http.MethodGet, "5", "")
	if err := NewUserHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["role"] != "editor" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubIdentityService{
		getFn: func(ctx context.Context, actorID, targetID int64) (*domain.PublicIdentity, error) {
			return nil, domain.ErrIdentityNotFound
		},
	}

	c, _ := adminContext(e, http.MethodGet, "404", "")
	if err := NewUserHandler(stub).Get(c); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestUserHandler_InvalidID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		e := newEcho()
		stub := &stubIdentityService{
			getFn: func(ctx context.Context, actorID, targetID int64) (*domain.PublicIdentity, error) {
				t.Fatalf("should not be called")
				return nil, nil
			},
		}

		c, _ := adminContext(e, http.MethodGet, id, "")
		err := NewUserHandler(stub).Get(c)

		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %v", id, err)
		}
	}
}

func TestUserHandler_MissingActor(t *testing.T) {
	e := newEcho()
	stub := &stubIdentityService{}

	req := httptest.NewRequest(http.MethodDelete, "/users/5", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := NewUserHandler(stub).Delete(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	e := newEcho()
	deleted := int64(0)
	stub := &stubIdentityService{
		deleteFn: func(ctx context.Context, actorID, targetID int64) error {
			deleted = targetID
			return nil
		},
	}

	c, rec := adminContext(e, http.MethodDelete, "7", "")
	if err := NewUserHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || deleted != 7 {
		t.Fatalf("expected 200 and delete of 7, got %d / %d", rec.Code, deleted)
	}
	if !strings.Contains(rec.Body.String(), "User deleted successfully!") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_UpdateRole(t *testing.T) {
	e := newEcho()
	var got domain.Role
	stub := &stubIdentityService{
		updateRoleFn: func(ctx context.Context, actorID, targetID int64, role domain.Role) error {
			got = role
			return nil
		},
	}

	c, rec := adminContext(e, http.MethodPut, "7", `{"role":"operator"}`)
	if err := NewUserHandler(stub).UpdateRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || got != domain.RoleOperator {
		t.Fatalf("expected 200 and operator, got %d / %s", rec.Code, got)
	}
	if !strings.Contains(rec.Body.String(), "User role updated to 'operator' successfully!") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_UpdateRole_InvalidRole(t *testing.T) {
	for _, body := range []string{`{"role":"superuser"}`, `{}`, `{"role":`} {
		e := newEcho()
		stub := &stubIdentityService{
			updateRoleFn: func(ctx context.Context, actorID, targetID int64, role domain.Role) error {
				t.Fatalf("should not be called")
				return nil
			},
		}

		c, _ := adminContext(e, http.MethodPut, "7", body)
		if err := NewUserHandler(stub).UpdateRole(c); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}
