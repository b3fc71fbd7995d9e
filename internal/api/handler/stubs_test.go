package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lagoulette/smartport/internal/core/domain"
)

type stubIdentityService struct {
	registerFn   func(ctx context.Context, username, password string, role domain.Role) (*domain.PublicIdentity, error)
	loginFn      func(ctx context.Context, username, password string) (string, time.Time, error)
	getFn        func(ctx context.Context, actorID, targetID int64) (*domain.PublicIdentity, error)
	updateRoleFn func(ctx context.Context, actorID, targetID int64, role domain.Role) error
	deleteFn     func(ctx context.Context, actorID, targetID int64) error
}

func (s *stubIdentityService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.PublicIdentity, error) {
	return s.registerFn(ctx, username, password, role)
}

func (s *stubIdentityService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubIdentityService) Get(ctx context.Context, actorID, targetID int64) (*domain.PublicIdentity, error) {
	return s.getFn(ctx, actorID, targetID)
}

func (s *stubIdentityService) UpdateRole(ctx context.Context, actorID, targetID int64, role domain.Role) error {
	return s.updateRoleFn(ctx, actorID, targetID, role)
}

func (s *stubIdentityService) Delete(ctx context.Context, actorID, targetID int64) error {
	return s.deleteFn(ctx, actorID, targetID)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}
