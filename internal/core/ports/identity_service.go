package ports

import (
	"context"
	"time"

	"github.com/lagoulette/smartport/internal/core/domain"
)

// IdentityService is the registration/login facade plus the admin-only
// identity operations.
type IdentityService interface {
	Register(ctx context.Context, username, password string, role domain.Role) (*domain.PublicIdentity, error)
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error)
	Get(ctx context.Context, actorID, targetID int64) (*domain.PublicIdentity, error)
	UpdateRole(ctx context.Context, actorID, targetID int64, role domain.Role) error
	Delete(ctx context.Context, actorID, targetID int64) error
}

// AccessGuard decides whether an authenticated identity may run an operation
// gated on requiredRole.
type AccessGuard interface {
	Authorize(ctx context.Context, identityID int64, requiredRole domain.Role) (*domain.Identity, error)
}
