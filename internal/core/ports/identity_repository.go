package ports

import (
	"context"

	"github.com/lagoulette/smartport/internal/core/domain"
)

// IdentityRepository persists identity records. Every method is a single
// statement against the store; uniqueness of username is the store's job.
//
// Implementations must return domain.ErrIdentityNotFound for missing rows and
// domain.ErrUsernameTaken when the store rejects a duplicate username.
type IdentityRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	FindByID(ctx context.Context, id int64) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
