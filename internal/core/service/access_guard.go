package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/lagoulette/smartport/internal/core/domain"
	"github.com/lagoulette/smartport/internal/core/ports"
)

// AccessGuard enforces role-based access for already-authenticated identities.
//
// Roles are compared by exact equality. There is no hierarchy: an admin is
// not implicitly granted editor- or operator-gated operations.
type AccessGuard struct {
	repo   ports.IdentityRepository
	logger zerolog.Logger
}

func NewAccessGuard(repo ports.IdentityRepository, logger zerolog.Logger) *AccessGuard {
	return &AccessGuard{repo: repo, logger: logger}
}

// Authorize loads the identity behind identityID and checks its stored role
// against requiredRole. A token whose identity has since been deleted yields
// ErrUnauthenticated; a role mismatch yields ErrForbidden.
func (g *AccessGuard) Authorize(ctx context.Context, identityID int64, requiredRole domain.Role) (*domain.Identity, error) {
	identity, err := g.repo.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			g.logger.Warn().Int64("identity_id", identityID).Msg("token refers to a missing identity")
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	if identity.Role != requiredRole {
		g.logger.Info().
			Int64("identity_id", identityID).
			Str("role", identity.Role.String()).
			Str("required_role", requiredRole.String()).
			Msg("access denied")
		return nil, domain.ErrForbidden
	}

	return identity, nil
}
