package service

import (
	"context"
	"errors"

	"github.com/lagoulette/smartport/internal/core/domain"
)

// EnsureAdmin registers an admin identity unless the username is already
// taken. It never changes an existing identity, whatever its role.
func (s *IdentityService) EnsureAdmin(ctx context.Context, username, password string) error {
	created, err := s.Register(ctx, username, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUsernameTaken) {
		s.logger.Info().Str("username", username).Msg("bootstrap admin already present")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info().Int64("identity_id", created.ID).Msg("bootstrap admin created")
	return nil
}
