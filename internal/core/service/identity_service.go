package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lagoulette/smartport/internal/core/domain"
	"github.com/lagoulette/smartport/internal/core/ports"
)

// dummyPassword seeds the hash compared against when a login names an
// unknown user, so both failure paths pay for one hash comparison.
const dummyPassword = "smartport-login-timing-equaliser"

// IdentityService implements registration, login and the admin-only identity
// operations on top of a store, a password hasher and a token issuer.
type IdentityService struct {
	repo     ports.IdentityRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	guard    ports.AccessGuard
	throttle ports.LoginThrottle
	logger   zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewIdentityService wires the facade. throttle may be nil, in which case
// failed logins are not rate limited.
func NewIdentityService(
	repo ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	guard ports.AccessGuard,
	throttle ports.LoginThrottle,
	logger zerolog.Logger,
) *IdentityService {
	return &IdentityService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		guard:    guard,
		throttle: throttle,
		logger:   logger,
	}
}

// Register creates a new identity. An empty role defaults to viewer.
func (s *IdentityService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.PublicIdentity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.InvalidInput("username and password are required")
	}
	if role == "" {
		role = domain.DefaultRole
	}
	if !role.Valid() {
		return nil, domain.InvalidInput("unknown role %q", role)
	}

	// Pre-check only; the store's unique constraint is the real guarantee.
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Identity{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			s.logger.Info().Str("username", username).Msg("registration lost uniqueness race")
		}
		return nil, err
	}

	s.logger.Info().Int64("identity_id", created.ID).Str("role", created.Role.String()).Msg("identity registered")
	return created.Public(), nil
}

// Login checks credentials and issues a token. Unknown usernames and wrong
// passwords are reported identically as ErrInvalidCredentials.
func (s *IdentityService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if username == "" || password == "" {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		wait, err := s.throttle.Locked(ctx, username)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle check failed, continuing")
		} else if wait > 0 {
			return "", time.Time{}, &domain.ThrottledError{RetryAfter: wait}
		}
	}

	identity, err := s.repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
		return "", time.Time{}, err
	}

	if identity == nil {
		s.hasher.Verify(password, s.dummy())
		s.recordFailure(ctx, username)
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, identity.PasswordHash) {
		s.recordFailure(ctx, username)
		return "", time.Time{}, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return "", time.Time{}, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	s.logger.Info().Int64("identity_id", identity.ID).Msg("login succeeded")
	return token, expiresAt, nil
}

// Get returns the public projection of targetID. Admin only.
func (s *IdentityService) Get(ctx context.Context, actorID, targetID int64) (*domain.PublicIdentity, error) {
	if _, err := s.guard.Authorize(ctx, actorID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	identity, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return identity.Public(), nil
}

// UpdateRole changes the role of targetID. Admin only.
func (s *IdentityService) UpdateRole(ctx context.Context, actorID, targetID int64, role domain.Role) error {
	if _, err := s.guard.Authorize(ctx, actorID, domain.RoleAdmin); err != nil {
		return err
	}
	if !role.Valid() {
		return domain.InvalidInput("unknown role %q", role)
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return err
	}

	s.logger.Info().Int64("actor_id", actorID).Int64("identity_id", targetID).Str("role", role.String()).Msg("role updated")
	return nil
}

// Delete removes targetID. Admin only. Tokens already issued for targetID
// keep verifying until expiry but fail the access guard afterwards.
func (s *IdentityService) Delete(ctx context.Context, actorID, targetID int64) error {
	if _, err := s.guard.Authorize(ctx, actorID, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	s.logger.Info().Int64("actor_id", actorID).Int64("identity_id", targetID).Msg("identity deleted")
	return nil
}

func (s *IdentityService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *IdentityService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Warn().Err(err).Msg("could not prepare dummy hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
