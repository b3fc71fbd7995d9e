package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lagoulette/smartport/internal/core/domain"
	"github.com/lagoulette/smartport/internal/infrastructure/security"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Identity
	nextID int64

	// skipPrecheck hides existing usernames from FindByUsername so that the
	// store-level uniqueness path can be exercised.
	skipPrecheck bool
	findErr      error
	creates      int
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byID: make(map[int64]*domain.Identity)}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func (r *stubIdentityRepo) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.skipPrecheck {
		return nil, domain.ErrIdentityNotFound
	}
	for _, i := range r.byID {
		if i.Username == username {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id int64) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneIdentity(i), nil
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	for _, i := range r.byID {
		if i.Username == identity.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.nextID++
	c := cloneIdentity(identity)
	c.ID = r.nextID
	r.byID[c.ID] = c
	return cloneIdentity(c), nil
}

func (r *stubIdentityRepo) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.Role = role
	return nil
}

func (r *stubIdentityRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrIdentityNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubIdentityRepo) Ping(context.Context) error { return nil }

// seed inserts an identity directly, bypassing the facade.
func (r *stubIdentityRepo) seed(t *testing.T, username, password string, role domain.Role) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	created, err := r.Create(context.Background(), &domain.Identity{Username: username, PasswordHash: string(hash), Role: role})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return created.ID
}

// ---------------------------------------------------------------------------
// Stub login throttle
// ---------------------------------------------------------------------------

type stubThrottle struct {
	failures map[string]int
	max      int
	lockout  time.Duration
	resets   []string
	err      error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max, lockout: time.Minute}
}

func (s *stubThrottle) Locked(_ context.Context, username string) (time.Duration, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.failures[username] >= s.max {
		return s.lockout, nil
	}
	return 0, nil
}

func (s *stubThrottle) RecordFailure(_ context.Context, username string) error {
	if s.err != nil {
		return s.err
	}
	s.failures[username]++
	return nil
}

func (s *stubThrottle) Reset(_ context.Context, username string) error {
	s.resets = append(s.resets, username)
	delete(s.failures, username)
	return s.err
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	repo    *stubIdentityRepo
	tokens  *security.JWTIssuer
	guard   *AccessGuard
	service *IdentityService
}

func newFixture(t *testing.T, throttle *stubThrottle) *fixture {
	t.Helper()
	repo := newStubIdentityRepo()
	tokens, err := security.NewJWTIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	guard := NewAccessGuard(repo, zerolog.Nop())

	f := &fixture{repo: repo, tokens: tokens, guard: guard}
	if throttle != nil {
		f.service = NewIdentityService(repo, security.NewBcryptHasher(bcrypt.MinCost), tokens, guard, throttle, zerolog.Nop())
	} else {
		f.service = NewIdentityService(repo, security.NewBcryptHasher(bcrypt.MinCost), tokens, guard, nil, zerolog.Nop())
	}
	return f
}
