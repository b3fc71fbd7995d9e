package ports

import (
	"context"
	"time"
)

// LoginThrottle tracks failed logins per username. Keys are the submitted
// username whether or not such an identity exists.
type LoginThrottle interface {
	// Locked reports the remaining lockout, or zero when login may proceed.
	Locked(ctx context.Context, username string) (time.Duration, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
