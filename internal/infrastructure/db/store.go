// Package db opens the credential store named by a DATABASE_URL.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lagoulette/smartport/internal/core/ports"
	"github.com/lagoulette/smartport/internal/infrastructure/db/gormdb"
	mongostore "github.com/lagoulette/smartport/internal/infrastructure/db/mongo"
	"github.com/lagoulette/smartport/internal/infrastructure/db/postgres"
)

// Kind identifies a credential store backend.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
	KindMongo    Kind = "mongo"
)

// Options carries backend settings that are not part of the URL.
type Options struct {
	MongoDatabase string
	// ConnectTimeout bounds dialing and the first ping; zero uses the adapter default.
	ConnectTimeout time.Duration
}

// Store is an opened credential store and the function that releases it.
type Store struct {
	Kind       Kind
	Identities ports.IdentityRepository
	Close      func(ctx context.Context) error
}

// KindOf maps a DATABASE_URL scheme to a backend.
func KindOf(url string) (Kind, error) {
	scheme, _, ok := strings.Cut(url, "://")
	if !ok {
		return "", fmt.Errorf("database url %q has no scheme", redact(url))
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return KindPostgres, nil
	case "sqlite":
		return KindSQLite, nil
	case "mongodb", "mongodb+srv":
		return KindMongo, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// Open connects to the store, prepares its schema and returns the repository.
func Open(ctx context.Context, url string, opts Options, log zerolog.Logger) (*Store, error) {
	kind, err := KindOf(url)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("store", string(kind)).Logger()

	switch kind {
	case KindPostgres:
		if err := postgres.Migrate(url, log); err != nil {
			return nil, err
		}
		pool, err := postgres.Connect(ctx, postgres.Config{URL: url, Timeout: opts.ConnectTimeout})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("credential store connected")
		return &Store{
			Kind:       kind,
			Identities: postgres.NewIdentityRepository(pool),
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case KindSQLite:
		dsn := gormdb.SQLiteDSN(url)
		gdb, err := gormdb.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dsn", dsn).Msg("credential store connected")
		return &Store{
			Kind:       kind,
			Identities: gormdb.NewIdentityRepository(gdb),
			Close:      func(context.Context) error { return gormdb.Close(gdb) },
		}, nil

	default:
		client, mdb, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      url,
			Database: opts.MongoDatabase,
			Timeout:  opts.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		repo := mongostore.NewIdentityRepository(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", opts.MongoDatabase).Msg("credential store connected")
		return &Store{
			Kind:       kind,
			Identities: repo,
			Close:      client.Disconnect,
		}, nil
	}
}

// redact hides everything after the scheme separator, which may hold credentials.
func redact(url string) string {
	if len(url) > 12 {
		return url[:12] + "..."
	}
	return url
}
