package main

import (
	"context"
	"fmt"
	"time"

	"github.com/orgauth/identity-service/internal/core/ports"
	"github.com/orgauth/identity-service/internal/infrastructure/db/mongo"
	"github.com/orgauth/identity-service/internal/infrastructure/db/postgres"
	"github.com/orgauth/identity-service/internal/pkg/config"
)

const storeCloseTimeout = 5 * time.Second

// store bundles the repositories of the configured driver with its lifecycle hooks.
type store struct {
	users ports.UserRepository
	orgs  ports.OrganisationRepository
	tx    ports.Transactor
	ping  func(ctx context.Context) error
	close func()
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Postgres)
	case config.DriverMongo:
		return openMongo(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg config.MongoConfig) (*store, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.URI, Database: cfg.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &store{
		users: mongo.NewUserRepository(db),
		orgs:  mongo.NewOrganisationRepository(db),
		tx:    mongo.NewTransactor(client),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
			defer cancel()
			_ = client.Disconnect(ctx)
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*store, error) {
	pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.DSN})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &store{
		users: postgres.NewUserRepository(pool),
		orgs:  postgres.NewOrganisationRepository(pool),
		tx:    postgres.NewTransactor(pool),
		ping:  pool.Ping,
		close: pool.Close,
	}, nil
}
