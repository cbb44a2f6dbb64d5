package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type PostgresConfig struct {
	MasterDSN     string
	SlaveDSNs     []string
	Pool          *dbpg.Options
	MigrationsDir string
}

type MongoConfig struct {
	URI      string
	Database string
}

type Config struct {
	Driver   string
	Postgres PostgresConfig
	Mongo    MongoConfig
}

// Open connects the configured driver. Postgres migrations are applied on open.
func Open(ctx context.Context, cfg Config, log *zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		log.Warn().Msg("using in-memory document store, data is lost on restart")
		return NewMemory(), nil
	case DriverPostgres, "":
		db, err := dbpg.New(cfg.Postgres.MasterDSN, cfg.Postgres.SlaveDSNs, cfg.Postgres.Pool)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		pg, err := NewPostgres(db, log)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.MigrationsDir != "" {
			if err := pg.MigrateUp(ctx, cfg.Postgres.MigrationsDir); err != nil {
				return nil, err
			}
		}
		return pg, nil
	case DriverMongo:
		return NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
