package buildCFG

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"agriedge/internal/auth"
	"agriedge/internal/mailer"
	"agriedge/internal/store"
)

type ServerConfig struct {
	Port string
	Mode string
}

type RabbitConfig struct {
	Enabled  bool
	Url      string
	Exchange string
	Queue    string
}

type RegistrationConfig struct {
	RequireAuth bool
	Interests   []string
}

type ExportConfig struct {
	Location      *time.Location
	DisplayLayout string
}

type ListingConfig struct {
	SessionTTL time.Duration
}

type MetricsConfig struct {
	Prefix string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		log.Warn().Msg("server.port not set, using 8080")
		port = "8080"
	}
	mode := cfg.GetString("server.mode")
	if mode == "" {
		mode = "release"
	}
	return ServerConfig{Port: port, Mode: mode}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("postgres.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, errors.New("postgres.master_dsn is required")
	}
	slaveDSNs := cfg.GetStringSlice("postgres.slave_dsns")

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("postgres.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("postgres.max_idle_conns"),
		ConnMaxLifetime: cfg.GetDuration("postgres.conn_max_lifetime"),
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}

	log.Info().
		Int("slaves", len(slaveDSNs)).
		Int("max_open_conns", opts.MaxOpenConns).
		Msg("postgres config loaded")
	return masterDSN, slaveDSNs, opts, nil
}

// BuildStoreConfig selects the document store driver and its settings.
func BuildStoreConfig(cfg *config.Config, log *zerolog.Logger) (store.Config, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.GetString("store.driver")))
	if driver == "" {
		driver = store.DriverPostgres
	}
	out := store.Config{Driver: driver}

	switch driver {
	case store.DriverPostgres:
		master, slaves, pool, err := BuildDBConfig(cfg, log)
		if err != nil {
			return out, err
		}
		out.Postgres = store.PostgresConfig{
			MasterDSN:     master,
			SlaveDSNs:     slaves,
			Pool:          pool,
			MigrationsDir: cfg.GetString("postgres.migrations_dir"),
		}
		if out.Postgres.MigrationsDir == "" {
			out.Postgres.MigrationsDir = "migrations/postgres"
		}
	case store.DriverMongo:
		out.Mongo = store.MongoConfig{
			URI:      cfg.GetString("mongo.uri"),
			Database: cfg.GetString("mongo.database"),
		}
		if out.Mongo.URI == "" {
			return out, errors.New("mongo.uri is required")
		}
		if out.Mongo.Database == "" {
			out.Mongo.Database = "agriedge"
		}
	case store.DriverMemory:
	default:
		return out, fmt.Errorf("%w: %q", store.ErrUnknownDriver, driver)
	}

	log.Info().Str("driver", driver).Msg("store config loaded")
	return out, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (*RabbitConfig, error) {
	url := cfg.GetString("rabbitmq.url")
	if url == "" {
		log.Warn().Msg("rabbitmq.url not set, registration events disabled")
		return &RabbitConfig{}, nil
	}
	rc := &RabbitConfig{
		Enabled:  true,
		Url:      url,
		Exchange: cfg.GetString("rabbitmq.exchange"),
		Queue:    cfg.GetString("rabbitmq.queue"),
	}
	if rc.Exchange == "" || rc.Queue == "" {
		return nil, errors.New("rabbitmq.exchange and rabbitmq.queue are required")
	}
	return rc, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) mailer.Config {
	mc := mailer.Config{
		Host:     cfg.GetString("smtp.host"),
		Port:     cfg.GetInt("smtp.port"),
		Username: cfg.GetString("smtp.username"),
		Password: cfg.GetString("smtp.password"),
		From:     cfg.GetString("smtp.from"),
	}
	if mc.Port == 0 {
		mc.Port = 587
	}
	if mc.Host == "" {
		log.Warn().Msg("smtp.host not set, confirmation emails disabled")
	}
	return mc
}

func BuildAuthConfig(cfg *config.Config, log *zerolog.Logger) (auth.Config, []string, error) {
	ac := auth.Config{
		Secret:     cfg.GetString("auth.jwt_secret"),
		Issuer:     cfg.GetString("auth.issuer"),
		TokenTTL:   cfg.GetDuration("auth.token_ttl"),
		BcryptCost: cfg.GetInt("auth.bcrypt_cost"),
	}
	if err := checkSecret(ac.Secret, cfg.GetString("server.mode")); err != nil {
		return ac, nil, err
	}
	if ac.Issuer == "" {
		ac.Issuer = "agriedge"
	}
	admins := cfg.GetStringSlice("auth.admins")
	log.Info().Int("seeded_admins", len(admins)).Dur("token_ttl", ac.TokenTTL).Msg("auth config loaded")
	return ac, admins, nil
}

// DefaultSecret is the placeholder shipped in config.yaml.
const DefaultSecret = "change-me"

// checkSecret refuses an empty secret, and the placeholder outside debug mode.
func checkSecret(secret, mode string) error {
	switch {
	case secret == "":
		return errors.New("auth.jwt_secret is required")
	case secret == DefaultSecret && mode != "debug":
		return fmt.Errorf("auth.jwt_secret is still %q; set AGRIEDGE_AUTH_JWT_SECRET or run in debug mode", DefaultSecret)
	}
	return nil
}

func BuildRegistrationConfig(cfg *config.Config) RegistrationConfig {
	return RegistrationConfig{
		RequireAuth: cfg.GetBool("registration.require_auth"),
		Interests:   cfg.GetStringSlice("registration.interests"),
	}
}

func BuildExportConfig(cfg *config.Config, log *zerolog.Logger) ExportConfig {
	ec := ExportConfig{
		Location:      time.Local,
		DisplayLayout: cfg.GetString("export.display_layout"),
	}
	if tz := cfg.GetString("export.time_zone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Warn().Err(err).Str("time_zone", tz).Msg("unknown export time zone, using local")
		} else {
			ec.Location = loc
		}
	}
	return ec
}

func BuildListingConfig(cfg *config.Config) ListingConfig {
	return ListingConfig{SessionTTL: cfg.GetDuration("listing.session_ttl")}
}

func BuildMetricsConfig(cfg *config.Config) MetricsConfig {
	prefix := cfg.GetString("metrics.prefix")
	if prefix == "" {
		prefix = "agriedge"
	}
	return MetricsConfig{Prefix: prefix}
}
