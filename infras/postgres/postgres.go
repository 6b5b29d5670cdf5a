package postgres

//nolint:revive
import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"libres/config"
)

const (
	driverName         = "postgres"
	maxIdleConnections = 10
	maxOpenConnections = 20
	connMaxLifetime    = 30 * time.Minute
)

// Connection holds the read and write pools. Repositories read from Read unless they run
// inside a transaction, which is always opened on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// New dials both pools, retrying each per DB_POSTGRES_MAX_RETRY. It exits the process when
// either stays unreachable, since nothing in the API works without the database.
func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	read, err := Connect("read", pg, pg.Read)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to postgres, giving up")
	}

	write, err := Connect("write", pg, pg.Write)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to postgres, giving up")
	}

	return &Connection{Read: read, Write: write}
}

// Connect opens one pool on node.
func Connect(name string, pg config.Postgres, node config.PostgresNode) (*sqlx.DB, error) {
	extra := url.Values{}
	if node.Timezone != "" {
		extra.Set("timezone", node.Timezone)
	}

	dsn := pg.URL(node, extra)
	attempts := max(pg.MaxRetry, 1)
	wait := time.Duration(pg.RetryWaitTime) * time.Second

	logger := log.With().Str("name", name).Str("host", node.Host).Str("port", node.Port).Str("dbName", pg.Prefix+node.Name).Logger()

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db, nil
		}

		lastErr = err
		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		if attempt < attempts {
			time.Sleep(wait)
		}
	}

	return nil, fmt.Errorf("failed to connect to %s database after %d attempts: %w", name, attempts, lastErr)
}

// Ping checks both pools.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("read pool: %w", err)
	}

	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}

	return nil
}

// Close releases both pools. The write pool is closed last so in-flight transactions can finish.
func (c *Connection) Close() error {
	if err := c.Read.Close(); err != nil {
		return fmt.Errorf("failed to close read connection: %w", err)
	}

	if err := c.Write.Close(); err != nil {
		return fmt.Errorf("failed to close write connection: %w", err)
	}

	return nil
}
