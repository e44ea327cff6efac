package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fbz-tec/docvault/core/config"
	"github.com/fbz-tec/docvault/core/db"
	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/telemetry"
	"github.com/fbz-tec/docvault/internal/logger"
)

// Store is a document repository whose handle comes from a connection cache.
type Store interface {
	documents.Repository
	// Ping obtains the shared connection, connecting on first use.
	Ping(ctx context.Context) error
	State() db.State
	Backend() string
	Close(ctx context.Context) error
}

// Open selects the backend from cfg.DatabaseURI. No connection is made until
// the first operation.
func Open(cfg config.Config, collector telemetry.Collector) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := db.DetectBackend(cfg.DatabaseURI)
	if err != nil {
		return nil, &config.ConfigurationError{Key: config.EnvDatabaseURI, Reason: err.Error()}
	}

	opts := []db.Option{
		db.WithBackend(backend),
		db.WithConnectTimeout(cfg.ConnectTimeout),
		db.WithCollector(collector),
	}

	logger.Debug("Using %s backend: %s", backend, db.SanitizeURI(cfg.DatabaseURI))

	switch backend {
	case db.BackendMongo:
		connector := db.MongoConnector{MaxPoolSize: uint64(cfg.MaxPoolSize), AppName: "docvault"}
		return NewMongoStore(db.NewCache[*mongo.Client](cfg.DatabaseURI, connector, opts...), cfg.DatabaseName), nil
	case db.BackendPostgres:
		connector := db.PgConnector{MaxConns: int32(cfg.MaxPoolSize)}
		return NewPgStore(db.NewCache[*pgxpool.Pool](cfg.DatabaseURI, connector, opts...)), nil
	case db.BackendSQLite:
		connector := db.SQLiteConnector{MaxOpenConns: cfg.MaxPoolSize}
		return NewSQLiteStore(db.NewCache[*sql.DB](cfg.DatabaseURI, connector, opts...)), nil
	default:
		return NewMemoryStore(opts...), nil
	}
}

// cached carries the cache-backed parts of Store shared by every backend.
type cached[H any] struct {
	cache *db.Cache[H]
}

func (c cached[H]) Ping(ctx context.Context) error {
	_, err := c.cache.Get(ctx)
	return err
}

func (c cached[H]) State() db.State {
	return c.cache.State()
}

func (c cached[H]) Backend() string {
	return c.cache.Backend()
}

func (c cached[H]) Close(ctx context.Context) error {
	return c.cache.Close(ctx)
}

// escapeLike escapes the LIKE wildcards in s using backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
