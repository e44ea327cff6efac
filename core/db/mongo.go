package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/fbz-tec/docvault/internal/logger"
)

// MongoConnector dials MongoDB with a bounded connection pool.
type MongoConnector struct {
	MaxPoolSize uint64
	AppName     string
}

// Connect creates the client and pings the primary before handing it out.
func (m MongoConnector) Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetMaxPoolSize(m.MaxPoolSize)
	if m.AppName != "" {
		opts.SetAppName(m.AppName)
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts.SetServerSelectionTimeout(timeUntil(deadline))
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("create mongo client: %w", err)
	}

	logger.Debug("Mongo client created (maxPoolSize=%d), verifying connectivity (ping)...", m.MaxPoolSize)

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Debug("Database ping successful")
	return client, nil
}

// Disconnect closes the client and its pool.
func (m MongoConnector) Disconnect(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
