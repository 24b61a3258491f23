package mongoload

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	// defaults to "series_990" when unset
	Collection string `json:"collection"`
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("mongo: host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("mongo: port is required")
	}
	if c.User == "" || c.Password == "" {
		return fmt.Errorf("mongo: user and password are required")
	}
	if c.Database == "" {
		return fmt.Errorf("mongo: database is required")
	}
	return nil
}

func (c Config) collection() string {
	if c.Collection == "" {
		return "series_990"
	}
	return c.Collection
}

func (c Config) uri() string {
	return fmt.Sprintf("mongodb://%s:%s@%s:%d/?authSource=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
	)
}

// Connect opens an authenticated client and pings it. A failed ping is fatal
// to the caller; loading into an unauthenticated or unreachable deployment
// is never attempted.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Collection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.uri()))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	slog.InfoContext(ctx, "connected to mongo",
		"host", cfg.Host,
		"database", cfg.Database,
		"collection", cfg.collection(),
	)
	return client, client.Database(cfg.Database).Collection(cfg.collection()), nil
}
