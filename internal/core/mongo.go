// AngelaMos | 2026
// mongo.go

package core

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/carterperez-dev/ascend-api/internal/config"
)

type Database struct {
	Client       *mongo.Client
	DB           *mongo.Database
	QueryTimeout time.Duration
}

func NewDatabase(
	ctx context.Context,
	cfg config.MongoConfig,
) (*Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMonitor(MongoMonitor()).
		SetBSONOptions(&options.BSONOptions{
			NilSliceAsEmpty:  true,
			NilMapAsEmpty:    true,
			DefaultDocumentM: true,
		})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx) //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Database{
		Client:       client,
		DB:           client.Database(cfg.Database),
		QueryTimeout: cfg.QueryTimeout,
	}, nil
}

func (d *Database) Close(ctx context.Context) error {
	if d.Client != nil {
		return d.Client.Disconnect(ctx)
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.Client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}

	return nil
}

func (d *Database) Collection(name string) *mongo.Collection {
	return d.DB.Collection(name)
}

// NumberOfSessionsInProgress reports the driver's checked-out session count.
func (d *Database) NumberOfSessionsInProgress() int {
	return d.Client.NumberSessionsInProgress()
}

// WithQueryTimeout bounds a single store round trip.
func WithQueryTimeout(
	ctx context.Context,
	timeout time.Duration,
) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
