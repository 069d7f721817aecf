package repositories

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/domain"
)

// MongoClient owns the connection to the document store. It is built once at
// process start and handed to the repositories that need it.
type MongoClient struct {
	uri      string
	database string
	logger   *zap.Logger

	once   sync.Once
	client *mongo.Client
	db     *mongo.Database
	err    error
}

// NewMongoClient creates an unconnected client.
func NewMongoClient(uri, database string, logger *zap.Logger) *MongoClient {
	return &MongoClient{uri: uri, database: database, logger: logger}
}

// Connect dials and pings the server. Only the first call does any work; later
// calls return the same database or the same error.
func (c *MongoClient) Connect(ctx context.Context) (*mongo.Database, error) {
	c.once.Do(func() {
		if c.uri == "" {
			c.logger.Warn("MONGO_URI is not set, document store will not be initialized")
			c.err = domain.ErrStoreUnavailable
			return
		}

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
		if err != nil {
			c.err = fmt.Errorf("failed to connect to MongoDB: %w", err)
			return
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			c.err = fmt.Errorf("failed to ping MongoDB: %w", err)
			return
		}

		c.client = client
		c.db = client.Database(c.database)
		c.logger.Info("Connected to MongoDB", zap.String("database", c.database))
	})
	return c.db, c.err
}

// Disconnect closes the connection if one was opened.
func (c *MongoClient) Disconnect(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
