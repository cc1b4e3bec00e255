package database

import (
	"context"
	"log"
	"time"

	"campus-events/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

const connectTimeout = 10 * time.Second

// MongodbDB is the platform database: tenant directory, process logs and the
// default tenant storage live here.
type MongodbDB struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Dial opens a client for uri and verifies it is reachable
func Dial(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// NewDatabase creates a new MongoDB database connection with lifecycle management
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	client, err := Dial(context.Background(), cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB!")

	db := client.Database(cfg.DBName)

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return client.Disconnect(ctx)
		},
	})

	return &MongodbDB{Client: client, DB: db}, nil
}
