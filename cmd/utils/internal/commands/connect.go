package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Same defaults as the donation service.
const (
	defaultMongoURL = "mongodb://localhost:27017"
	defaultDBName   = "foodshare_donation"
)

// connect opens the donation database named by db.mongo.name.
func connect(ctx context.Context, config *aqm.Config, logger aqm.Logger) (*mongo.Client, *mongo.Database, error) {
	mongoURL, dbName := mongoSettings(config)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB", "database", dbName)
	return client, client.Database(dbName), nil
}

func mongoSettings(config *aqm.Config) (url, dbName string) {
	return config.GetStringOrDef("db.mongo.url", defaultMongoURL),
		config.GetStringOrDef("db.mongo.name", defaultDBName)
}
