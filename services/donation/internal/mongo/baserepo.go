package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	DonationsCollection = "donations"
	ActorsCollection    = "actors"
)

// BaseRepo owns the MongoDB client shared by the donation and actor stores.
type BaseRepo struct {
	client *mongo.Client
	db     *mongo.Database
	logger aqm.Logger
	config *aqm.Config
}

func NewBaseRepo(config *aqm.Config, logger aqm.Logger) *BaseRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &BaseRepo{
		logger: logger,
		config: config,
	}
}

const (
	defaultMongoURL = "mongodb://localhost:27017"
	defaultDBName   = "foodshare_donation"
	connectTimeout  = 10 * time.Second
)

// Start connects, verifies the primary is reachable and ensures indexes. A
// failed ping releases the client before returning.
func (r *BaseRepo) Start(ctx context.Context) error {
	url := r.config.GetStringOrDef("db.mongo.url", defaultMongoURL)
	name := r.config.GetStringOrDef("db.mongo.name", defaultDBName)

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(url).
		SetAppName("foodshare-donation").
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout))
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("cannot reach MongoDB primary: %w", err)
	}

	db := client.Database(name)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	r.client, r.db = client, db
	r.logger.Info("Donation store connected", "database", name)
	return nil
}

func (r *BaseRepo) Stop(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect donation store: %w", err)
	}
	r.logger.Info("Donation store disconnected")
	return nil
}

func (r *BaseRepo) GetDatabase() *mongo.Database {
	return r.db
}

// EnsureIndexes creates the secondary indexes used by list and count queries.
// Time windows use _id, so no creation timestamp index is needed.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	donationIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "donor", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "agent", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := db.Collection(DonationsCollection).Indexes().CreateMany(ctx, donationIndexes); err != nil {
		return fmt.Errorf("cannot create donation indexes: %w", err)
	}

	actorIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "role", Value: 1}},
	}
	if _, err := db.Collection(ActorsCollection).Indexes().CreateOne(ctx, actorIndex); err != nil {
		return fmt.Errorf("cannot create actor role index: %w", err)
	}

	return nil
}
