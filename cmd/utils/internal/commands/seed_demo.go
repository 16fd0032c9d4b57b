package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/foodshare/foodshare/cmd/utils/internal/seeding"
	"go.mongodb.org/mongo-driver/bson"
)

// SeedDemo fills the donation database with a week of demo donations
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding process...")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	seedsCollection := db.Collection("_seeds")
	count, err := seedsCollection.CountDocuments(ctx, bson.M{"_id": seeding.DemoDonationID})
	if err != nil {
		return fmt.Errorf("check seed status: %w", err)
	}

	if count > 0 {
		logger.Info("Donation demo seeds already applied, skipping")
		return nil
	}

	n, err := seeding.SeedDonations(ctx, db, time.Now())
	if err != nil {
		return fmt.Errorf("seed donations: %w", err)
	}

	_, err = seedsCollection.InsertOne(ctx, bson.M{
		"_id":         seeding.DemoDonationID,
		"description": "Create a week of demo donations across every status",
		"applied_at":  time.Now(),
	})
	if err != nil {
		logger.Infof("Failed to mark seed as applied: %v", err)
	}

	logger.Info("Donation demo seeds applied", "count", n)
	return nil
}
