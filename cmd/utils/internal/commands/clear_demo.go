package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/foodshare/foodshare/cmd/utils/internal/seeding"
	"go.mongodb.org/mongo-driver/bson"
)

// ClearDemo removes demo donations. Demo actors are kept so the service does
// not need to reseed them.
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	result, err := db.Collection("donations").DeleteMany(ctx, bson.M{"created_by": seeding.DemoTag})
	if err != nil {
		return fmt.Errorf("delete demo donations: %w", err)
	}
	logger.Info("Deleted demo donations", "count", result.DeletedCount)

	tracker, err := db.Collection("_seeds").DeleteOne(ctx, bson.M{"_id": seeding.DemoDonationID})
	if err != nil {
		return fmt.Errorf("delete donation seed tracker: %w", err)
	}
	logger.Info("Cleared donation seed tracker", "deleted", tracker.DeletedCount)

	return nil
}
