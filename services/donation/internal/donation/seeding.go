package donation

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
	"github.com/foodshare/foodshare/pkg/enums/role"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const DemoSeedTag = "demo-seed"

// DemoActors are stable identities so a local gateway can impersonate them.
var DemoActors = []Actor{
	{ID: mustID("65f000000000000000000001"), Role: role.Roles.Admin.Code(), FirstName: "Asha", LastName: "Admin", Email: "admin@foodshare.local"},
	{ID: mustID("65f000000000000000000002"), Role: role.Roles.Agent.Code(), FirstName: "Ravi", LastName: "Kumar", Email: "ravi@foodshare.local", Phone: "+91 98765 43210"},
	{ID: mustID("65f000000000000000000003"), Role: role.Roles.Agent.Code(), FirstName: "Meera", LastName: "Iyer", Email: "meera@foodshare.local", Phone: "+91 91234 56789"},
	{ID: mustID("65f000000000000000000004"), Role: role.Roles.Donor.Code(), FirstName: "Green", LastName: "Bistro", Email: "kitchen@greenbistro.local", Phone: "(022) 555-0101", Address: "12 Market Road"},
	{ID: mustID("65f000000000000000000005"), Role: role.Roles.Donor.Code(), FirstName: "Sunrise", LastName: "Hostel", Email: "mess@sunrise.local", Phone: "(022) 555-0199", Address: "4 College Lane"},
}

func mustID(hex string) ID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return id
}

// Seeds returns all seeds for the donation service
func Seeds(db *mongo.Database) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "demo_actors_v1",
			Description: "Create demo admin, agents and donors",
			Run: func(ctx context.Context) error {
				return seedDemoActors(ctx, db)
			},
		},
	}
}

func seedDemoActors(ctx context.Context, db *mongo.Database) error {
	actors := db.Collection("actors")
	now := time.Now()

	docs := make([]interface{}, 0, len(DemoActors))
	for _, a := range DemoActors {
		a.CreatedAt = now
		a.CreatedBy = DemoSeedTag
		docs = append(docs, a)
	}

	if _, err := actors.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("cannot insert demo actors: %w", err)
	}
	return nil
}

// ApplyDemoSeeds applies demo seeds if enabled via config
func ApplyDemoSeeds(ctx context.Context, config *aqm.Config, dbFn func() *mongo.Database, logger aqm.Logger) error {
	enabled, _ := config.GetString("seed.demo.enabled")
	if enabled != "true" {
		return nil
	}

	logger.Info("Demo seeding enabled, applying demo actors...")
	db := dbFn()
	tracker := seed.NewMongoTracker(db)

	if err := seed.Apply(ctx, tracker, Seeds(db), "donation"); err != nil {
		return fmt.Errorf("demo seed failed: %w", err)
	}

	logger.Info("Demo actors seeded successfully")
	return nil
}
