package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/pkg/enums/role"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DemoTag        = "demo-seed"
	DemoDonationID = "demo_donations_v1"
)

// DayPlan is how many donations created on a given day end up in each status.
type DayPlan struct {
	DaysAgo int
	Counts  map[string]int
}

// WeekPlan spreads demo donations over the last seven days so the dashboard
// trend has something to show.
var WeekPlan = []DayPlan{
	{DaysAgo: 6, Counts: map[string]int{"collected": 3, "rejected": 1}},
	{DaysAgo: 5, Counts: map[string]int{"collected": 2, "assigned": 1}},
	{DaysAgo: 4, Counts: map[string]int{"collected": 4}},
	{DaysAgo: 3, Counts: map[string]int{"collected": 2, "assigned": 1, "rejected": 1}},
	{DaysAgo: 2, Counts: map[string]int{"collected": 1, "assigned": 2, "accepted": 1}},
	{DaysAgo: 1, Counts: map[string]int{"assigned": 1, "accepted": 2, "pending": 1}},
	{DaysAgo: 0, Counts: map[string]int{"accepted": 1, "pending": 3}},
}

var foods = []struct {
	foodType string
	quantity string
}{
	{"Vegetable biryani", "40 plates"},
	{"Chapati and dal", "25 servings"},
	{"Bread rolls", "3 trays"},
	{"Fruit salad", "15 bowls"},
	{"Rice and sambar", "30 servings"},
}

var comments = []string{
	"Picked up on time, very polite.",
	"Agent arrived a little late but handled everything well.",
	"Smooth pickup.",
}

// Actor is the slice of an actor document the seeder needs.
type Actor struct {
	ID      primitive.ObjectID `bson:"_id"`
	Role    string             `bson:"role"`
	Phone   string             `bson:"phone"`
	Address string             `bson:"address"`
}

// SeedDonations creates demo donations for the demo donors, assigning
// accepted work to the demo agents. Actors must already exist.
func SeedDonations(ctx context.Context, db *mongo.Database, now time.Time) (int, error) {
	donors, err := loadActors(ctx, db, role.Roles.Donor.Code())
	if err != nil {
		return 0, err
	}
	agents, err := loadActors(ctx, db, role.Roles.Agent.Code())
	if err != nil {
		return 0, err
	}
	if len(donors) == 0 || len(agents) == 0 {
		return 0, fmt.Errorf("no demo donors or agents found - start the donation service with seed.demo.enabled=true first")
	}

	docs := BuildDonations(WeekPlan, donors, agents, now)
	if _, err := db.Collection("donations").InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("cannot insert demo donations: %w", err)
	}
	return len(docs), nil
}

func loadActors(ctx context.Context, db *mongo.Database, roleCode string) ([]Actor, error) {
	cursor, err := db.Collection("actors").Find(ctx, bson.M{"role": roleCode, "created_by": DemoTag})
	if err != nil {
		return nil, fmt.Errorf("cannot fetch demo %s actors: %w", roleCode, err)
	}
	defer cursor.Close(ctx)

	var actors []Actor
	if err := cursor.All(ctx, &actors); err != nil {
		return nil, fmt.Errorf("cannot decode demo %s actors: %w", roleCode, err)
	}
	return actors, nil
}

// BuildDonations turns a plan into insertable documents. Each id embeds a
// timestamp on its planned day, at local noon.
func BuildDonations(plan []DayPlan, donors, agents []Actor, now time.Time) []interface{} {
	y, m, d := now.Date()
	docs := []interface{}{}
	n := 0

	for _, day := range plan {
		created := time.Date(y, m, d-day.DaysAgo, 12, 0, 0, 0, now.Location())
		for _, st := range donationstatus.All {
			for i := 0; i < day.Counts[st.Code()]; i++ {
				donor := donors[n%len(donors)]
				food := foods[n%len(foods)]
				at := created.Add(time.Duration(n%60) * time.Minute)

				doc := bson.M{
					"_id":          idAt(at),
					"donor":        donor.ID,
					"food_type":    food.foodType,
					"quantity":     food.quantity,
					"cooking_time": at.Add(-2 * time.Hour),
					"address":      donor.Address,
					"phone":        donor.Phone,
					"status":       st.Code(),
					"feedback":     bson.M{"rating": nil, "comment": nil, "submitted_at": nil},
					"created_by":   DemoTag,
					"updated_at":   at,
				}

				switch st {
				case donationstatus.Statuses.Assigned, donationstatus.Statuses.Collected:
					doc["agent"] = agents[n%len(agents)].ID
					doc["admin_to_agent_msg"] = "Please call the donor before arriving."
				}

				if st == donationstatus.Statuses.Collected {
					collected := at.Add(90 * time.Minute)
					doc["collection_time"] = collected
					if n%2 == 0 {
						rating := 3 + n%3
						comment := comments[n%len(comments)]
						doc["feedback"] = bson.M{"rating": rating, "comment": comment, "submitted_at": collected.Add(time.Hour)}
					}
				}

				docs = append(docs, doc)
				n++
			}
		}
	}
	return docs
}

// idAt mirrors the donation service: a fresh id carrying the given timestamp.
func idAt(t time.Time) primitive.ObjectID {
	id := primitive.NewObjectID()
	lower := primitive.NewObjectIDFromTimestamp(t)
	copy(id[:4], lower[:4])
	return id
}
