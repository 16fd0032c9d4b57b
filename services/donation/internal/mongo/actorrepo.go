package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foodshare/foodshare/services/donation/internal/donation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActorRepo struct {
	collection *mongo.Collection
}

func NewActorRepo(db *mongo.Database) *ActorRepo {
	return &ActorRepo{
		collection: db.Collection(ActorsCollection),
	}
}

func (r *ActorRepo) Create(ctx context.Context, a *donation.Actor) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("cannot insert actor: %w", err)
	}
	return nil
}

func (r *ActorRepo) Get(ctx context.Context, id donation.ID) (*donation.Actor, error) {
	var a donation.Actor
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find actor: %w", err)
	}
	return &a, nil
}

func (r *ActorRepo) ListByRole(ctx context.Context, role string) ([]*donation.Actor, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find actors: %w", err)
	}
	defer cursor.Close(ctx)

	actors := []*donation.Actor{}
	if err := cursor.All(ctx, &actors); err != nil {
		return nil, fmt.Errorf("cannot decode actors: %w", err)
	}
	return actors, nil
}

func (r *ActorRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("cannot count actors: %w", err)
	}
	return n, nil
}

var _ donation.ActorRepo = (*ActorRepo)(nil)
