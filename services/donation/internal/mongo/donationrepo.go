package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/services/donation/internal/donation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DonationRepo struct {
	collection *mongo.Collection
}

func NewDonationRepo(db *mongo.Database) *DonationRepo {
	return &DonationRepo{
		collection: db.Collection(DonationsCollection),
	}
}

func (r *DonationRepo) Create(ctx context.Context, d *donation.Donation) error {
	d.EnsureID()
	d.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("cannot insert donation: %w", err)
	}
	return nil
}

func (r *DonationRepo) Get(ctx context.Context, id donation.ID) (*donation.Donation, error) {
	var d donation.Donation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find donation: %w", err)
	}
	return &d, nil
}

func (r *DonationRepo) GetDetail(ctx context.Context, id donation.ID) (*donation.Detail, error) {
	details, err := r.aggregateDetails(ctx, bson.M{"_id": id}, 1)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return details[0], nil
}

func (r *DonationRepo) List(ctx context.Context, filter donation.DonationFilter) ([]*donation.Donation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}})

	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, filterQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find donations: %w", err)
	}
	defer cursor.Close(ctx)

	donations := []*donation.Donation{}
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, fmt.Errorf("cannot decode donations: %w", err)
	}
	return donations, nil
}

func (r *DonationRepo) ListDetails(ctx context.Context, filter donation.DonationFilter) ([]*donation.Detail, error) {
	return r.aggregateDetails(ctx, filterQuery(filter), filter.Limit)
}

func (r *DonationRepo) Count(ctx context.Context, filter donation.DonationFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, filterQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("cannot count donations: %w", err)
	}
	return n, nil
}

func (r *DonationRepo) Transition(ctx context.Context, id donation.ID, guard donation.Guard, change donation.Change) (*donation.Donation, error) {
	filter := bson.M{
		"_id":    id,
		"status": guard.From,
	}
	if guard.Donor != nil {
		filter["donor"] = *guard.Donor
	}
	if guard.Agent != nil {
		filter["agent"] = *guard.Agent
	}

	set := bson.M{
		"status":     change.To,
		"updated_at": time.Now(),
	}
	if change.Agent != nil {
		set["agent"] = *change.Agent
	}
	if change.AdminToAgentMsg != nil {
		set["admin_to_agent_msg"] = *change.AdminToAgentMsg
	}
	if change.CollectionTime != nil {
		set["collection_time"] = *change.CollectionTime
	}

	return r.findOneAndSet(ctx, filter, set)
}

func (r *DonationRepo) SetFeedback(ctx context.Context, id donation.ID, donor donation.ID, fb donation.Feedback) (*donation.Donation, error) {
	filter := bson.M{
		"_id":             id,
		"donor":           donor,
		"status":          donationstatus.Statuses.Collected.Code(),
		"feedback.rating": nil,
	}
	set := bson.M{
		"feedback":   fb,
		"updated_at": time.Now(),
	}
	return r.findOneAndSet(ctx, filter, set)
}

func (r *DonationRepo) ListStatusSince(ctx context.Context, since donation.ID) ([]donation.StatusRecord, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "status": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find recent donations: %w", err)
	}
	defer cursor.Close(ctx)

	records := []donation.StatusRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("cannot decode recent donations: %w", err)
	}
	return records, nil
}

// findOneAndSet applies set to the single document matching filter and
// returns it after the update, or nil when nothing matched.
func (r *DonationRepo) findOneAndSet(ctx context.Context, filter, set bson.M) (*donation.Donation, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d donation.Donation
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot update donation: %w", err)
	}
	return &d, nil
}

func (r *DonationRepo) aggregateDetails(ctx context.Context, match bson.M, limit int) ([]*donation.Detail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, actorLookup("donor", "donor_actor")...)
	pipeline = append(pipeline, actorLookup("agent", "agent_actor")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("cannot aggregate donations: %w", err)
	}
	defer cursor.Close(ctx)

	details := []*donation.Detail{}
	if err := cursor.All(ctx, &details); err != nil {
		return nil, fmt.Errorf("cannot decode donation details: %w", err)
	}
	return details, nil
}

func actorLookup(localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ActorsCollection},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func filterQuery(filter donation.DonationFilter) bson.M {
	query := bson.M{}

	switch len(filter.Statuses) {
	case 0:
	case 1:
		query["status"] = filter.Statuses[0]
	default:
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	if filter.Donor != nil {
		query["donor"] = *filter.Donor
	}

	if filter.Agent != nil {
		query["agent"] = *filter.Agent
	}

	if filter.RatedOnly {
		query["feedback.rating"] = bson.M{"$ne": nil}
	}

	return query
}

var _ donation.DonationRepo = (*DonationRepo)(nil)
