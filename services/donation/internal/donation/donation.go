package donation

import (
	"time"

	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID identifies donations and actors. The first four bytes carry the
// creation second, which the trend window relies on.
type ID = primitive.ObjectID

type Donation struct {
	ID              ID         `bson:"_id" json:"id"`
	Donor           ID         `bson:"donor" json:"donor"`
	Agent           *ID        `bson:"agent,omitempty" json:"agent,omitempty"`
	FoodType        string     `bson:"food_type" json:"food_type"`
	Quantity        string     `bson:"quantity" json:"quantity"`
	CookingTime     time.Time  `bson:"cooking_time" json:"cooking_time"`
	Address         string     `bson:"address" json:"address"`
	Phone           string     `bson:"phone" json:"phone"`
	DonorToAdminMsg string     `bson:"donor_to_admin_msg,omitempty" json:"donor_to_admin_msg,omitempty"`
	AdminToAgentMsg string     `bson:"admin_to_agent_msg,omitempty" json:"admin_to_agent_msg,omitempty"`
	CollectionTime  *time.Time `bson:"collection_time,omitempty" json:"collection_time,omitempty"`
	Status          string     `bson:"status" json:"status"`
	Feedback        Feedback   `bson:"feedback" json:"feedback"`
	CreatedBy       string     `bson:"created_by,omitempty" json:"-"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`
}

// Feedback fields stay null until the donor rates the collection.
type Feedback struct {
	Rating      *int       `bson:"rating" json:"rating"`
	Comment     *string    `bson:"comment" json:"comment"`
	SubmittedAt *time.Time `bson:"submitted_at" json:"submitted_at"`
}

func NewDonation(donor ID, in CreateInput) *Donation {
	return &Donation{
		ID:              primitive.NewObjectID(),
		Donor:           donor,
		FoodType:        in.FoodType,
		Quantity:        in.Quantity,
		CookingTime:     in.CookingTime,
		Address:         in.Address,
		Phone:           in.Phone,
		DonorToAdminMsg: in.DonorToAdminMsg,
		Status:          donationstatus.Statuses.Pending.Code(),
	}
}

func (d *Donation) EnsureID() {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
}

func (d *Donation) BeforeCreate() {
	d.EnsureID()
	if d.Status == "" {
		d.Status = donationstatus.Statuses.Pending.Code()
	}
	d.UpdatedAt = time.Now()
}

// CreatedAt recovers the creation instant from the id.
func (d *Donation) CreatedAt() time.Time {
	return d.ID.Timestamp()
}

func (d *Donation) HasFeedback() bool {
	return d.Feedback.Rating != nil
}

func (d *Donation) AssignedTo(agent ID) bool {
	return d.Agent != nil && *d.Agent == agent
}

// ParseID parses the hex form of an id.
func ParseID(s string) (ID, error) {
	return primitive.ObjectIDFromHex(s)
}

// NewIDAt returns a unique id whose embedded timestamp is t.
func NewIDAt(t time.Time) ID {
	id := primitive.NewObjectID()
	lower := primitive.NewObjectIDFromTimestamp(t)
	copy(id[:4], lower[:4])
	return id
}

// LowerBoundID returns the smallest id that can have been generated at or after t.
func LowerBoundID(t time.Time) ID {
	return primitive.NewObjectIDFromTimestamp(t)
}
