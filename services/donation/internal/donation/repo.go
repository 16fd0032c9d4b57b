package donation

import (
	"context"
	"time"
)

type DonationFilter struct {
	Statuses  []string
	Donor     *ID
	Agent     *ID
	RatedOnly bool
	Limit     int
}

// Guard is the precondition a conditional update must match.
type Guard struct {
	From  string
	Donor *ID
	Agent *ID
}

// Change is what a matched transition writes.
type Change struct {
	To              string
	Agent           *ID
	AdminToAgentMsg *string
	CollectionTime  *time.Time
}

// Detail is a donation with its actor references resolved.
type Detail struct {
	Donation   `bson:",inline"`
	DonorActor *Actor `bson:"donor_actor,omitempty" json:"donor_actor,omitempty"`
	AgentActor *Actor `bson:"agent_actor,omitempty" json:"agent_actor,omitempty"`
}

// StatusRecord is the projection used by the trend window.
type StatusRecord struct {
	ID     ID     `bson:"_id"`
	Status string `bson:"status"`
}

type DonationRepo interface {
	Create(ctx context.Context, d *Donation) error
	// Get returns nil, nil when the donation does not exist.
	Get(ctx context.Context, id ID) (*Donation, error)
	GetDetail(ctx context.Context, id ID) (*Detail, error)
	List(ctx context.Context, filter DonationFilter) ([]*Donation, error)
	ListDetails(ctx context.Context, filter DonationFilter) ([]*Detail, error)
	Count(ctx context.Context, filter DonationFilter) (int64, error)
	// Transition applies change only if the stored donation matches guard, in a
	// single conditional write. It returns nil, nil when nothing matched.
	Transition(ctx context.Context, id ID, guard Guard, change Change) (*Donation, error)
	// SetFeedback stores feedback only if the donation belongs to donor, is
	// collected and has no rating yet. It returns nil, nil when nothing matched.
	SetFeedback(ctx context.Context, id ID, donor ID, fb Feedback) (*Donation, error)
	ListStatusSince(ctx context.Context, since ID) ([]StatusRecord, error)
}

type ActorRepo interface {
	Create(ctx context.Context, a *Actor) error
	// Get returns nil, nil when the actor does not exist.
	Get(ctx context.Context, id ID) (*Actor, error)
	ListByRole(ctx context.Context, role string) ([]*Actor, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}
