package donation

import (
	"context"
	"slices"

	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/pkg/enums/role"
	"github.com/foodshare/foodshare/pkg/event"
)

var transitions = map[string][]string{
	donationstatus.Statuses.Pending.Code():  {donationstatus.Statuses.Accepted.Code(), donationstatus.Statuses.Rejected.Code()},
	donationstatus.Statuses.Accepted.Code(): {donationstatus.Statuses.Assigned.Code()},
	donationstatus.Statuses.Assigned.Code(): {donationstatus.Statuses.Collected.Code()},
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

func (s *Service) Create(ctx context.Context, p Principal, in CreateInput) (*Donation, error) {
	const op = "donation.Create"
	if err := authorize(op, p, role.Roles.Donor); err != nil {
		return nil, err
	}
	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	d := NewDonation(p.ActorID, in)
	d.BeforeCreate()

	if err := s.donations.Create(ctx, d); err != nil {
		return nil, unavailable(op, err)
	}

	s.publish(ctx, event.DonationCreatedEvent{
		DonationEventMetadata: s.eventMetadata(event.EventDonationCreated, d),
		Status:                d.Status,
		FoodType:              d.FoodType,
		Quantity:              d.Quantity,
	})
	return d, nil
}

func (s *Service) Accept(ctx context.Context, p Principal, id ID) (*Donation, error) {
	const op = "donation.Accept"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}
	return s.transition(ctx, op, p, id,
		Guard{From: donationstatus.Statuses.Pending.Code()},
		Change{To: donationstatus.Statuses.Accepted.Code()},
	)
}

func (s *Service) Reject(ctx context.Context, p Principal, id ID) (*Donation, error) {
	const op = "donation.Reject"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}
	return s.transition(ctx, op, p, id,
		Guard{From: donationstatus.Statuses.Pending.Code()},
		Change{To: donationstatus.Statuses.Rejected.Code()},
	)
}

func (s *Service) Assign(ctx context.Context, p Principal, id ID, in AssignInput) (*Donation, error) {
	const op = "donation.Assign"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}
	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	agentID, err := ParseID(in.AgentID)
	if err != nil {
		return nil, validationFailed(op, "invalid agent id", "agent_id is not a valid id")
	}

	agent, err := s.actors.Get(ctx, agentID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if agent == nil || !agent.HasRole(role.Roles.Agent) {
		return nil, validationFailed(op, "agent_id does not reference an agent", "agent_id must reference an agent")
	}

	msg := in.AdminToAgentMsg
	return s.transition(ctx, op, p, id,
		Guard{From: donationstatus.Statuses.Accepted.Code()},
		Change{
			To:              donationstatus.Statuses.Assigned.Code(),
			Agent:           &agentID,
			AdminToAgentMsg: &msg,
		},
	)
}

// Collect completes the pickup of an assigned donation. Only the agent the
// donation is assigned to may collect it.
func (s *Service) Collect(ctx context.Context, p Principal, id ID, in CollectInput) (*Donation, error) {
	const op = "donation.Collect"
	if err := authorize(op, p, role.Roles.Agent); err != nil {
		return nil, err
	}

	now := s.now()
	collectedAt := now
	if in.CollectedAt != nil && !in.CollectedAt.IsZero() {
		collectedAt = *in.CollectedAt
		// Ids carry whole seconds, so the lower bound is the creation second.
		if collectedAt.Before(id.Timestamp()) {
			return nil, validationFailed(op, "collection time precedes donation", "collected_at must not be before the donation was created")
		}
		if collectedAt.After(now) {
			return nil, validationFailed(op, "collection time is in the future", "collected_at must not be in the future")
		}
	}

	agentID := p.ActorID
	return s.transition(ctx, op, p, id,
		Guard{From: donationstatus.Statuses.Assigned.Code(), Agent: &agentID},
		Change{To: donationstatus.Statuses.Collected.Code(), CollectionTime: &collectedAt},
	)
}

func (s *Service) transition(ctx context.Context, op string, p Principal, id ID, guard Guard, change Change) (*Donation, error) {
	if !CanTransition(guard.From, change.To) {
		return nil, invalidTransition(op, guard.From, change.To)
	}

	updated, err := s.donations.Transition(ctx, id, guard, change)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if updated == nil {
		return nil, s.classifyMiss(ctx, op, id, guard, change.To)
	}

	s.logger.Debug("donation transitioned", "id", id.Hex(), "from", guard.From, "to", change.To)

	s.publish(ctx, event.DonationStatusChangedEvent{
		DonationEventMetadata: s.eventMetadata(event.EventDonationStatusChanged, updated),
		NewStatus:             updated.Status,
		PreviousStatus:        guard.From,
		ActorID:               p.ActorID.Hex(),
		CollectionTime:        updated.CollectionTime,
	})
	return updated, nil
}

// classifyMiss explains why a conditional write matched nothing. It only reads;
// the write already failed atomically.
func (s *Service) classifyMiss(ctx context.Context, op string, id ID, guard Guard, to string) error {
	current, err := s.donations.Get(ctx, id)
	if err != nil {
		return unavailable(op, err)
	}
	if current == nil {
		return notFound(op, "donation %s not found", id.Hex())
	}
	if guard.Donor != nil && current.Donor != *guard.Donor {
		return unauthorized(op, "donation %s belongs to another donor", id.Hex())
	}
	if guard.Agent != nil && current.Status == guard.From && !current.AssignedTo(*guard.Agent) {
		return unauthorized(op, "donation %s is assigned to another agent", id.Hex())
	}
	return invalidTransition(op, current.Status, to)
}
