package donation

import (
	"context"

	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/pkg/enums/role"
)

// OpenDonations lists donations still moving through the lifecycle, grouped
// together for the admin worklist.
func (s *Service) OpenDonations(ctx context.Context, p Principal) ([]*Detail, error) {
	const op = "donation.OpenDonations"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}
	details, err := s.donations.ListDetails(ctx, DonationFilter{
		Statuses: donationstatus.Codes(donationstatus.Open...),
	})
	if err != nil {
		return nil, unavailable(op, err)
	}
	return details, nil
}

func (s *Service) PreviousDonations(ctx context.Context, p Principal) ([]*Detail, error) {
	const op = "donation.PreviousDonations"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}
	details, err := s.donations.ListDetails(ctx, DonationFilter{
		Statuses: []string{donationstatus.Statuses.Collected.Code()},
	})
	if err != nil {
		return nil, unavailable(op, err)
	}
	return details, nil
}

// DonationDetail returns a donation with donor and agent resolved. Admins see
// every donation, donors their own and agents the ones assigned to them.
func (s *Service) DonationDetail(ctx context.Context, p Principal, id ID) (*Detail, error) {
	const op = "donation.DonationDetail"
	if err := authorize(op, p, role.Roles.Admin, role.Roles.Donor, role.Roles.Agent); err != nil {
		return nil, err
	}

	detail, err := s.donations.GetDetail(ctx, id)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if detail == nil {
		return nil, notFound(op, "donation %s not found", id.Hex())
	}

	switch {
	case p.Is(role.Roles.Admin):
	case p.Is(role.Roles.Donor) && detail.Donor == p.ActorID:
	case p.Is(role.Roles.Agent) && detail.AssignedTo(p.ActorID):
	default:
		return nil, unauthorized(op, "donation %s is not visible to this actor", id.Hex())
	}
	return detail, nil
}

// Agents lists the agents an admin can assign donations to.
func (s *Service) Agents(ctx context.Context, p Principal) ([]*Actor, error) {
	const op = "donation.Agents"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}
	agents, err := s.actors.ListByRole(ctx, role.Roles.Agent.Code())
	if err != nil {
		return nil, unavailable(op, err)
	}
	return agents, nil
}

// MyDonations lists the donations a donor created or an agent was assigned,
// optionally narrowed to one status.
func (s *Service) MyDonations(ctx context.Context, p Principal, status string) ([]*Donation, error) {
	const op = "donation.MyDonations"
	if err := authorize(op, p, role.Roles.Donor, role.Roles.Agent); err != nil {
		return nil, err
	}

	filter := DonationFilter{}
	if status != "" {
		if donationstatus.ByName(status) == nil {
			return nil, validationFailed(op, "unknown status", "status must be one of pending, accepted, rejected, assigned, collected")
		}
		filter.Statuses = []string{status}
	}

	actorID := p.ActorID
	if p.Is(role.Roles.Donor) {
		filter.Donor = &actorID
	} else {
		filter.Agent = &actorID
	}

	donations, err := s.donations.List(ctx, filter)
	if err != nil {
		return nil, unavailable(op, err)
	}
	return donations, nil
}
