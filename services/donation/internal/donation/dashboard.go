package donation

import (
	"context"
	"fmt"

	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/pkg/enums/role"
)

type Dashboard struct {
	NumAdmins             int64 `json:"num_admins"`
	NumAgents             int64 `json:"num_agents"`
	NumDonors             int64 `json:"num_donors"`
	NumPendingDonations   int64 `json:"num_pending_donations"`
	NumAcceptedDonations  int64 `json:"num_accepted_donations"`
	NumAssignedDonations  int64 `json:"num_assigned_donations"`
	NumCollectedDonations int64 `json:"num_collected_donations"`
	WeeklyTrend           Trend `json:"weekly_trend"`
	Degraded              bool  `json:"degraded,omitempty"`
}

// Dashboard gathers the admin overview. A failing count degrades the whole
// dashboard to zeros rather than failing the request.
func (s *Service) Dashboard(ctx context.Context, p Principal) (*Dashboard, error) {
	const op = "donation.Dashboard"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}

	dash, err := s.countAll(ctx)
	if err != nil {
		s.logger.Error("cannot load dashboard", "error", &Error{Kind: KindAggregationDegraded, Op: op, Err: err})
		return &Dashboard{WeeklyTrend: EmptyTrend(), Degraded: true}, nil
	}

	dash.WeeklyTrend = s.trend.Weekly(ctx)
	dash.Degraded = dash.WeeklyTrend.Degraded
	return dash, nil
}

func (s *Service) countAll(ctx context.Context) (*Dashboard, error) {
	dash := &Dashboard{}

	actorCounts := []struct {
		role role.Role
		dst  *int64
	}{
		{role.Roles.Admin, &dash.NumAdmins},
		{role.Roles.Agent, &dash.NumAgents},
		{role.Roles.Donor, &dash.NumDonors},
	}
	for _, c := range actorCounts {
		n, err := s.actors.CountByRole(ctx, c.role.Code())
		if err != nil {
			return nil, fmt.Errorf("cannot count %s actors: %w", c.role.Code(), err)
		}
		*c.dst = n
	}

	donationCounts := []struct {
		status donationstatus.Status
		dst    *int64
	}{
		{donationstatus.Statuses.Pending, &dash.NumPendingDonations},
		{donationstatus.Statuses.Accepted, &dash.NumAcceptedDonations},
		{donationstatus.Statuses.Assigned, &dash.NumAssignedDonations},
		{donationstatus.Statuses.Collected, &dash.NumCollectedDonations},
	}
	for _, c := range donationCounts {
		n, err := s.donations.Count(ctx, DonationFilter{Statuses: []string{c.status.Code()}})
		if err != nil {
			return nil, fmt.Errorf("cannot count %s donations: %w", c.status.Code(), err)
		}
		*c.dst = n
	}

	return dash, nil
}
