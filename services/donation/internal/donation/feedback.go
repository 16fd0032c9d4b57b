package donation

import (
	"context"
	"slices"
	"time"

	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/pkg/enums/role"
	"github.com/foodshare/foodshare/pkg/event"
	"github.com/shopspring/decimal"
)

const (
	MinRating = 1
	MaxRating = 5
)

type FeedbackEntry struct {
	DonationID ID        `json:"id"`
	DonorName  string    `json:"donor"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Date       time.Time `json:"date"`
}

type FeedbackStats struct {
	AvgRating    float64     `json:"avg_rating"`
	Total        int         `json:"total"`
	RatingCounts map[int]int `json:"rating_counts"`
}

type AgentFeedbackReport struct {
	Feedback []FeedbackEntry `json:"feedback"`
	Stats    FeedbackStats   `json:"stats"`
}

// SubmitFeedback rates a collected donation. A donation can be rated once,
// by the donor who created it.
func (s *Service) SubmitFeedback(ctx context.Context, p Principal, id ID, in FeedbackInput) (*Donation, error) {
	const op = "donation.SubmitFeedback"
	if err := authorize(op, p, role.Roles.Donor); err != nil {
		return nil, err
	}
	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	rating := in.Rating
	comment := in.Comment
	submittedAt := s.now()
	fb := Feedback{
		Rating:      &rating,
		Comment:     &comment,
		SubmittedAt: &submittedAt,
	}

	updated, err := s.donations.SetFeedback(ctx, id, p.ActorID, fb)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if updated == nil {
		return nil, s.classifyFeedbackMiss(ctx, op, p, id)
	}

	s.publish(ctx, event.DonationFeedbackSubmittedEvent{
		DonationEventMetadata: s.eventMetadata(event.EventDonationFeedbackCreated, updated),
		Rating:                rating,
	})
	return updated, nil
}

func (s *Service) classifyFeedbackMiss(ctx context.Context, op string, p Principal, id ID) error {
	current, err := s.donations.Get(ctx, id)
	if err != nil {
		return unavailable(op, err)
	}
	if current == nil {
		return notFound(op, "donation %s not found", id.Hex())
	}
	if current.Donor != p.ActorID {
		return unauthorized(op, "donation %s belongs to another donor", id.Hex())
	}
	if current.Status != donationstatus.Statuses.Collected.Code() {
		return &Error{Kind: KindInvalidTransition, Op: op, Msg: "feedback requires a collected donation, status is " + current.Status}
	}
	return &Error{Kind: KindInvalidTransition, Op: op, Msg: "feedback already submitted"}
}

// AgentFeedback lists the rated collections of an agent, newest first, with
// summary statistics.
func (s *Service) AgentFeedback(ctx context.Context, p Principal, agentID ID) (*AgentFeedbackReport, error) {
	const op = "donation.AgentFeedback"
	if err := authorize(op, p, role.Roles.Admin); err != nil {
		return nil, err
	}

	agent, err := s.actors.Get(ctx, agentID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if agent == nil {
		return nil, notFound(op, "agent %s not found", agentID.Hex())
	}
	if !agent.HasRole(role.Roles.Agent) {
		return nil, validationFailed(op, "actor is not an agent")
	}

	details, err := s.donations.ListDetails(ctx, DonationFilter{
		Statuses:  []string{donationstatus.Statuses.Collected.Code()},
		Agent:     &agentID,
		RatedOnly: true,
	})
	if err != nil {
		return nil, unavailable(op, err)
	}

	entries := make([]FeedbackEntry, 0, len(details))
	for _, d := range details {
		if d.Feedback.Rating == nil {
			continue
		}
		entry := FeedbackEntry{
			DonationID: d.ID,
			Rating:     *d.Feedback.Rating,
		}
		if d.DonorActor != nil {
			entry.DonorName = d.DonorActor.FullName()
		}
		if d.Feedback.Comment != nil {
			entry.Comment = *d.Feedback.Comment
		}
		if d.Feedback.SubmittedAt != nil {
			entry.Date = *d.Feedback.SubmittedAt
		}
		entries = append(entries, entry)
	}

	slices.SortStableFunc(entries, func(a, b FeedbackEntry) int {
		return b.Date.Compare(a.Date)
	})

	return &AgentFeedbackReport{
		Feedback: entries,
		Stats:    ComputeFeedbackStats(entries),
	}, nil
}

// ComputeFeedbackStats returns the mean rating rounded half-up to one decimal,
// the number of ratings and a histogram over 1..5.
func ComputeFeedbackStats(entries []FeedbackEntry) FeedbackStats {
	stats := FeedbackStats{
		RatingCounts: make(map[int]int, MaxRating),
	}
	for r := MinRating; r <= MaxRating; r++ {
		stats.RatingCounts[r] = 0
	}

	sum := int64(0)
	for _, e := range entries {
		if e.Rating < MinRating || e.Rating > MaxRating {
			continue
		}
		sum += int64(e.Rating)
		stats.RatingCounts[e.Rating]++
		stats.Total++
	}

	if stats.Total > 0 {
		avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(stats.Total))).Round(1)
		stats.AvgRating = avg.InexactFloat64()
	}
	return stats
}
