package donation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/foodshare/foodshare/pkg/event"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ServiceDeps struct {
	Donations  DonationRepo
	Actors     ActorRepo
	Publisher  events.Publisher
	TrendCache TrendCache
	Clock      func() time.Time
}

// Service exposes the donation lifecycle, feedback and reporting operations.
// Every operation receives the calling Principal explicitly.
type Service struct {
	donations DonationRepo
	actors    ActorRepo
	publisher events.Publisher
	trend     *TrendEngine
	validate  *validator.Validate
	logger    aqm.Logger
	now       func() time.Time
}

func NewService(deps ServiceDeps, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		donations: deps.Donations,
		actors:    deps.Actors,
		publisher: deps.Publisher,
		trend:     NewTrendEngine(deps.Donations, deps.TrendCache, clock, logger),
		validate:  newValidator(),
		logger:    logger,
		now:       clock,
	}
}

func (s *Service) publish(ctx context.Context, payload any) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("cannot encode donation event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event.DonationsTopic, data); err != nil {
		s.logger.Error("cannot publish donation event", "topic", event.DonationsTopic, "error", err)
	}
}

func (s *Service) eventMetadata(eventType string, d *Donation) event.DonationEventMetadata {
	md := event.DonationEventMetadata{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: s.now(),
		DonationID: d.ID.Hex(),
		DonorID:    d.Donor.Hex(),
	}
	if d.Agent != nil {
		md.AgentID = d.Agent.Hex()
	}
	return md
}
