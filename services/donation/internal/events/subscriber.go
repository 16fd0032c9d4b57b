package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/foodshare/foodshare/pkg/enums/role"
	"github.com/foodshare/foodshare/pkg/event"
	"github.com/foodshare/foodshare/services/donation/internal/donation"
)

// Collector is the part of the donation service that field confirmations drive.
type Collector interface {
	Collect(ctx context.Context, p donation.Principal, id donation.ID, in donation.CollectInput) (*donation.Donation, error)
}

// CollectionSubscriber turns collection confirmations reported by agents in
// the field into Collect operations on the donation service.
type CollectionSubscriber struct {
	subscriber events.Subscriber
	collector  Collector
	logger     aqm.Logger
}

func NewCollectionSubscriber(subscriber events.Subscriber, collector Collector, logger aqm.Logger) *CollectionSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &CollectionSubscriber{
		subscriber: subscriber,
		collector:  collector,
		logger:     logger,
	}
}

func (s *CollectionSubscriber) Start(ctx context.Context) error {
	s.logger.Infof("Starting CollectionSubscriber for topic: %s", event.CollectionsTopic)

	if err := s.subscriber.Subscribe(ctx, event.CollectionsTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.CollectionsTopic, err)
	}

	s.logger.Info("CollectionSubscriber started successfully")
	return nil
}

func (s *CollectionSubscriber) Stop(ctx context.Context) error {
	return nil
}

// handleEvent returns an error only when the store is unavailable, so a
// durable consumer redelivers. Malformed or rejected confirmations are dropped.
func (s *CollectionSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.CollectionCompletedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Errorf("Failed to unmarshal collection event: %v", err)
		return nil
	}

	if evt.EventType != event.EventDonationCollectionDone {
		s.logger.Debug("Ignoring event", "event_type", evt.EventType)
		return nil
	}

	donationID, err := donation.ParseID(evt.DonationID)
	if err != nil {
		s.logger.Errorf("Invalid donation_id: %v", err)
		return nil
	}

	agentID, err := donation.ParseID(evt.AgentID)
	if err != nil {
		s.logger.Errorf("Invalid agent_id: %v", err)
		return nil
	}

	p := donation.Principal{ActorID: agentID, Role: role.Roles.Agent.Code()}
	d, err := s.collector.Collect(ctx, p, donationID, donation.CollectInput{CollectedAt: evt.CollectedAt})
	if err != nil {
		if donation.KindOf(err) == donation.KindUnavailable {
			s.logger.Errorf("Cannot record collection of %s: %v", evt.DonationID, err)
			return err
		}
		s.logger.Info("Collection confirmation rejected", "donation_id", evt.DonationID, "agent_id", evt.AgentID, "error", err)
		return nil
	}

	s.logger.Infof("Donation %s collected by agent %s", d.ID.Hex(), agentID.Hex())
	return nil
}
