package event

import "time"

const (
	DonationsTopic               = "donations.lifecycle"
	EventDonationCreated         = "donation.created"
	EventDonationStatusChanged   = "donation.status_changed"
	EventDonationFeedbackCreated = "donation.feedback_submitted"

	// CollectionsTopic carries collection confirmations reported from the field.
	CollectionsTopic            = "agents.collections"
	EventDonationCollectionDone = "donation.collection.completed"
)

type DonationEventMetadata struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	DonationID string    `json:"donation_id"`
	DonorID    string    `json:"donor_id"`
	AgentID    string    `json:"agent_id,omitempty"`
}

type DonationCreatedEvent struct {
	DonationEventMetadata
	Status   string `json:"status"`
	FoodType string `json:"food_type"`
	Quantity string `json:"quantity"`
}

type DonationStatusChangedEvent struct {
	DonationEventMetadata
	NewStatus      string     `json:"new_status"`
	PreviousStatus string     `json:"previous_status"`
	ActorID        string     `json:"actor_id"`
	CollectionTime *time.Time `json:"collection_time,omitempty"`
}

type DonationFeedbackSubmittedEvent struct {
	DonationEventMetadata
	Rating int `json:"rating"`
}

// CollectionCompletedEvent is emitted by field tooling when an agent picks up a donation.
type CollectionCompletedEvent struct {
	EventType   string     `json:"event_type"`
	DonationID  string     `json:"donation_id"`
	AgentID     string     `json:"agent_id"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
}
