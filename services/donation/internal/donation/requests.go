package donation

import "time"

type CreateInput struct {
	FoodType        string    `json:"food_type" validate:"required"`
	Quantity        string    `json:"quantity" validate:"required"`
	CookingTime     time.Time `json:"cooking_time" validate:"required"`
	Address         string    `json:"address" validate:"required"`
	Phone           string    `json:"phone" validate:"required,phone"`
	DonorToAdminMsg string    `json:"donor_to_admin_msg,omitempty" validate:"max=1000"`
}

type AssignInput struct {
	AgentID         string `json:"agent_id" validate:"required,mongodb"`
	AdminToAgentMsg string `json:"admin_to_agent_msg,omitempty" validate:"max=1000"`
}

type CollectInput struct {
	CollectedAt *time.Time `json:"collected_at,omitempty"`
}

type FeedbackInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
