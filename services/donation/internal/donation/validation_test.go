package donation

import (
	"strings"
	"testing"
	"time"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+91 98765 43210", true},
		{"(022) 555-0101", true},
		{"5550101", true},
		{"555-01", false},
		{"", false},
		{"call me", false},
		{"+91 98765 4321x", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := ValidPhone(tt.phone); got != tt.want {
				t.Errorf("ValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	s := NewService(ServiceDeps{}, nil)

	tests := []struct {
		name       string
		input      any
		wantFields []string
	}{
		{
			name:  "validCreate",
			input: validCreateInput(),
		},
		{
			name:       "emptyCreate",
			input:      CreateInput{},
			wantFields: []string{"food_type is required", "quantity is required", "cooking_time is required", "address is required", "phone is required"},
		},
		{
			name: "longDonorMessage",
			input: CreateInput{
				FoodType:        "Rice",
				Quantity:        "2 kg",
				CookingTime:     time.Now(),
				Address:         "4 College Lane",
				Phone:           "5550101",
				DonorToAdminMsg: strings.Repeat("x", 1001),
			},
			wantFields: []string{"donor_to_admin_msg must be at most 1000"},
		},
		{
			name:       "assignWithBadID",
			input:      AssignInput{AgentID: "xyz"},
			wantFields: []string{"agent_id is not a valid id"},
		},
		{
			name:       "ratingOutOfRange",
			input:      FeedbackInput{Rating: 7},
			wantFields: []string{"rating must be at most 5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateInput("test", tt.input)

			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("validateInput() unexpected error: %v", err)
				}
				return
			}

			e, ok := err.(*Error)
			if !ok {
				t.Fatalf("validateInput() error = %v, want *Error", err)
			}
			if e.Kind != KindValidation {
				t.Errorf("Kind = %s, want %s", e.Kind, KindValidation)
			}
			if strings.Join(e.Fields, "|") != strings.Join(tt.wantFields, "|") {
				t.Errorf("Fields = %v, want %v", e.Fields, tt.wantFields)
			}
		})
	}
}
