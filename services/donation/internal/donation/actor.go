package donation

import (
	"strings"
	"time"

	"github.com/foodshare/foodshare/pkg/enums/role"
)

type Actor struct {
	ID        ID        `bson:"_id" json:"id"`
	Role      string    `bson:"role" json:"role"`
	FirstName string    `bson:"first_name" json:"first_name"`
	LastName  string    `bson:"last_name" json:"last_name"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	CreatedBy string    `bson:"created_by,omitempty" json:"-"`
}

func (a *Actor) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Actor) HasRole(r role.Role) bool {
	return a.Role == r.Code()
}

// Principal is the authenticated caller of a core operation, as resolved by
// the authentication gateway for the current request.
type Principal struct {
	ActorID ID
	Role    string
}

func (p Principal) Authenticated() bool {
	return !p.ActorID.IsZero() && role.ByName(p.Role) != nil
}

func (p Principal) Is(r role.Role) bool {
	return p.Authenticated() && p.Role == r.Code()
}

func authorize(op string, p Principal, allowed ...role.Role) error {
	if !p.Authenticated() {
		return unauthorized(op, "authentication required")
	}
	for _, r := range allowed {
		if p.Role == r.Code() {
			return nil
		}
	}
	return unauthorized(op, "role %s is not allowed", p.Role)
}
