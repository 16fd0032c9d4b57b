package role

type Role struct {
	Name string
}

func (r Role) Code() string {
	return r.Name
}

type Enum struct {
	Donor Role
	Admin Role
	Agent Role
}

var Roles = Enum{
	Donor: Role{Name: "donor"},
	Admin: Role{Name: "admin"},
	Agent: Role{Name: "agent"},
}

var All = []Role{
	Roles.Donor,
	Roles.Admin,
	Roles.Agent,
}

// ByName returns the role for a given name, or nil if not found
func ByName(name string) *Role {
	for _, r := range All {
		if r.Name == name {
			return &r
		}
	}
	return nil
}
