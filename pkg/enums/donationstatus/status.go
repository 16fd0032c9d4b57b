package donationstatus

import (
	"strings"
)

type Status struct {
	Name     string
	Terminal bool
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	if s.Name == "" {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

type Enum struct {
	Pending   Status
	Accepted  Status
	Rejected  Status
	Assigned  Status
	Collected Status
}

var Statuses = Enum{
	Pending:   Status{Name: "pending"},
	Accepted:  Status{Name: "accepted"},
	Rejected:  Status{Name: "rejected", Terminal: true},
	Assigned:  Status{Name: "assigned"},
	Collected: Status{Name: "collected", Terminal: true},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Accepted,
	Statuses.Rejected,
	Statuses.Assigned,
	Statuses.Collected,
}

// Open lists the statuses grouped under "pending" in the admin open donations view.
// It is a display grouping and says nothing about which transitions are legal.
var Open = []Status{
	Statuses.Pending,
	Statuses.Accepted,
	Statuses.Assigned,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// Codes returns the codes of the given statuses in order.
func Codes(statuses ...Status) []string {
	codes := make([]string, 0, len(statuses))
	for _, s := range statuses {
		codes = append(codes, s.Code())
	}
	return codes
}
