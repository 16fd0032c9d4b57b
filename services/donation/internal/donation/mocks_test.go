package donation

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/pkg/enums/role"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockDonationRepo is an in-memory DonationRepo whose conditional writes are
// atomic under a mutex, like the MongoDB findOneAndUpdate they stand in for.
type MockDonationRepo struct {
	mu        sync.Mutex
	donations map[ID]*Donation
	actors    *MockActorRepo

	CreateFunc          func(ctx context.Context, d *Donation) error
	GetFunc             func(ctx context.Context, id ID) (*Donation, error)
	ListFunc            func(ctx context.Context, filter DonationFilter) ([]*Donation, error)
	ListDetailsFunc     func(ctx context.Context, filter DonationFilter) ([]*Detail, error)
	CountFunc           func(ctx context.Context, filter DonationFilter) (int64, error)
	TransitionFunc      func(ctx context.Context, id ID, guard Guard, change Change) (*Donation, error)
	SetFeedbackFunc     func(ctx context.Context, id ID, donor ID, fb Feedback) (*Donation, error)
	ListStatusSinceFunc func(ctx context.Context, since ID) ([]StatusRecord, error)
}

func NewMockDonationRepo(actors *MockActorRepo) *MockDonationRepo {
	return &MockDonationRepo{
		donations: make(map[ID]*Donation),
		actors:    actors,
	}
}

func (m *MockDonationRepo) Create(ctx context.Context, d *Donation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d.EnsureID()
	cp := *d
	m.donations[d.ID] = &cp
	return nil
}

func (m *MockDonationRepo) Get(ctx context.Context, id ID) (*Donation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.donations[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *MockDonationRepo) GetDetail(ctx context.Context, id ID) (*Detail, error) {
	d, err := m.Get(ctx, id)
	if err != nil || d == nil {
		return nil, err
	}
	return m.detail(d), nil
}

func (m *MockDonationRepo) List(ctx context.Context, filter DonationFilter) ([]*Donation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return m.matching(filter), nil
}

func (m *MockDonationRepo) ListDetails(ctx context.Context, filter DonationFilter) ([]*Detail, error) {
	if m.ListDetailsFunc != nil {
		return m.ListDetailsFunc(ctx, filter)
	}
	donations := m.matching(filter)
	details := make([]*Detail, 0, len(donations))
	for _, d := range donations {
		details = append(details, m.detail(d))
	}
	return details, nil
}

func (m *MockDonationRepo) Count(ctx context.Context, filter DonationFilter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filter)
	}
	return int64(len(m.matching(filter))), nil
}

func (m *MockDonationRepo) Transition(ctx context.Context, id ID, guard Guard, change Change) (*Donation, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, id, guard, change)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[id]
	if !ok || d.Status != guard.From {
		return nil, nil
	}
	if guard.Donor != nil && d.Donor != *guard.Donor {
		return nil, nil
	}
	if guard.Agent != nil && !d.AssignedTo(*guard.Agent) {
		return nil, nil
	}

	d.Status = change.To
	if change.Agent != nil {
		agent := *change.Agent
		d.Agent = &agent
	}
	if change.AdminToAgentMsg != nil {
		d.AdminToAgentMsg = *change.AdminToAgentMsg
	}
	if change.CollectionTime != nil {
		at := *change.CollectionTime
		d.CollectionTime = &at
	}
	d.UpdatedAt = time.Now()

	cp := *d
	return &cp, nil
}

func (m *MockDonationRepo) SetFeedback(ctx context.Context, id ID, donor ID, fb Feedback) (*Donation, error) {
	if m.SetFeedbackFunc != nil {
		return m.SetFeedbackFunc(ctx, id, donor, fb)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[id]
	if !ok || d.Donor != donor || d.Status != donationstatus.Statuses.Collected.Code() || d.Feedback.Rating != nil {
		return nil, nil
	}
	d.Feedback = fb
	cp := *d
	return &cp, nil
}

func (m *MockDonationRepo) ListStatusSince(ctx context.Context, since ID) ([]StatusRecord, error) {
	if m.ListStatusSinceFunc != nil {
		return m.ListStatusSinceFunc(ctx, since)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	records := []StatusRecord{}
	for id, d := range m.donations {
		if bytes.Compare(id[:], since[:]) >= 0 {
			records = append(records, StatusRecord{ID: id, Status: d.Status})
		}
	}
	return records, nil
}

// AddDonation stores d as is, bypassing Create.
func (m *MockDonationRepo) AddDonation(d *Donation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.EnsureID()
	cp := *d
	m.donations[d.ID] = &cp
}

func (m *MockDonationRepo) matching(filter DonationFilter) []*Donation {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []*Donation{}
	for _, d := range m.donations {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, d.Status) {
			continue
		}
		if filter.Donor != nil && d.Donor != *filter.Donor {
			continue
		}
		if filter.Agent != nil && !d.AssignedTo(*filter.Agent) {
			continue
		}
		if filter.RatedOnly && d.Feedback.Rating == nil {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}

	slices.SortFunc(result, func(a, b *Donation) int {
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result
}

func (m *MockDonationRepo) detail(d *Donation) *Detail {
	detail := &Detail{Donation: *d}
	if m.actors == nil {
		return detail
	}
	detail.DonorActor, _ = m.actors.Get(context.Background(), d.Donor)
	if d.Agent != nil {
		detail.AgentActor, _ = m.actors.Get(context.Background(), *d.Agent)
	}
	return detail
}

// MockActorRepo is an in-memory ActorRepo.
type MockActorRepo struct {
	mu     sync.Mutex
	actors map[ID]*Actor

	GetFunc         func(ctx context.Context, id ID) (*Actor, error)
	ListByRoleFunc  func(ctx context.Context, role string) ([]*Actor, error)
	CountByRoleFunc func(ctx context.Context, role string) (int64, error)
}

func NewMockActorRepo() *MockActorRepo {
	return &MockActorRepo{
		actors: make(map[ID]*Actor),
	}
}

func (m *MockActorRepo) Create(ctx context.Context, a *Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	cp := *a
	m.actors[a.ID] = &cp
	return nil
}

func (m *MockActorRepo) Get(ctx context.Context, id ID) (*Actor, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actors[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *MockActorRepo) ListByRole(ctx context.Context, r string) ([]*Actor, error) {
	if m.ListByRoleFunc != nil {
		return m.ListByRoleFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*Actor{}
	for _, a := range m.actors {
		if a.Role == r {
			cp := *a
			result = append(result, &cp)
		}
	}
	slices.SortFunc(result, func(a, b *Actor) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return result, nil
}

func (m *MockActorRepo) CountByRole(ctx context.Context, r string) (int64, error) {
	if m.CountByRoleFunc != nil {
		return m.CountByRoleFunc(ctx, r)
	}
	actors, _ := m.ListByRole(ctx, r)
	return int64(len(actors)), nil
}

// MockPublisher implements events.Publisher for testing
type MockPublisher struct {
	mu              sync.Mutex
	PublishedEvents []struct {
		Topic string
		Data  []byte
	}
	PublishFunc func(ctx context.Context, topic string, data []byte) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedEvents = append(m.PublishedEvents, struct {
		Topic string
		Data  []byte
	}{topic, data})
	return nil
}

func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PublishedEvents)
}

// MockTrendCache is an in-memory TrendCache.
type MockTrendCache struct {
	entries  map[string]Trend
	GetFunc  func(ctx context.Context, key string) (*Trend, error)
	SetFunc  func(ctx context.Context, key string, t Trend) error
	SetCalls int
}

func NewMockTrendCache() *MockTrendCache {
	return &MockTrendCache{entries: make(map[string]Trend)}
}

func (m *MockTrendCache) Get(ctx context.Context, key string) (*Trend, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	t, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MockTrendCache) Set(ctx context.Context, key string, t Trend) error {
	m.SetCalls++
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, t)
	}
	m.entries[key] = t
	return nil
}

// fixture bundles a service over in-memory stores with one actor per role
// plus a second donor and agent.
type fixture struct {
	service   *Service
	donations *MockDonationRepo
	actors    *MockActorRepo
	publisher *MockPublisher
	cache     *MockTrendCache
	now       time.Time

	admin  Principal
	donor  Principal
	donor2 Principal
	agent  Principal
	agent2 Principal
}

var fixtureNow = time.Date(2026, time.October, 15, 15, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	actors := NewMockActorRepo()
	donations := NewMockDonationRepo(actors)
	publisher := NewMockPublisher()

	f := &fixture{
		donations: donations,
		actors:    actors,
		publisher: publisher,
		now:       fixtureNow,
	}

	f.admin = f.addActor(t, role.Roles.Admin, "Asha", "Admin")
	f.donor = f.addActor(t, role.Roles.Donor, "Green", "Bistro")
	f.donor2 = f.addActor(t, role.Roles.Donor, "Sunrise", "Hostel")
	f.agent = f.addActor(t, role.Roles.Agent, "Ravi", "Kumar")
	f.agent2 = f.addActor(t, role.Roles.Agent, "Meera", "Iyer")

	f.service = NewService(ServiceDeps{
		Donations: donations,
		Actors:    actors,
		Publisher: publisher,
		Clock:     func() time.Time { return f.now },
	}, aqm.NewNoopLogger())
	return f
}

// withCache rebuilds the service with an in-memory trend cache.
func (f *fixture) withCache() *fixture {
	f.cache = NewMockTrendCache()
	f.service = NewService(ServiceDeps{
		Donations:  f.donations,
		Actors:     f.actors,
		Publisher:  f.publisher,
		TrendCache: f.cache,
		Clock:      func() time.Time { return f.now },
	}, aqm.NewNoopLogger())
	return f
}

func (f *fixture) addActor(t *testing.T, r role.Role, first, last string) Principal {
	t.Helper()
	a := &Actor{Role: r.Code(), FirstName: first, LastName: last}
	if err := f.actors.Create(context.Background(), a); err != nil {
		t.Fatalf("cannot create actor: %v", err)
	}
	return Principal{ActorID: a.ID, Role: r.Code()}
}

// addDonation stores a donation of donor in the given status. Assigned and
// collected donations are given to agent.
func (f *fixture) addDonation(donor Principal, status donationstatus.Status, agent *Principal) *Donation {
	d := &Donation{
		ID:          NewIDAt(f.now.Add(-time.Hour)),
		Donor:       donor.ActorID,
		FoodType:    "Vegetable biryani",
		Quantity:    "40 plates",
		CookingTime: f.now.Add(-3 * time.Hour),
		Address:     "12 Market Road",
		Phone:       "(022) 555-0101",
		Status:      status.Code(),
	}
	if agent != nil {
		agentID := agent.ActorID
		d.Agent = &agentID
	}
	f.donations.AddDonation(d)
	return d
}

func validCreateInput() CreateInput {
	return CreateInput{
		FoodType:    "Vegetable biryani",
		Quantity:    "40 plates",
		CookingTime: fixtureNow.Add(-2 * time.Hour),
		Address:     "12 Market Road",
		Phone:       "+91 98765 43210",
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
