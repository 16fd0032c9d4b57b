package donation

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/foodshare/foodshare/pkg/enums/donationstatus"
	"github.com/foodshare/foodshare/pkg/enums/role"
)

// TrendDays is the length of the trend window, today included.
const TrendDays = 7

const dateKeyLayout = "2006-01-02"

// TrendStatuses are the statuses counted by the weekly trend. Rejected
// donations are left out of the dashboard.
var TrendStatuses = []donationstatus.Status{
	donationstatus.Statuses.Collected,
	donationstatus.Statuses.Assigned,
	donationstatus.Statuses.Accepted,
	donationstatus.Statuses.Pending,
}

type Trend struct {
	Days   []string         `json:"days"`
	Counts map[string][]int `json:"counts"`

	Degraded bool `json:"-"`
}

// EmptyTrend is the neutral result rendered when the trend cannot be computed.
func EmptyTrend() Trend {
	counts := make(map[string][]int, len(TrendStatuses))
	for _, st := range TrendStatuses {
		counts[st.Code()] = []int{}
	}
	return Trend{
		Days:   []string{},
		Counts: counts,
	}
}

type TrendSource interface {
	ListStatusSince(ctx context.Context, since ID) ([]StatusRecord, error)
}

// TrendCache stores computed trends keyed by window. Get returns nil, nil on a miss.
type TrendCache interface {
	Get(ctx context.Context, key string) (*Trend, error)
	Set(ctx context.Context, key string, t Trend) error
}

type TrendEngine struct {
	source TrendSource
	cache  TrendCache
	now    func() time.Time
	logger aqm.Logger
}

func NewTrendEngine(source TrendSource, cache TrendCache, clock func() time.Time, logger aqm.Logger) *TrendEngine {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if clock == nil {
		clock = time.Now
	}
	return &TrendEngine{
		source: source,
		cache:  cache,
		now:    clock,
		logger: logger,
	}
}

// TrendWindow returns local midnight of now and the first day of the window.
func TrendWindow(now time.Time) (today, start time.Time) {
	y, m, d := now.Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start = time.Date(y, m, d-(TrendDays-1), 0, 0, 0, 0, now.Location())
	return today, start
}

// Weekly returns per-day counts by status for the last seven calendar days.
// It never fails: errors are logged and the neutral empty trend is returned.
func (e *TrendEngine) Weekly(ctx context.Context) Trend {
	today, start := TrendWindow(e.now())
	key := "weekly:" + today.Format(dateKeyLayout)

	if cached := e.cached(ctx, key); cached != nil {
		return *cached
	}

	trend, err := e.compute(ctx, start)
	if err != nil {
		degraded := &Error{Kind: KindAggregationDegraded, Op: "donation.WeeklyTrend", Msg: "weekly trend unavailable", Err: err}
		e.logger.Error("weekly trend calculation failed", "error", degraded)
		empty := EmptyTrend()
		empty.Degraded = true
		return empty
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, trend); err != nil {
			e.logger.Info("cannot cache weekly trend", "error", err)
		}
	}
	return trend
}

func (e *TrendEngine) cached(ctx context.Context, key string) *Trend {
	if e.cache == nil {
		return nil
	}
	t, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Info("cannot read cached weekly trend", "error", err)
		return nil
	}
	return t
}

func (e *TrendEngine) compute(ctx context.Context, start time.Time) (trend Trend, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trend computation panic: %v", r)
		}
	}()

	if e.source == nil {
		return Trend{}, fmt.Errorf("no trend source configured")
	}

	records, err := e.source.ListStatusSince(ctx, LowerBoundID(start))
	if err != nil {
		return Trend{}, fmt.Errorf("cannot fetch donations since %s: %w", start.Format(dateKeyLayout), err)
	}

	loc := start.Location()
	days := make([]string, 0, TrendDays)
	index := make(map[string]int, TrendDays)
	for i := 0; i < TrendDays; i++ {
		day := time.Date(start.Year(), start.Month(), start.Day()+i, 0, 0, 0, 0, loc)
		days = append(days, day.Format("Mon"))
		index[day.Format(dateKeyLayout)] = i
	}

	counts := make(map[string][]int, len(TrendStatuses))
	for _, st := range TrendStatuses {
		counts[st.Code()] = make([]int, TrendDays)
	}

	for _, rec := range records {
		bucket, ok := index[rec.ID.Timestamp().In(loc).Format(dateKeyLayout)]
		if !ok {
			continue
		}
		series, ok := counts[rec.Status]
		if !ok {
			continue
		}
		series[bucket]++
	}

	return Trend{Days: days, Counts: counts}, nil
}

// WeeklyTrend is the admin-only entry point to the trend engine.
func (s *Service) WeeklyTrend(ctx context.Context, p Principal) (Trend, error) {
	if err := authorize("donation.WeeklyTrend", p, role.Roles.Admin); err != nil {
		return EmptyTrend(), err
	}
	return s.trend.Weekly(ctx), nil
}
