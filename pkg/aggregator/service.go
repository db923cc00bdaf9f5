package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/beebopboop22/ourphil-events/internal/utils"
	"github.com/beebopboop22/ourphil-events/pkg/area"
	"github.com/beebopboop22/ourphil-events/pkg/event"
	"github.com/beebopboop22/ourphil-events/pkg/geo"
	"github.com/beebopboop22/ourphil-events/pkg/recurrence"
	"github.com/beebopboop22/ourphil-events/pkg/source"
	"github.com/beebopboop22/ourphil-events/pkg/tag"
	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

// Options narrows an aggregation result after tags are attached.
type Options struct {
	// Tags keeps only events carrying at least one of these slugs.
	// Empty keeps everything.
	Tags []string
}

// NearbyQuery parameterizes a nearby lookup. Zero values fall back to the
// configured defaults.
type NearbyQuery struct {
	AreaSlug     string
	Start        *time.Time
	RadiusMeters float64
	Limit        int
}

// NearbyConfig carries the nearby defaults from configuration.
type NearbyConfig struct {
	RadiusMeters  float64
	LookaheadDays int
	Limit         int
}

// Service exposes the unified event list to rendering collaborators. Every
// method returns a possibly-empty list; individual source failures degrade
// to missing events, never to an error. The context is the cancellation
// signal: callers abandoning a stale request cancel it and discard the
// result.
type Service interface {
	MonthEvents(ctx context.Context, year, month int, opts Options) ([]event.Canonical, error)
	WeekendEvents(ctx context.Context, opts Options) ([]event.Canonical, error)
	DayEvents(ctx context.Context, date time.Time, opts Options) ([]event.Canonical, error)
	NearbyEvents(ctx context.Context, q NearbyQuery) ([]event.Canonical, error)
}

type ServiceImpl struct {
	sources  source.Repository
	norm     *source.Normalizer
	expander recurrence.Expander
	attacher *tag.Attacher
	areas    area.Repository
	resolver *geo.Resolver
	cal      *timewindow.Calendar
	clock    utils.Clock
	nearby   NearbyConfig
}

func NewService(
	sources source.Repository,
	norm *source.Normalizer,
	expander recurrence.Expander,
	attacher *tag.Attacher,
	areas area.Repository,
	cal *timewindow.Calendar,
	nearby NearbyConfig,
) *ServiceImpl {
	return &ServiceImpl{
		sources:  sources,
		norm:     norm,
		expander: expander,
		attacher: attacher,
		areas:    areas,
		resolver: geo.NewResolver(),
		cal:      cal,
		clock:    &utils.SystemClock{},
		nearby:   nearby,
	}
}

func (s *ServiceImpl) MonthEvents(ctx context.Context, year, month int, opts Options) ([]event.Canonical, error) {
	window := s.cal.MonthWindow(year, month)
	return s.aggregate(ctx, source.Filter{Window: window}, opts)
}

func (s *ServiceImpl) WeekendEvents(ctx context.Context, opts Options) ([]event.Canonical, error) {
	window := s.cal.WeekendWindow(s.clock.Now())
	return s.aggregate(ctx, source.Filter{Window: window}, opts)
}

func (s *ServiceImpl) DayEvents(ctx context.Context, date time.Time, opts Options) ([]event.Canonical, error) {
	return s.aggregate(ctx, source.Filter{Window: s.cal.DayWindow(date)}, opts)
}

func (s *ServiceImpl) NearbyEvents(ctx context.Context, q NearbyQuery) ([]event.Canonical, error) {
	ref, err := s.areas.BySlug(ctx, q.AreaSlug)
	if err != nil {
		return nil, err
	}

	start := s.clock.Now()
	if q.Start != nil {
		start = *q.Start
	}
	lookahead := s.nearby.LookaheadDays
	if lookahead <= 0 {
		lookahead = 45
	}
	window := timewindow.Window{
		Start: s.cal.StartOfDay(start),
		End:   s.cal.EndOfDay(s.cal.StartOfDay(start).AddDate(0, 0, lookahead)),
	}

	events, err := s.aggregate(ctx, source.Filter{Window: window, AreaID: &ref.ID}, Options{})
	if err != nil {
		return nil, err
	}

	areas, err := s.areas.List(ctx)
	if err != nil {
		// Centroid fallback degrades; point distances still work.
		log.Errorf("could not load areas for nearby lookup: %v", err)
	}

	radius := q.RadiusMeters
	if radius <= 0 {
		radius = s.nearby.RadiusMeters
	}

	events = s.resolver.Annotate(events, *ref, area.MetaMap(areas))
	events = s.resolver.WithinRadius(events, radius)
	s.resolver.SortByDistance(events)

	limit := q.Limit
	if limit <= 0 {
		limit = s.nearby.Limit
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// aggregate runs the full pipeline for one window: concurrent source
// fetches, dedup, tag attachment, tag filtering, final sort.
func (s *ServiceImpl) aggregate(ctx context.Context, f source.Filter, opts Options) ([]event.Canonical, error) {
	combined := s.collect(ctx, f)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deduped := event.Dedupe(combined)
	withTags := s.attacher.Attach(ctx, deduped)

	result := withTags[:0:0]
	for _, e := range withTags {
		if e.HasAnyTag(opts.Tags) {
			result = append(result, e)
		}
	}

	sortByStart(result)
	if result == nil {
		result = []event.Canonical{}
	}
	return result, nil
}

// collect fans out one fetch per source table and waits for all of them to
// settle. A failing source contributes an empty list; the others are
// unaffected. Results are combined in fixed source order so the outcome
// never depends on completion order.
func (s *ServiceImpl) collect(ctx context.Context, f source.Filter) []event.Canonical {
	fetchers := []struct {
		table event.SourceTable
		fetch func(context.Context, source.Filter) ([]event.Canonical, error)
	}{
		{event.SourceTraditions, s.fetchTraditions},
		{event.SourceAllEvents, s.fetchAllEvents},
		{event.SourceBigBoard, s.fetchBigBoard},
		{event.SourceGroups, s.fetchGroupEvents},
		{event.SourceRecurring, s.fetchRecurring},
		{event.SourceSeasonal, s.fetchSeasonal},
	}

	results := make([][]event.Canonical, len(fetchers))
	failures := make([]error, len(fetchers))

	var wg sync.WaitGroup
	for i, fetcher := range fetchers {
		wg.Add(1)
		go func(i int, table event.SourceTable, fetch func(context.Context, source.Filter) ([]event.Canonical, error)) {
			defer wg.Done()
			events, err := fetch(ctx, f)
			if err != nil {
				log.Errorf("source %s failed, contributing no events: %v", table, err)
				failures[i] = err
				return
			}
			results[i] = events
		}(i, fetcher.table, fetcher.fetch)
	}
	wg.Wait()

	failed := 0
	combined := make([]event.Canonical, 0)
	for i := range fetchers {
		if failures[i] != nil {
			failed++
			continue
		}
		combined = append(combined, results[i]...)
	}
	if failed == len(fetchers) {
		log.Error("all event sources failed; returning empty result")
	}
	return combined
}

func (s *ServiceImpl) fetchTraditions(ctx context.Context, f source.Filter) ([]event.Canonical, error) {
	rows, err := s.sources.Traditions(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]event.Canonical, 0, len(rows))
	for _, row := range rows {
		if c := s.norm.Tradition(row, f.Window); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *ServiceImpl) fetchAllEvents(ctx context.Context, f source.Filter) ([]event.Canonical, error) {
	rows, err := s.sources.AllEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]event.Canonical, 0, len(rows))
	for _, row := range rows {
		if c := s.norm.AllEvent(row, f.Window); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *ServiceImpl) fetchBigBoard(ctx context.Context, f source.Filter) ([]event.Canonical, error) {
	rows, err := s.sources.BigBoardEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]event.Canonical, 0, len(rows))
	for _, row := range rows {
		if c := s.norm.BigBoard(row, f.Window); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *ServiceImpl) fetchGroupEvents(ctx context.Context, f source.Filter) ([]event.Canonical, error) {
	rows, err := s.sources.GroupEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]event.Canonical, 0, len(rows))
	for _, row := range rows {
		if c := s.norm.GroupEvent(row, f.Window); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *ServiceImpl) fetchRecurring(ctx context.Context, f source.Filter) ([]event.Canonical, error) {
	rows, err := s.sources.RecurringEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	var out []event.Canonical
	for _, row := range rows {
		out = append(out, s.norm.RecurringSeries(row, f.Window, s.expander)...)
	}
	return out, nil
}

func (s *ServiceImpl) fetchSeasonal(ctx context.Context, f source.Filter) ([]event.Canonical, error) {
	rows, err := s.sources.SeasonalEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]event.Canonical, 0, len(rows))
	for _, row := range rows {
		if c := s.norm.Seasonal(row, f.Window); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// sortByStart orders by start date, then start time, then title, so a fixed
// snapshot always renders identically.
func sortByStart(events []event.Canonical) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].StartDate.Before(events[j].StartDate)
		}
		if events[i].StartTime != events[j].StartTime {
			return events[i].StartTime < events[j].StartTime
		}
		return events[i].Title < events[j].Title
	})
}
