package geo

import (
	"sort"

	"github.com/beebopboop22/ourphil-events/pkg/area"
	"github.com/beebopboop22/ourphil-events/pkg/event"
)

// Resolver annotates events with their distance from a reference area and
// orders them nearest-first. It is stateless; every call stands alone, and
// radius widening on sparse results is the caller's decision.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Annotate fills DistanceMeters for every event it can locate. Events with
// explicit coordinates get a true point distance; events with only an area
// reference get the distance to that area's centroid, marked approximate.
// Everything else keeps an unknown (nil) distance and stays in the result.
// A reference area without a centroid leaves all distances unknown.
func (r *Resolver) Annotate(events []event.Canonical, reference area.Area, areas map[int64]area.Area) []event.Canonical {
	out := make([]event.Canonical, len(events))
	copy(out, events)
	if !reference.HasCentroid() {
		return out
	}
	refLat, refLon := *reference.Latitude, *reference.Longitude

	for i := range out {
		switch {
		case out[i].HasCoordinates():
			d := DistanceMeters(refLat, refLon, *out[i].Latitude, *out[i].Longitude)
			out[i].DistanceMeters = &d
			out[i].DistanceApprox = false
		case out[i].AreaID != nil:
			meta, ok := areas[*out[i].AreaID]
			if !ok || !meta.HasCentroid() {
				continue
			}
			d := DistanceMeters(refLat, refLon, *meta.Latitude, *meta.Longitude)
			out[i].DistanceMeters = &d
			out[i].DistanceApprox = true
		}
	}
	return out
}

// WithinRadius drops events whose known distance exceeds the radius.
// Unknown distances are kept; absence of a coordinate is not evidence the
// event is far away.
func (r *Resolver) WithinRadius(events []event.Canonical, radiusMeters float64) []event.Canonical {
	if radiusMeters <= 0 {
		return events
	}
	out := make([]event.Canonical, 0, len(events))
	for _, e := range events {
		if e.DistanceMeters != nil && *e.DistanceMeters > radiusMeters {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortByDistance orders ascending by distance with unknown distances last,
// breaking ties by start date, start time, then title.
func (r *Resolver) SortByDistance(events []event.Canonical) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := events[i].DistanceMeters, events[j].DistanceMeters
		switch {
		case di != nil && dj != nil && *di != *dj:
			return *di < *dj
		case di == nil && dj != nil:
			return false
		case di != nil && dj == nil:
			return true
		}
		if !events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].StartDate.Before(events[j].StartDate)
		}
		if events[i].StartTime != events[j].StartTime {
			return events[i].StartTime < events[j].StartTime
		}
		return events[i].Title < events[j].Title
	})
}
