package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beebopboop22/ourphil-events/pkg/area"
	"github.com/beebopboop22/ourphil-events/pkg/event"
)

func f64(f float64) *float64 { return &f }
func i64(i int64) *int64     { return &i }

// City Hall, Philadelphia.
var cityHall = area.Area{ID: 1, Name: "Center City", Slug: "center-city", Latitude: f64(39.9526), Longitude: f64(-75.1652)}

func TestDistanceMeters(t *testing.T) {
	t.Run("zero distance to itself", func(t *testing.T) {
		assert.InDelta(t, 0, DistanceMeters(39.9526, -75.1652, 39.9526, -75.1652), 0.001)
	})

	t.Run("city hall to the art museum", func(t *testing.T) {
		// About 2.2 km up the Parkway.
		d := DistanceMeters(39.9526, -75.1652, 39.9656, -75.1810)
		assert.InDelta(t, 2000, d, 500)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := DistanceMeters(39.95, -75.16, 40.00, -75.20)
		b := DistanceMeters(40.00, -75.20, 39.95, -75.16)
		assert.InDelta(t, a, b, 0.0001)
	})
}

func newEvent(id string, day int) event.Canonical {
	return event.Canonical{
		ID:          id,
		SourceTable: event.SourceAllEvents,
		Title:       id,
		StartDate:   time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnnotate(t *testing.T) {
	resolver := NewResolver()
	areas := map[int64]area.Area{
		2: {ID: 2, Slug: "fishtown", Latitude: f64(39.9720), Longitude: f64(-75.1300)},
		3: {ID: 3, Slug: "no-centroid"},
	}

	withCoords := newEvent("point", 1)
	withCoords.Latitude = f64(39.9656)
	withCoords.Longitude = f64(-75.1810)

	withArea := newEvent("area-only", 1)
	withArea.AreaID = i64(2)

	orphanArea := newEvent("orphan-area", 1)
	orphanArea.AreaID = i64(3)

	unknown := newEvent("unknown", 1)

	annotated := resolver.Annotate([]event.Canonical{withCoords, withArea, orphanArea, unknown}, cityHall, areas)
	require.Len(t, annotated, 4)

	require.NotNil(t, annotated[0].DistanceMeters)
	assert.False(t, annotated[0].DistanceApprox, "explicit coordinates give a true point distance")

	require.NotNil(t, annotated[1].DistanceMeters)
	assert.True(t, annotated[1].DistanceApprox, "area centroid fallback is marked approximate")

	assert.Nil(t, annotated[2].DistanceMeters, "area without centroid stays unknown")
	assert.Nil(t, annotated[3].DistanceMeters)
}

func TestAnnotateWithoutReferenceCentroid(t *testing.T) {
	resolver := NewResolver()
	e := newEvent("point", 1)
	e.Latitude = f64(39.9)
	e.Longitude = f64(-75.1)

	annotated := resolver.Annotate([]event.Canonical{e}, area.Area{ID: 9, Slug: "nowhere"}, nil)
	assert.Nil(t, annotated[0].DistanceMeters)
}

func TestWithinRadius(t *testing.T) {
	resolver := NewResolver()

	near := newEvent("near", 1)
	near.DistanceMeters = f64(500)
	far := newEvent("far", 1)
	far.DistanceMeters = f64(5000)
	unknown := newEvent("unknown", 1)

	kept := resolver.WithinRadius([]event.Canonical{near, far, unknown}, 1609)
	require.Len(t, kept, 2)
	assert.Equal(t, "near", kept[0].ID)
	assert.Equal(t, "unknown", kept[1].ID, "unknown distance is kept, not treated as far")
}

func TestSortByDistance(t *testing.T) {
	resolver := NewResolver()

	a := newEvent("b-title", 2)
	a.DistanceMeters = f64(100)
	b := newEvent("a-title", 2)
	b.DistanceMeters = f64(100)
	c := newEvent("closest", 5)
	c.DistanceMeters = f64(10)
	d := newEvent("unknown", 1)
	e := newEvent("earlier-day", 1)
	e.DistanceMeters = f64(100)

	events := []event.Canonical{a, b, c, d, e}
	resolver.SortByDistance(events)

	assert.Equal(t, "closest", events[0].ID)
	assert.Equal(t, "earlier-day", events[1].ID, "equal distances order by start date")
	assert.Equal(t, "a-title", events[2].ID, "then by title")
	assert.Equal(t, "b-title", events[3].ID)
	assert.Equal(t, "unknown", events[4].ID, "unknown distance sorts last")
}
