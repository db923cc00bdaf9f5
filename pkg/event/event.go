package event

import "time"

// SourceTable identifies which of the six store tables a canonical event
// came from.
type SourceTable string

const (
	SourceTraditions SourceTable = "events"
	SourceAllEvents  SourceTable = "all_events"
	SourceBigBoard   SourceTable = "big_board_events"
	SourceGroups     SourceTable = "group_events"
	SourceRecurring  SourceTable = "recurring_events"
	SourceSeasonal   SourceTable = "seasonal_events"
)

// AllSources in fetch order.
var AllSources = []SourceTable{
	SourceTraditions,
	SourceAllEvents,
	SourceBigBoard,
	SourceGroups,
	SourceRecurring,
	SourceSeasonal,
}

// Priority ranks sources for dedup tie-breaking; lower wins. Unknown tables
// rank after every known one, keyed off their first byte for determinism.
func (s SourceTable) Priority() int {
	switch s {
	case SourceTraditions:
		return 0
	case SourceAllEvents:
		return 1
	case SourceBigBoard:
		return 2
	case SourceGroups:
		return 10
	case SourceRecurring:
		return 11
	case SourceSeasonal:
		return 12
	}
	if s == "" {
		return 100
	}
	return 100 + int(s[0])
}

// Event status vocabulary. Anything else from the store passes through
// lower-cased.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Price and age flag vocabulary produced by normalization.
const (
	PriceFree = "free"
	PricePaid = "$$"
	AgeAll    = "all-ages"
)

// Canonical is the unified event record every source normalizes into.
// Display-only fields (image, link, address) are carried opaquely.
type Canonical struct {
	ID          string
	SourceTable SourceTable

	// GlobalID links records across tables that describe the same
	// real-world event. Empty when the store has no explicit link.
	GlobalID string

	Title       string
	Description string

	// Civil dates in the canonical timezone. EndDate >= StartDate; it
	// defaults to StartDate when the source has none.
	StartDate time.Time
	EndDate   time.Time

	StartTime string // HH:MM, empty when unknown
	EndTime   string

	Venue   string
	Address string
	Zip     string

	Latitude  *float64
	Longitude *float64
	AreaID    *int64

	ImageURL string
	Link     string

	Status    string
	PriceFlag string
	AgeFlag   string

	// TaggableID is the store identifier used to look up tag
	// associations; empty for records that cannot carry tags.
	TaggableID string
	Tags       []string

	// DistanceMeters is populated only by the nearby resolver. Approx
	// marks an area-centroid fallback rather than a true point distance.
	DistanceMeters *float64
	DistanceApprox bool
}

// HasCoordinates reports whether the event carries an explicit point.
func (c Canonical) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// HasAnyTag reports whether the event carries at least one of the given
// slugs. An empty filter matches everything.
func (c Canonical) HasAnyTag(slugs []string) bool {
	if len(slugs) == 0 {
		return true
	}
	for _, want := range slugs {
		for _, have := range c.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
