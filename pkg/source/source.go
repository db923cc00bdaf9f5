package source

import (
	"context"

	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

// Filter scopes a source fetch. The window is always set; AreaID narrows a
// fetch to one geographic area for nearby lookups.
type Filter struct {
	Window timewindow.Window
	AreaID *int64
}

// Repository is the logical read contract against the hosted store, one
// method per source table. Implementations return raw rows; normalization
// into the canonical shape happens in this package's adapters, never in SQL.
type Repository interface {
	Traditions(ctx context.Context, f Filter) ([]TraditionRow, error)
	AllEvents(ctx context.Context, f Filter) ([]AllEventRow, error)
	BigBoardEvents(ctx context.Context, f Filter) ([]BigBoardRow, error)
	GroupEvents(ctx context.Context, f Filter) ([]GroupEventRow, error)
	RecurringEvents(ctx context.Context, f Filter) ([]RecurringRow, error)
	SeasonalEvents(ctx context.Context, f Filter) ([]SeasonalRow, error)
}

// TraditionRow is the legacy events table. Its date columns are free-text US
// slash dates ("6/1/2025", sometimes a range), so window filtering for this
// source happens entirely at normalization time.
type TraditionRow struct {
	ID            int64
	Name          *string // "E Name"
	Description   *string // "E Description"
	Image         *string // "E Image"
	Link          *string // "E Link"
	Slug          *string
	Dates         *string // start date, US slash format
	EndDate       *string // "End Date", US slash format
	StartTime     *string
	EndTime       *string
	AreaID        *int64
	Latitude      *float64
	Longitude     *float64
	GlobalEventID *string
}

// VenueRef is the venue joined onto an all_events row.
type VenueRef struct {
	Name      *string
	Slug      *string
	Zip       *string
	AreaID    *int64
	Latitude  *float64
	Longitude *float64
}

type AllEventRow struct {
	ID            int64
	Name          *string
	Description   *string
	Link          *string
	Image         *string
	Slug          *string
	StartDate     *string // ISO
	EndDate       *string // ISO
	StartTime     *string
	EndTime       *string
	AreaID        *int64
	Latitude      *float64
	Longitude     *float64
	IsFree        *bool
	AgeFlag       *string
	Status        *string
	GlobalEventID *string
	Venue         *VenueRef
}

type BigBoardRow struct {
	ID            int64
	Title         *string
	Description   *string
	Slug          *string
	StartDate     *string // ISO
	EndDate       *string // ISO
	StartTime     *string
	EndTime       *string
	ImageURL      *string
	PostImageKey  *string // storage key on the linked community post
	AreaID        *int64
	Latitude      *float64
	Longitude     *float64
	Status        *string
	GlobalEventID *string
}

// GroupRef is the owning group joined onto a group_events row.
type GroupRef struct {
	Name  *string
	Slug  *string
	Image *string
}

type GroupEventRow struct {
	ID            int64
	Title         *string
	Description   *string
	Slug          *string
	StartDate     *string // ISO
	EndDate       *string // ISO
	StartTime     *string
	EndTime       *string
	ImageURL      *string
	Address       *string
	AreaID        *int64
	Latitude      *float64
	Longitude     *float64
	GlobalEventID *string
	Group         *GroupRef
}

type RecurringRow struct {
	ID            int64
	Name          *string
	Description   *string
	Slug          *string
	StartDate     *string // ISO anchor date
	EndDate       *string // ISO until date
	StartTime     *string
	EndTime       *string
	RRule         *string
	Address       *string
	Link          *string
	ImageURL      *string
	AreaID        *int64
	Latitude      *float64
	Longitude     *float64
	GlobalEventID *string
}

type SeasonalRow struct {
	ID            int64
	Name          *string
	Description   *string
	Slug          *string
	StartDate     *string // ISO
	EndDate       *string // ISO
	ImageURL      *string
	Location      *string
	AreaID        *int64
	Latitude      *float64
	Longitude     *float64
	GlobalEventID *string
}
