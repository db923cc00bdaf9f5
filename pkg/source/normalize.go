package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/beebopboop22/ourphil-events/pkg/event"
	"github.com/beebopboop22/ourphil-events/pkg/recurrence"
	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

// Normalizer maps raw source rows into the canonical event shape. Records
// without a resolvable start date, or outside the active window, are dropped
// here so nothing downstream carries them.
type Normalizer struct {
	cal            *timewindow.Calendar
	storageBaseURL string
}

func NewNormalizer(cal *timewindow.Calendar, storageBaseURL string) *Normalizer {
	return &Normalizer{cal: cal, storageBaseURL: strings.TrimRight(storageBaseURL, "/")}
}

// dateRange resolves start/end civil dates from raw values and tests window
// membership. end defaults to start when absent or unparseable; the end is
// clamped to end-of-day so multi-day spans and single-day events go through
// the same inclusive overlap predicate.
func (n *Normalizer) dateRange(startRaw, endRaw *string, w timewindow.Window) (time.Time, time.Time, bool) {
	start, ok := n.cal.ParseCivilDate(deref(startRaw))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end := start
	if parsed, ok := n.cal.ParseCivilDate(deref(endRaw)); ok && !parsed.Before(start) {
		end = parsed
	}
	end = n.cal.EndOfDay(end)
	if !timewindow.Overlaps(start, end, w.Start, w.End) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Tradition normalizes a legacy events row. Returns nil when the record has
// no usable date or misses the window.
func (n *Normalizer) Tradition(row TraditionRow, w timewindow.Window) *event.Canonical {
	start, end, ok := n.dateRange(row.Dates, row.EndDate, w)
	if !ok {
		return nil
	}
	id := strconv.FormatInt(row.ID, 10)
	return &event.Canonical{
		ID:          id,
		SourceTable: event.SourceTraditions,
		GlobalID:    deref(row.GlobalEventID),
		Title:       deref(row.Name),
		Description: deref(row.Description),
		StartDate:   start,
		EndDate:     end,
		StartTime:   CoerceClock(row.StartTime),
		EndTime:     CoerceClock(row.EndTime),
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		AreaID:      row.AreaID,
		ImageURL:    deref(row.Image),
		Link:        deref(row.Link),
		Status:      event.StatusScheduled,
		TaggableID:  id,
	}
}

func (n *Normalizer) AllEvent(row AllEventRow, w timewindow.Window) *event.Canonical {
	start, end, ok := n.dateRange(row.StartDate, row.EndDate, w)
	if !ok {
		return nil
	}
	id := strconv.FormatInt(row.ID, 10)
	c := &event.Canonical{
		ID:          id,
		SourceTable: event.SourceAllEvents,
		GlobalID:    deref(row.GlobalEventID),
		Title:       deref(row.Name),
		Description: deref(row.Description),
		StartDate:   start,
		EndDate:     end,
		StartTime:   CoerceClock(row.StartTime),
		EndTime:     CoerceClock(row.EndTime),
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		AreaID:      row.AreaID,
		ImageURL:    deref(row.Image),
		Link:        deref(row.Link),
		Status:      CoerceStatus(row.Status),
		PriceFlag:   CoercePrice(nil, row.IsFree),
		AgeFlag:     CoerceAge(row.AgeFlag, nil),
		TaggableID:  id,
	}
	if v := row.Venue; v != nil {
		c.Venue = deref(v.Name)
		if c.Zip == "" {
			c.Zip = deref(v.Zip)
		}
		if c.AreaID == nil {
			c.AreaID = v.AreaID
		}
		if c.Latitude == nil && c.Longitude == nil {
			c.Latitude = v.Latitude
			c.Longitude = v.Longitude
		}
	}
	return c
}

func (n *Normalizer) BigBoard(row BigBoardRow, w timewindow.Window) *event.Canonical {
	start, end, ok := n.dateRange(row.StartDate, row.EndDate, w)
	if !ok {
		return nil
	}
	imageURL := deref(row.ImageURL)
	if imageURL == "" {
		if key := deref(row.PostImageKey); key != "" {
			imageURL = n.storageImageURL("big-board/" + key)
		}
	}
	id := strconv.FormatInt(row.ID, 10)
	return &event.Canonical{
		ID:          id,
		SourceTable: event.SourceBigBoard,
		GlobalID:    deref(row.GlobalEventID),
		Title:       deref(row.Title),
		Description: deref(row.Description),
		StartDate:   start,
		EndDate:     end,
		StartTime:   CoerceClock(row.StartTime),
		EndTime:     CoerceClock(row.EndTime),
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		AreaID:      row.AreaID,
		ImageURL:    imageURL,
		Status:      CoerceStatus(row.Status),
		TaggableID:  id,
	}
}

func (n *Normalizer) GroupEvent(row GroupEventRow, w timewindow.Window) *event.Canonical {
	start, end, ok := n.dateRange(row.StartDate, row.EndDate, w)
	if !ok {
		return nil
	}
	imageURL := deref(row.ImageURL)
	if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
		imageURL = n.storageImageURL(imageURL)
	}
	if imageURL == "" && row.Group != nil {
		imageURL = deref(row.Group.Image)
	}
	id := strconv.FormatInt(row.ID, 10)
	c := &event.Canonical{
		ID:          id,
		SourceTable: event.SourceGroups,
		GlobalID:    deref(row.GlobalEventID),
		Title:       deref(row.Title),
		Description: deref(row.Description),
		StartDate:   start,
		EndDate:     end,
		StartTime:   CoerceClock(row.StartTime),
		EndTime:     CoerceClock(row.EndTime),
		Address:     deref(row.Address),
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		AreaID:      row.AreaID,
		ImageURL:    imageURL,
		Status:      event.StatusScheduled,
		TaggableID:  id,
	}
	if row.Group != nil {
		c.Venue = deref(row.Group.Name)
	}
	return c
}

func (n *Normalizer) Seasonal(row SeasonalRow, w timewindow.Window) *event.Canonical {
	start, end, ok := n.dateRange(row.StartDate, row.EndDate, w)
	if !ok {
		return nil
	}
	id := strconv.FormatInt(row.ID, 10)
	return &event.Canonical{
		ID:          id,
		SourceTable: event.SourceSeasonal,
		GlobalID:    deref(row.GlobalEventID),
		Title:       deref(row.Name),
		Description: deref(row.Description),
		StartDate:   start,
		EndDate:     end,
		Venue:       deref(row.Location),
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		AreaID:      row.AreaID,
		ImageURL:    deref(row.ImageURL),
		Status:      event.StatusScheduled,
		TaggableID:  id,
	}
}

// RecurringSeries expands one recurring row into concrete occurrences inside
// the window. A series that fails to expand contributes nothing and must not
// affect its siblings, so the error is logged here rather than returned.
// Occurrences are single-day records: EndDate equals StartDate's day.
func (n *Normalizer) RecurringSeries(row RecurringRow, w timewindow.Window, expander recurrence.Expander) []event.Canonical {
	series := recurrence.Series{
		ID:         row.ID,
		AnchorDate: deref(row.StartDate),
		AnchorTime: CoerceClock(row.StartTime),
		RRule:      deref(row.RRule),
		Until:      deref(row.EndDate),
	}
	occurrences, err := expander.Expand(series, w)
	if err != nil {
		log.Errorf("skipping recurring series %d: %v", row.ID, err)
		return nil
	}

	out := make([]event.Canonical, 0, len(occurrences))
	taggableID := strconv.FormatInt(row.ID, 10)
	for _, occ := range occurrences {
		day := n.cal.StartOfDay(occ)
		dateStr := day.Format("2006-01-02")
		// The series-level global id is intentionally not copied: each
		// occurrence is its own record and must not collapse with its
		// siblings during dedup.
		out = append(out, event.Canonical{
			ID:          fmt.Sprintf("%d::%s", row.ID, dateStr),
			SourceTable: event.SourceRecurring,
			Title:       deref(row.Name),
			Description: deref(row.Description),
			StartDate:   day,
			EndDate:     n.cal.EndOfDay(day),
			StartTime:   CoerceClock(row.StartTime),
			EndTime:     CoerceClock(row.EndTime),
			Address:     deref(row.Address),
			Latitude:    row.Latitude,
			Longitude:   row.Longitude,
			AreaID:      row.AreaID,
			ImageURL:    deref(row.ImageURL),
			Link:        deref(row.Link),
			Status:      event.StatusScheduled,
			TaggableID:  taggableID,
		})
	}
	return out
}

func (n *Normalizer) storageImageURL(key string) string {
	if key == "" || n.storageBaseURL == "" {
		return ""
	}
	return n.storageBaseURL + "/" + strings.TrimLeft(key, "/")
}
