package timewindow

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is the civil timezone all event dates are normalized to,
// regardless of where the server runs.
const DefaultTimezone = "America/New_York"

// Window is a closed interval in the canonical civil timezone.
// Start <= End always holds for windows produced by this package.
type Window struct {
	Start time.Time
	End   time.Time
}

// Calendar converts instants and raw date strings into the canonical civil
// timezone. All methods are pure; a Calendar is safe for concurrent use.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(timezone string) (*Calendar, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("could not load location for timezone %s: %w", timezone, err)
	}
	return &Calendar{loc: loc}, nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Zoned returns t expressed in the canonical timezone. Equal instants yield
// equal results no matter the host locale.
func (c *Calendar) Zoned(t time.Time) time.Time {
	return t.In(c.loc)
}

func (c *Calendar) StartOfDay(t time.Time) time.Time {
	day := t.In(c.loc)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, c.loc)
}

func (c *Calendar) EndOfDay(t time.Time) time.Time {
	day := t.In(c.loc)
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999999999, c.loc)
}

// ParseCivilDate parses an event date value into the start of that civil day.
// Accepted shapes: ISO (2025-06-01), ISO datetime (date portion is used), and
// US slash (6/1/2025, optionally followed by a range separator in which case
// only the first segment counts). Returns false for anything else; it never
// panics on bad data, unparseable dates are expected noise.
func (c *Calendar) ParseCivilDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	if len(trimmed) >= 10 && trimmed[4] == '-' && trimmed[7] == '-' {
		if t, err := time.ParseInLocation("2006-01-02", trimmed[:10], c.loc); err == nil {
			return c.StartOfDay(t), true
		}
		return time.Time{}, false
	}

	segment := firstRangeSegment(trimmed)
	if t, err := time.ParseInLocation("1/2/2006", segment, c.loc); err == nil {
		return c.StartOfDay(t), true
	}
	return time.Time{}, false
}

// firstRangeSegment cuts legacy values like "6/1/2025 - 6/3/2025" down to
// their first date.
func firstRangeSegment(value string) string {
	for _, sep := range []string{" - ", " – ", " — ", " to ", " through ", ","} {
		if idx := strings.Index(value, sep); idx > 0 {
			return strings.TrimSpace(value[:idx])
		}
	}
	return value
}

// MonthWindow spans the first through the last calendar day of the month.
// month is 1-based.
func (c *Calendar) MonthWindow(year int, month int) Window {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, c.loc)
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, c.loc)
	return Window{Start: start, End: c.EndOfDay(last)}
}

// WeekendWindow returns the Friday 00:00 through Sunday 23:59:59.999 span
// containing or following the reference instant. A Saturday reference keeps
// its own weekend; a Sunday reference reaches back to the prior Friday.
func (c *Calendar) WeekendWindow(reference time.Time) Window {
	zoned := c.Zoned(reference)
	friday := c.StartOfDay(zoned)
	switch day := zoned.Weekday(); {
	case day >= time.Monday && day <= time.Thursday:
		friday = friday.AddDate(0, 0, int(time.Friday-day))
	case day == time.Saturday:
		friday = friday.AddDate(0, 0, -1)
	case day == time.Sunday:
		friday = friday.AddDate(0, 0, -2)
	}
	sunday := friday.AddDate(0, 0, 2)
	return Window{Start: friday, End: c.EndOfDay(sunday)}
}

// DayWindow clamps a single civil day.
func (c *Calendar) DayWindow(t time.Time) Window {
	return Window{Start: c.StartOfDay(t), End: c.EndOfDay(t)}
}

// Overlaps reports whether two closed intervals share at least one instant.
// Every fetcher decides window membership through this predicate; single-day
// events (start == end) behave the same as multi-day spans.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return !endA.Before(startB) && !startA.After(endB)
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
