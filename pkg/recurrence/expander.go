package recurrence

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

// maxOccurrencesPerSeries caps a single expansion so a malformed or
// unbounded rule cannot flood a query.
const maxOccurrencesPerSeries = 1000

// Series describes one recurring listing as stored: an anchor civil date and
// wall-clock time, the raw RRULE grammar, and an optional end date after
// which no occurrences are produced.
type Series struct {
	ID         int64
	AnchorDate string // YYYY-MM-DD
	AnchorTime string // HH:MM, empty means midnight
	RRule      string
	Until      string // YYYY-MM-DD, empty means open-ended
}

// Expander produces the concrete occurrence dates of a series that fall
// inside a window, boundaries included. Implementations must return an error
// for malformed series instead of panicking; callers isolate failures
// per-series.
type Expander interface {
	Expand(series Series, window timewindow.Window) ([]time.Time, error)
}

// RRuleExpander evaluates RRULE grammar in the canonical civil timezone.
type RRuleExpander struct {
	loc *time.Location
}

func NewRRuleExpander(cal *timewindow.Calendar) *RRuleExpander {
	return &RRuleExpander{loc: cal.Location()}
}

func (e *RRuleExpander) Expand(series Series, window timewindow.Window) ([]time.Time, error) {
	if series.RRule == "" {
		return nil, fmt.Errorf("series %d has no recurrence rule", series.ID)
	}

	opts, err := rrule.StrToROption(series.RRule)
	if err != nil {
		return nil, fmt.Errorf("could not parse rrule %q: %w", series.RRule, err)
	}

	anchor, err := e.parseAnchor(series)
	if err != nil {
		return nil, err
	}
	opts.Dtstart = anchor

	if series.Until != "" {
		until, err := time.ParseInLocation("2006-01-02", series.Until, e.loc)
		if err != nil {
			return nil, fmt.Errorf("could not parse until date %q: %w", series.Until, err)
		}
		opts.Until = time.Date(until.Year(), until.Month(), until.Day(), 23, 59, 59, 0, e.loc)
	}

	rule, err := rrule.NewRRule(*opts)
	if err != nil {
		return nil, fmt.Errorf("could not build rule for series %d: %w", series.ID, err)
	}

	occurrences := rule.Between(window.Start, window.End, true)
	if len(occurrences) > maxOccurrencesPerSeries {
		log.Warnf("series %d produced %d occurrences, capping at %d", series.ID, len(occurrences), maxOccurrencesPerSeries)
		occurrences = occurrences[:maxOccurrencesPerSeries]
	}
	return occurrences, nil
}

func (e *RRuleExpander) parseAnchor(series Series) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", series.AnchorDate, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse anchor date %q: %w", series.AnchorDate, err)
	}
	if series.AnchorTime == "" {
		return date, nil
	}
	clock, err := time.Parse("15:04", series.AnchorTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse anchor time %q: %w", series.AnchorTime, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, e.loc), nil
}
