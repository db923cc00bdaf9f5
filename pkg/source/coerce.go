package source

import (
	"regexp"
	"strings"

	"github.com/beebopboop22/ourphil-events/pkg/event"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(:\d{2})?$`)

// CoerceClock normalizes a time-of-day value to HH:MM. Values that do not
// look like a clock time pass through trimmed so the store's oddities stay
// visible downstream instead of silently vanishing.
func CoerceClock(value *string) string {
	if value == nil {
		return ""
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return ""
	}
	m := clockPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return trimmed
	}
	hour := m[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	return hour + ":" + m[2]
}

// CoercePrice maps the store's mixed price representations (boolean is_free
// columns, "0", "free", arbitrary text) onto the closed free/paid vocabulary,
// passing unrecognized text through.
func CoercePrice(flag *string, isFree *bool) string {
	if isFree != nil {
		if *isFree {
			return event.PriceFree
		}
		return event.PricePaid
	}
	if flag == nil {
		return ""
	}
	trimmed := strings.TrimSpace(*flag)
	if trimmed == "" {
		return ""
	}
	if trimmed == "0" || strings.EqualFold(trimmed, event.PriceFree) {
		return event.PriceFree
	}
	return trimmed
}

// CoerceAge maps age restriction flags onto the all-ages marker, passing
// other text through.
func CoerceAge(flag *string, allAges *bool) string {
	if allAges != nil {
		if *allAges {
			return event.AgeAll
		}
		return ""
	}
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

// CoerceStatus lower-cases the store status and defaults to scheduled.
func CoerceStatus(value *string) string {
	if value == nil {
		return event.StatusScheduled
	}
	trimmed := strings.ToLower(strings.TrimSpace(*value))
	if trimmed == "" {
		return event.StatusScheduled
	}
	return trimmed
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
