package event

import (
	"strings"
)

// MergeKey is the identity used to recognize duplicate events across
// sources. Records the store explicitly links share a global id; everything
// else falls back to a composite of normalized title, civil start date and
// venue/zip token. The fallback is a deliberate heuristic: two distinct
// events with identical title, date and venue text will merge, and minor
// text differences will keep true duplicates apart. Tuning it changes
// precision/recall, not correctness.
func MergeKey(e Canonical) string {
	if e.GlobalID != "" {
		return "gid:" + e.GlobalID
	}
	title := strings.Join(strings.Fields(strings.ToLower(e.Title)), " ")
	venue := e.Venue
	if venue == "" {
		venue = e.Zip
	}
	return "fallback:" + title + "|" + e.StartDate.Format("2006-01-02") + "|" + strings.ToLower(venue)
}

// Dedupe collapses events that share a merge key, keeping the representative
// with the lowest source priority; ties go to the lexicographically smaller
// source table name so the outcome never depends on input order beyond
// first-seen key positions. Output order follows first appearance of each
// key; callers sort afterwards.
func Dedupe(events []Canonical) []Canonical {
	byKey := make(map[string]Canonical, len(events))
	order := make([]string, 0, len(events))

	for _, e := range events {
		key := MergeKey(e)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = e
			order = append(order, key)
			continue
		}
		if wins(e, existing) {
			byKey[key] = e
		}
	}

	out := make([]Canonical, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

func wins(candidate, incumbent Canonical) bool {
	cp, ip := candidate.SourceTable.Priority(), incumbent.SourceTable.Priority()
	if cp != ip {
		return cp < ip
	}
	return candidate.SourceTable < incumbent.SourceTable
}
