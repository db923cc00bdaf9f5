package tag

import (
	"context"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/beebopboop22/ourphil-events/pkg/event"
)

// Attacher enriches deduplicated events with their tag slugs. Lookups are
// batched per source table so the fan-out is bounded by the number of
// distinct tables among the survivors, never by the number of events.
type Attacher struct {
	repo Repository
}

func NewAttacher(repo Repository) *Attacher {
	return &Attacher{repo: repo}
}

// Attach populates the Tags field of every event that can carry tags. Tags
// already present (supplied inline by a normalizer) are kept; lookup results
// are unioned in. A failed lookup for one table leaves that group's events
// with whatever tags they already had and does not affect other groups.
func (a *Attacher) Attach(ctx context.Context, events []event.Canonical) []event.Canonical {
	idsByType := make(map[event.SourceTable]map[string]struct{})
	for _, e := range events {
		if e.TaggableID == "" {
			continue
		}
		ids, ok := idsByType[e.SourceTable]
		if !ok {
			ids = make(map[string]struct{})
			idsByType[e.SourceTable] = ids
		}
		ids[e.TaggableID] = struct{}{}
	}
	if len(idsByType) == 0 {
		return events
	}

	type groupResult struct {
		table    event.SourceTable
		taggings []Tagging
	}

	var wg sync.WaitGroup
	results := make(chan groupResult, len(idsByType))
	for table, idSet := range idsByType {
		ids := make([]string, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		wg.Add(1)
		go func(table event.SourceTable, ids []string) {
			defer wg.Done()
			taggings, err := a.repo.ForTaggables(ctx, table, ids)
			if err != nil {
				log.Errorf("tag lookup failed for %s, continuing without: %v", table, err)
				return
			}
			results <- groupResult{table: table, taggings: taggings}
		}(table, ids)
	}
	wg.Wait()
	close(results)

	slugsByKey := make(map[string][]string)
	for res := range results {
		for _, tagging := range res.taggings {
			slug := strings.ToLower(strings.TrimSpace(tagging.Slug))
			if slug == "" {
				continue
			}
			key := string(res.table) + ":" + tagging.TaggableID
			slugsByKey[key] = append(slugsByKey[key], slug)
		}
	}

	out := make([]event.Canonical, len(events))
	for i, e := range events {
		out[i] = e
		if e.TaggableID == "" {
			continue
		}
		extra := slugsByKey[string(e.SourceTable)+":"+e.TaggableID]
		if len(extra) == 0 {
			continue
		}
		out[i].Tags = unionSlugs(e.Tags, extra)
	}
	return out
}

// unionSlugs merges two slug lists without dropping anything already
// present; output is sorted for deterministic comparisons.
func unionSlugs(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	merged := make([]string, 0, len(existing)+len(extra))
	for _, lists := range [][]string{existing, extra} {
		for _, slug := range lists {
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			merged = append(merged, slug)
		}
	}
	sort.Strings(merged)
	return merged
}
