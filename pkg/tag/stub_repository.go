package tag

import (
	"context"
	"sync"

	"github.com/beebopboop22/ourphil-events/pkg/event"
)

// StubRepository answers lookups from an in-memory map keyed by
// "<table>:<taggable id>" and can fail selected tables.
type StubRepository struct {
	Taggings map[string][]string
	Errs     map[event.SourceTable]error

	mu    sync.Mutex
	calls []event.SourceTable
}

func (s *StubRepository) ForTaggables(ctx context.Context, taggableType event.SourceTable, ids []string) ([]Tagging, error) {
	s.mu.Lock()
	s.calls = append(s.calls, taggableType)
	s.mu.Unlock()

	if err := s.Errs[taggableType]; err != nil {
		return nil, err
	}
	var out []Tagging
	for _, id := range ids {
		for _, slug := range s.Taggings[string(taggableType)+":"+id] {
			out = append(out, Tagging{TaggableID: id, Slug: slug})
		}
	}
	return out, nil
}

// Calls returns the source tables looked up so far, one entry per batch.
func (s *StubRepository) Calls() []event.SourceTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.SourceTable(nil), s.calls...)
}
