package source

import (
	"context"
	"sync"
)

// StubRepository serves canned rows per source and can simulate a failing
// source, mirroring how a slow or broken table degrades in production.
type StubRepository struct {
	TraditionRows []TraditionRow
	AllEventRows  []AllEventRow
	BigBoardRows  []BigBoardRow
	GroupRows     []GroupEventRow
	RecurringRows []RecurringRow
	SeasonalRows  []SeasonalRow

	// Errs maps a table name to the error its fetch should return.
	Errs map[string]error

	// Calls records fetch invocations in order of completion. Fetches run
	// concurrently, so access goes through the mutex.
	Calls []string

	mu sync.Mutex
}

func (s *StubRepository) fail(table string) error {
	s.mu.Lock()
	s.Calls = append(s.Calls, table)
	s.mu.Unlock()
	if s.Errs == nil {
		return nil
	}
	return s.Errs[table]
}

func (s *StubRepository) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

func (s *StubRepository) Traditions(ctx context.Context, f Filter) ([]TraditionRow, error) {
	if err := s.fail("events"); err != nil {
		return nil, err
	}
	return filterByArea(s.TraditionRows, f, func(r TraditionRow) *int64 { return r.AreaID }), nil
}

func (s *StubRepository) AllEvents(ctx context.Context, f Filter) ([]AllEventRow, error) {
	if err := s.fail("all_events"); err != nil {
		return nil, err
	}
	return filterByArea(s.AllEventRows, f, func(r AllEventRow) *int64 { return r.AreaID }), nil
}

func (s *StubRepository) BigBoardEvents(ctx context.Context, f Filter) ([]BigBoardRow, error) {
	if err := s.fail("big_board_events"); err != nil {
		return nil, err
	}
	return filterByArea(s.BigBoardRows, f, func(r BigBoardRow) *int64 { return r.AreaID }), nil
}

func (s *StubRepository) GroupEvents(ctx context.Context, f Filter) ([]GroupEventRow, error) {
	if err := s.fail("group_events"); err != nil {
		return nil, err
	}
	return filterByArea(s.GroupRows, f, func(r GroupEventRow) *int64 { return r.AreaID }), nil
}

func (s *StubRepository) RecurringEvents(ctx context.Context, f Filter) ([]RecurringRow, error) {
	if err := s.fail("recurring_events"); err != nil {
		return nil, err
	}
	return filterByArea(s.RecurringRows, f, func(r RecurringRow) *int64 { return r.AreaID }), nil
}

func (s *StubRepository) SeasonalEvents(ctx context.Context, f Filter) ([]SeasonalRow, error) {
	if err := s.fail("seasonal_events"); err != nil {
		return nil, err
	}
	return filterByArea(s.SeasonalRows, f, func(r SeasonalRow) *int64 { return r.AreaID }), nil
}

func filterByArea[T any](rows []T, f Filter, areaOf func(T) *int64) []T {
	if f.AreaID == nil {
		return rows
	}
	var out []T
	for _, row := range rows {
		if id := areaOf(row); id != nil && *id == *f.AreaID {
			out = append(out, row)
		}
	}
	return out
}
