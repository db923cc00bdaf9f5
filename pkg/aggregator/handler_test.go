package aggregator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beebopboop22/ourphil-events/pkg/area"
	"github.com/beebopboop22/ourphil-events/pkg/event"
	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

// stubService records the last call and serves canned events.
type stubService struct {
	events []event.Canonical
	err    error

	lastYear, lastMonth int
	lastDay             time.Time
	lastOpts            Options
	lastNearby          NearbyQuery
}

func (s *stubService) MonthEvents(ctx context.Context, year, month int, opts Options) ([]event.Canonical, error) {
	s.lastYear, s.lastMonth, s.lastOpts = year, month, opts
	return s.events, s.err
}

func (s *stubService) WeekendEvents(ctx context.Context, opts Options) ([]event.Canonical, error) {
	s.lastOpts = opts
	return s.events, s.err
}

func (s *stubService) DayEvents(ctx context.Context, date time.Time, opts Options) ([]event.Canonical, error) {
	s.lastDay, s.lastOpts = date, opts
	return s.events, s.err
}

func (s *stubService) NearbyEvents(ctx context.Context, q NearbyQuery) ([]event.Canonical, error) {
	s.lastNearby = q
	return s.events, s.err
}

func setupHandlerTest(t *testing.T, service *stubService) *Handler {
	t.Helper()
	cal, err := timewindow.NewCalendar("")
	require.NoError(t, err)
	return NewHandler(service, cal)
}

func sampleEvent() event.Canonical {
	return event.Canonical{
		ID:          "3",
		SourceTable: event.SourceAllEvents,
		Title:       "Night Market",
		StartDate:   time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.June, 20, 23, 59, 59, 999999999, time.UTC),
		StartTime:   "18:00",
		Venue:       "The Piazza",
		Tags:        []string{"food"},
	}
}

func TestGetMonth(t *testing.T) {
	service := &stubService{events: []event.Canonical{sampleEvent()}}
	handler := setupHandlerTest(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/events?year=2025&month=6&tags=Food,%20music", nil)
	w := httptest.NewRecorder()
	handler.GetMonth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, 2025, service.lastYear)
	assert.Equal(t, 6, service.lastMonth)
	assert.Equal(t, []string{"food", "music"}, service.lastOpts.Tags, "tag filter is lower-cased and trimmed")

	var dtos []EventDTO
	err := json.NewDecoder(w.Body).Decode(&dtos)
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "Night Market", dtos[0].Title)
	assert.Equal(t, "all_events", dtos[0].Source)
	assert.Equal(t, "2025-06-20", dtos[0].StartDate)
	assert.Equal(t, "18:00", dtos[0].StartTime)
	assert.Nil(t, dtos[0].DistanceMeters)
}

func TestGetMonth_InvalidParams(t *testing.T) {
	handler := setupHandlerTest(t, &stubService{})

	for _, url := range []string{
		"/api/events",
		"/api/events?year=abc&month=6",
		"/api/events?year=2025&month=13",
		"/api/events?year=2025&month=0",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		handler.GetMonth(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
	}
}

func TestGetWeekend(t *testing.T) {
	service := &stubService{events: []event.Canonical{}}
	handler := setupHandlerTest(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/events/weekend", nil)
	w := httptest.NewRecorder()
	handler.GetWeekend(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var dtos []EventDTO
	err := json.NewDecoder(w.Body).Decode(&dtos)
	require.NoError(t, err)
	assert.Empty(t, dtos)
	assert.NotNil(t, dtos, "empty results serialize as [] not null")
}

func TestGetDay(t *testing.T) {
	service := &stubService{events: []event.Canonical{sampleEvent()}}
	handler := setupHandlerTest(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/events/day?date=2025-06-20", nil)
	w := httptest.NewRecorder()
	handler.GetDay(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2025, service.lastDay.Year())
	assert.Equal(t, time.June, service.lastDay.Month())
	assert.Equal(t, 20, service.lastDay.Day())
}

func TestGetDay_InvalidDate(t *testing.T) {
	handler := setupHandlerTest(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/events/day?date=not-a-date", nil)
	w := httptest.NewRecorder()
	handler.GetDay(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNearby(t *testing.T) {
	withDistance := sampleEvent()
	d := 742.5
	withDistance.DistanceMeters = &d
	withDistance.DistanceApprox = true

	service := &stubService{events: []event.Canonical{withDistance}}
	handler := setupHandlerTest(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/events/nearby?area=fishtown&radius=3000&limit=5", nil)
	w := httptest.NewRecorder()
	handler.GetNearby(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fishtown", service.lastNearby.AreaSlug)
	assert.Equal(t, 3000.0, service.lastNearby.RadiusMeters)
	assert.Equal(t, 5, service.lastNearby.Limit)

	var dtos []EventDTO
	err := json.NewDecoder(w.Body).Decode(&dtos)
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	require.NotNil(t, dtos[0].DistanceMeters)
	assert.Equal(t, 742.5, *dtos[0].DistanceMeters)
	assert.True(t, dtos[0].DistanceApprox)
}

func TestGetNearby_Validation(t *testing.T) {
	handler := setupHandlerTest(t, &stubService{})

	for _, url := range []string{
		"/api/events/nearby",
		"/api/events/nearby?area=fishtown&radius=-5",
		"/api/events/nearby?area=fishtown&radius=abc",
		"/api/events/nearby?area=fishtown&limit=0",
		"/api/events/nearby?area=fishtown&date=garbage",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		handler.GetNearby(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
	}
}

func TestGetNearby_UnknownArea(t *testing.T) {
	handler := setupHandlerTest(t, &stubService{err: area.ErrAreaNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/events/nearby?area=atlantis", nil)
	w := httptest.NewRecorder()
	handler.GetNearby(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
