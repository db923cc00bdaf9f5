package aggregator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/beebopboop22/ourphil-events/pkg/area"
	"github.com/beebopboop22/ourphil-events/pkg/event"
	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

type EventDTO struct {
	ID             string   `json:"id"`
	Source         string   `json:"source"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	StartTime      string   `json:"startTime,omitempty"`
	EndTime        string   `json:"endTime,omitempty"`
	Venue          string   `json:"venue,omitempty"`
	Address        string   `json:"address,omitempty"`
	Zip            string   `json:"zip,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	Link           string   `json:"link,omitempty"`
	Status         string   `json:"status,omitempty"`
	PriceFlag      string   `json:"priceFlag,omitempty"`
	AgeFlag        string   `json:"ageFlag,omitempty"`
	Tags           []string `json:"tags"`
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
	DistanceApprox bool     `json:"distanceApprox,omitempty"`
}

type Handler struct {
	service Service
	cal     *timewindow.Calendar
}

func NewHandler(service Service, cal *timewindow.Calendar) *Handler {
	return &Handler{service: service, cal: cal}
}

// GetMonth serves GET /api/events?year=&month=.
func (handler *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}

	events, err := handler.service.MonthEvents(r.Context(), year, month, optionsFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeEvents(w, events)
}

// GetWeekend serves GET /api/events/weekend.
func (handler *Handler) GetWeekend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	events, err := handler.service.WeekendEvents(r.Context(), optionsFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeEvents(w, events)
}

// GetDay serves GET /api/events/day?date=.
func (handler *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	date, ok := handler.cal.ParseCivilDate(r.URL.Query().Get("date"))
	if !ok {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	events, err := handler.service.DayEvents(r.Context(), date, optionsFromQuery(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeEvents(w, events)
}

// GetNearby serves GET /api/events/nearby?area=&radius=&limit=&date=.
func (handler *Handler) GetNearby(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := NearbyQuery{AreaSlug: r.URL.Query().Get("area")}
	if query.AreaSlug == "" {
		http.Error(w, "Missing area", http.StatusBadRequest)
		return
	}
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			http.Error(w, "Invalid radius", http.StatusBadRequest)
			return
		}
		query.RadiusMeters = radius
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		query.Limit = limit
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, ok := handler.cal.ParseCivilDate(raw)
		if !ok {
			http.Error(w, "Invalid date", http.StatusBadRequest)
			return
		}
		query.Start = &date
	}

	events, err := handler.service.NearbyEvents(r.Context(), query)
	if err != nil {
		if errors.Is(err, area.ErrAreaNotFound) {
			http.Error(w, "Area not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeEvents(w, events)
}

func optionsFromQuery(r *http.Request) Options {
	var opts Options
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.Tags = append(opts.Tags, strings.ToLower(t))
			}
		}
	}
	return opts
}

func writeEvents(w http.ResponseWriter, events []event.Canonical) {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		log.Errorf("failed to encode events response: %v", err)
	}
}

func EventToDTO(e event.Canonical) EventDTO {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EventDTO{
		ID:             e.ID,
		Source:         string(e.SourceTable),
		Title:          e.Title,
		Description:    e.Description,
		StartDate:      e.StartDate.Format("2006-01-02"),
		EndDate:        e.EndDate.Format("2006-01-02"),
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		Venue:          e.Venue,
		Address:        e.Address,
		Zip:            e.Zip,
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
		ImageURL:       e.ImageURL,
		Link:           e.Link,
		Status:         e.Status,
		PriceFlag:      e.PriceFlag,
		AgeFlag:        e.AgeFlag,
		Tags:           tags,
		DistanceMeters: e.DistanceMeters,
		DistanceApprox: e.DistanceApprox,
	}
}
