package source

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// RepositoryImpl reads the event tables over the store's Postgres interface.
type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const isoDate = "2006-01-02"

// windowArgs returns the filter's window as ISO date strings, for tables
// whose date columns are ISO and can be pre-filtered in SQL. The normalizer
// re-checks overlap regardless; the SQL filter only bounds the row count.
func windowArgs(f Filter) (string, string) {
	return f.Window.Start.Format(isoDate), f.Window.End.Format(isoDate)
}

// areaClause narrows a query to one area. column carries the qualified
// name; joined queries must qualify it because venues carry an area_id of
// their own.
func areaClause(f Filter, column, query string, args []any) (string, []any) {
	if f.AreaID == nil {
		return query, args
	}
	query += fmt.Sprintf(" AND %s = $%d", column, len(args)+1)
	return query, append(args, *f.AreaID)
}

func (r *RepositoryImpl) Traditions(ctx context.Context, f Filter) ([]TraditionRow, error) {
	// Legacy date columns are free text, so the window is applied by the
	// normalizer, not here.
	query := `
		SELECT id, "E Name", "E Description", "E Image", "E Link", slug,
		       "Dates", "End Date", start_time, end_time,
		       area_id, latitude, longitude, global_event_id
		FROM events
		WHERE TRUE`
	args := []any{}
	query, args = areaClause(f, "area_id", query, args)
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []TraditionRow
	for rows.Next() {
		var row TraditionRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.Image, &row.Link, &row.Slug,
			&row.Dates, &row.EndDate, &row.StartTime, &row.EndTime,
			&row.AreaID, &row.Latitude, &row.Longitude, &row.GlobalEventID); err != nil {
			return nil, fmt.Errorf("could not scan events row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RepositoryImpl) AllEvents(ctx context.Context, f Filter) ([]AllEventRow, error) {
	startIso, endIso := windowArgs(f)
	query := `
		SELECT e.id, e.name, e.description, e.link, e.image, e.slug,
		       e.start_date, e.end_date, e.start_time, e.end_time,
		       e.area_id, e.latitude, e.longitude, e.is_free, e.age_flag,
		       e.status, e.global_event_id,
		       v.name, v.slug, v.zip, v.area_id, v.latitude, v.longitude
		FROM all_events e
		LEFT JOIN venues v ON v.id = e.venue_id
		WHERE e.start_date <= $1 AND (e.end_date >= $2 OR e.end_date IS NULL)`
	args := []any{endIso, startIso}
	query, args = areaClause(f, "e.area_id", query, args)
	query += " ORDER BY e.start_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query all_events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []AllEventRow
	for rows.Next() {
		var row AllEventRow
		var venue VenueRef
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.Link, &row.Image, &row.Slug,
			&row.StartDate, &row.EndDate, &row.StartTime, &row.EndTime,
			&row.AreaID, &row.Latitude, &row.Longitude, &row.IsFree, &row.AgeFlag,
			&row.Status, &row.GlobalEventID,
			&venue.Name, &venue.Slug, &venue.Zip, &venue.AreaID, &venue.Latitude, &venue.Longitude); err != nil {
			return nil, fmt.Errorf("could not scan all_events row: %w", err)
		}
		if venue != (VenueRef{}) {
			row.Venue = &venue
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RepositoryImpl) BigBoardEvents(ctx context.Context, f Filter) ([]BigBoardRow, error) {
	startIso, endIso := windowArgs(f)
	query := `
		SELECT e.id, e.title, e.description, e.slug,
		       e.start_date, e.end_date, e.start_time, e.end_time,
		       e.image_url,
		       (SELECT p.image_url FROM big_board_posts p WHERE p.event_id = e.id ORDER BY p.id LIMIT 1),
		       e.area_id, e.latitude, e.longitude, e.status, e.global_event_id
		FROM big_board_events e
		WHERE e.start_date <= $1 AND (e.end_date >= $2 OR e.end_date IS NULL)`
	args := []any{endIso, startIso}
	query, args = areaClause(f, "e.area_id", query, args)
	query += " ORDER BY e.start_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query big_board_events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []BigBoardRow
	for rows.Next() {
		var row BigBoardRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Description, &row.Slug,
			&row.StartDate, &row.EndDate, &row.StartTime, &row.EndTime,
			&row.ImageURL, &row.PostImageKey,
			&row.AreaID, &row.Latitude, &row.Longitude, &row.Status, &row.GlobalEventID); err != nil {
			return nil, fmt.Errorf("could not scan big_board_events row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RepositoryImpl) GroupEvents(ctx context.Context, f Filter) ([]GroupEventRow, error) {
	startIso, endIso := windowArgs(f)
	query := `
		SELECT e.id, e.title, e.description, e.slug,
		       e.start_date, e.end_date, e.start_time, e.end_time,
		       e.image_url, e.address,
		       e.area_id, e.latitude, e.longitude, e.global_event_id,
		       g.name, g.slug, g.image_url
		FROM group_events e
		LEFT JOIN groups g ON g.id = e.group_id
		WHERE e.start_date <= $1 AND (e.end_date >= $2 OR e.end_date IS NULL)`
	args := []any{endIso, startIso}
	query, args = areaClause(f, "e.area_id", query, args)
	query += " ORDER BY e.start_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query group_events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []GroupEventRow
	for rows.Next() {
		var row GroupEventRow
		var group GroupRef
		if err := rows.Scan(&row.ID, &row.Title, &row.Description, &row.Slug,
			&row.StartDate, &row.EndDate, &row.StartTime, &row.EndTime,
			&row.ImageURL, &row.Address,
			&row.AreaID, &row.Latitude, &row.Longitude, &row.GlobalEventID,
			&group.Name, &group.Slug, &group.Image); err != nil {
			return nil, fmt.Errorf("could not scan group_events row: %w", err)
		}
		if group != (GroupRef{}) {
			row.Group = &group
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RepositoryImpl) RecurringEvents(ctx context.Context, f Filter) ([]RecurringRow, error) {
	// Active series are fetched regardless of window; the expander decides
	// which occurrences fall inside it.
	query := `
		SELECT id, name, description, slug,
		       start_date, end_date, start_time, end_time,
		       rrule, address, link, image_url,
		       area_id, latitude, longitude, global_event_id
		FROM recurring_events
		WHERE is_active = TRUE`
	args := []any{}
	query, args = areaClause(f, "area_id", query, args)
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query recurring_events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []RecurringRow
	for rows.Next() {
		var row RecurringRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.Slug,
			&row.StartDate, &row.EndDate, &row.StartTime, &row.EndTime,
			&row.RRule, &row.Address, &row.Link, &row.ImageURL,
			&row.AreaID, &row.Latitude, &row.Longitude, &row.GlobalEventID); err != nil {
			return nil, fmt.Errorf("could not scan recurring_events row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RepositoryImpl) SeasonalEvents(ctx context.Context, f Filter) ([]SeasonalRow, error) {
	startIso, endIso := windowArgs(f)
	query := `
		SELECT id, name, description, slug,
		       start_date, end_date, image_url, location,
		       area_id, latitude, longitude, global_event_id
		FROM seasonal_events
		WHERE start_date <= $1 AND (end_date >= $2 OR end_date IS NULL)`
	args := []any{endIso, startIso}
	query, args = areaClause(f, "area_id", query, args)
	query += " ORDER BY start_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query seasonal_events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []SeasonalRow
	for rows.Next() {
		var row SeasonalRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.Slug,
			&row.StartDate, &row.EndDate, &row.ImageURL, &row.Location,
			&row.AreaID, &row.Latitude, &row.Longitude, &row.GlobalEventID); err != nil {
			return nil, fmt.Errorf("could not scan seasonal_events row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
