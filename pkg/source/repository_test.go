package source

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beebopboop22/ourphil-events/internal/test_utils"
	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

var db *sql.DB

func TestMain(m *testing.M) {
	container, connect := test_utils.TestWithDB()
	db = connect()
	code := m.Run()
	db.Close()
	_ = container.Terminate(context.Background())
	os.Exit(code)
}

func setupRepositoryTest(t *testing.T) (context.Context, *RepositoryImpl, Filter) {
	t.Helper()
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		TRUNCATE taggings, tags, seasonal_events, recurring_events,
		         group_events, groups, big_board_posts, big_board_events,
		         all_events, venues, events, areas
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	cal, err := timewindow.NewCalendar("")
	require.NoError(t, err)

	return ctx, NewRepository(db), Filter{Window: cal.MonthWindow(2025, 6)}
}

func insertArea(t *testing.T, ctx context.Context, name, slug string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO areas (name, slug, latitude, longitude) VALUES ($1, $2, 39.95, -75.16) RETURNING id`,
		name, slug).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestRepositoryImpl_Traditions(t *testing.T) {
	ctx, repo, filter := setupRepositoryTest(t)
	areaId := insertArea(t, ctx, "Center City", "center-city")

	_, err := db.ExecContext(ctx, `
		INSERT INTO events ("E Name", "E Description", "Dates", "End Date", start_time, area_id, global_event_id)
		VALUES ('Flag Day Parade', 'Annual parade', '6/14/2025', '6/14/2025', '10:00', $1, 'gid-parade'),
		       ('Mummers Rehearsal', NULL, '1/1/2026', NULL, NULL, NULL, NULL)`, areaId)
	require.NoError(t, err)

	t.Run("returns every legacy row regardless of window", func(t *testing.T) {
		rows, err := repo.Traditions(ctx, filter)
		require.NoError(t, err)
		require.Len(t, rows, 2, "free-text dates are filtered by the normalizer, not SQL")

		parade := rows[0]
		require.NotNil(t, parade.Name)
		assert.Equal(t, "Flag Day Parade", *parade.Name)
		require.NotNil(t, parade.Dates)
		assert.Equal(t, "6/14/2025", *parade.Dates)
		require.NotNil(t, parade.GlobalEventID)
		assert.Equal(t, "gid-parade", *parade.GlobalEventID)

		rehearsal := rows[1]
		assert.Nil(t, rehearsal.Description)
		assert.Nil(t, rehearsal.AreaID)
	})

	t.Run("area filter narrows the result", func(t *testing.T) {
		scoped := filter
		scoped.AreaID = &areaId
		rows, err := repo.Traditions(ctx, scoped)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Flag Day Parade", *rows[0].Name)
	})
}

func TestRepositoryImpl_AllEvents(t *testing.T) {
	ctx, repo, filter := setupRepositoryTest(t)
	areaId := insertArea(t, ctx, "Fishtown", "fishtown")

	var venueId int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO venues (name, slug, zip, area_id, latitude, longitude)
		VALUES ('Johnny Brenda''s', 'johnny-brendas', '19125', $1, 39.9721, -75.1301) RETURNING id`,
		areaId).Scan(&venueId)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO all_events (name, start_date, end_date, start_time, venue_id, is_free, status)
		VALUES ('Night Market', '2025-06-20', NULL, '18:00', $1, TRUE, 'Scheduled'),
		       ('Spring Fling', '2025-04-01', '2025-04-02', NULL, NULL, NULL, NULL),
		       ('Summer Series', '2025-05-15', '2025-06-05', NULL, NULL, FALSE, NULL)`, venueId)
	require.NoError(t, err)

	t.Run("window filter and venue join", func(t *testing.T) {
		rows, err := repo.AllEvents(ctx, filter)
		require.NoError(t, err)
		require.Len(t, rows, 2, "events outside the window are excluded in SQL")

		series := rows[0]
		assert.Equal(t, "Summer Series", *series.Name)
		assert.Nil(t, series.Venue)

		market := rows[1]
		assert.Equal(t, "Night Market", *market.Name)
		require.NotNil(t, market.IsFree)
		assert.True(t, *market.IsFree)
		require.NotNil(t, market.Venue)
		assert.Equal(t, "Johnny Brenda's", *market.Venue.Name)
		assert.Equal(t, "19125", *market.Venue.Zip)
		assert.Equal(t, areaId, *market.Venue.AreaID)
	})

	t.Run("area filter scopes on the event, not its venue", func(t *testing.T) {
		// Both venues and all_events carry an area_id, so the scoped query
		// must qualify the column across the join. The event below sits in
		// a different area than its venue.
		otherAreaId := insertArea(t, ctx, "South Philly", "south-philly")
		_, err := db.ExecContext(ctx, `
			INSERT INTO all_events (name, start_date, venue_id, area_id)
			VALUES ('Stadium Show', '2025-06-12', $1, $2)`, venueId, otherAreaId)
		require.NoError(t, err)

		scoped := filter
		scoped.AreaID = &otherAreaId
		rows, err := repo.AllEvents(ctx, scoped)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Stadium Show", *rows[0].Name)
		require.NotNil(t, rows[0].Venue)
		assert.Equal(t, areaId, *rows[0].Venue.AreaID, "the venue keeps its own area")
	})
}

func TestRepositoryImpl_BigBoardEvents(t *testing.T) {
	ctx, repo, filter := setupRepositoryTest(t)

	var eventId int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO big_board_events (title, start_date, status)
		VALUES ('Block Party', '2025-06-07', 'scheduled') RETURNING id`).Scan(&eventId)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO big_board_posts (event_id, image_url)
		VALUES ($1, 'big-board/first.jpg'), ($1, 'big-board/second.jpg')`, eventId)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO big_board_events (title, start_date, image_url)
		VALUES ('No Post Event', '2025-06-08', 'https://example.com/direct.jpg')`)
	require.NoError(t, err)

	rows, err := repo.BigBoardEvents(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	party := rows[0]
	assert.Equal(t, "Block Party", *party.Title)
	require.NotNil(t, party.PostImageKey)
	assert.Equal(t, "big-board/first.jpg", *party.PostImageKey, "earliest post wins")

	direct := rows[1]
	assert.Nil(t, direct.PostImageKey)
	assert.Equal(t, "https://example.com/direct.jpg", *direct.ImageURL)
}

func TestRepositoryImpl_GroupEvents(t *testing.T) {
	ctx, repo, filter := setupRepositoryTest(t)

	var groupId int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO groups (name, slug, image_url)
		VALUES ('Run Club', 'run-club', 'groups/run-club.jpg') RETURNING id`).Scan(&groupId)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO group_events (title, start_date, group_id)
		VALUES ('Group Run', '2025-06-15', $1), ('Orphan Meetup', '2025-06-16', NULL)`, groupId)
	require.NoError(t, err)

	rows, err := repo.GroupEvents(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	run := rows[0]
	require.NotNil(t, run.Group)
	assert.Equal(t, "Run Club", *run.Group.Name)
	assert.Equal(t, "groups/run-club.jpg", *run.Group.Image)

	assert.Nil(t, rows[1].Group)
}

func TestRepositoryImpl_RecurringEvents(t *testing.T) {
	ctx, repo, filter := setupRepositoryTest(t)

	_, err := db.ExecContext(ctx, `
		INSERT INTO recurring_events (name, start_date, start_time, rrule, is_active)
		VALUES ('Saturday Run', '2025-06-07', '09:00', 'FREQ=WEEKLY;BYDAY=SA', TRUE),
		       ('Retired Series', '2024-01-01', NULL, 'FREQ=DAILY', FALSE)`)
	require.NoError(t, err)

	rows, err := repo.RecurringEvents(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 1, "inactive series are excluded")
	assert.Equal(t, "Saturday Run", *rows[0].Name)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=SA", *rows[0].RRule)
}

func TestRepositoryImpl_SeasonalEvents(t *testing.T) {
	ctx, repo, filter := setupRepositoryTest(t)

	_, err := db.ExecContext(ctx, `
		INSERT INTO seasonal_events (name, start_date, end_date, location)
		VALUES ('Pop-Up Garden', '2025-05-01', '2025-08-31', 'South Street'),
		       ('Winter Village', '2024-11-15', '2025-01-05', 'City Hall')`)
	require.NoError(t, err)

	rows, err := repo.SeasonalEvents(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 1, "only seasons overlapping the window are returned")
	assert.Equal(t, "Pop-Up Garden", *rows[0].Name)
	assert.Equal(t, "South Street", *rows[0].Location)
}
