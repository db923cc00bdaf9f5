package app

import (
	"database/sql"

	"github.com/beebopboop22/ourphil-events/internal/config"
	"github.com/beebopboop22/ourphil-events/pkg/aggregator"
	"github.com/beebopboop22/ourphil-events/pkg/area"
	"github.com/beebopboop22/ourphil-events/pkg/recurrence"
	"github.com/beebopboop22/ourphil-events/pkg/source"
	"github.com/beebopboop22/ourphil-events/pkg/tag"
	"github.com/beebopboop22/ourphil-events/pkg/timewindow"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Calendar *timewindow.Calendar

	SourceRepo source.Repository
	Normalizer *source.Normalizer
	Expander   recurrence.Expander

	TagRepo  tag.Repository
	Attacher *tag.Attacher

	AreaRepo area.Repository

	AggregatorService aggregator.Service
	AggregatorHandler *aggregator.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	cal, err := timewindow.NewCalendar(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	deps.Calendar = cal

	deps.SourceRepo = source.NewRepository(db)
	deps.Normalizer = source.NewNormalizer(cal, cfg.Storage.PublicURL)
	deps.Expander = recurrence.NewRRuleExpander(cal)

	deps.TagRepo = tag.NewRepository(db)
	deps.Attacher = tag.NewAttacher(deps.TagRepo)

	deps.AreaRepo = area.NewRepository(db)

	deps.AggregatorService = aggregator.NewService(
		deps.SourceRepo,
		deps.Normalizer,
		deps.Expander,
		deps.Attacher,
		deps.AreaRepo,
		cal,
		aggregator.NearbyConfig{
			RadiusMeters:  cfg.Nearby.RadiusMeters,
			LookaheadDays: cfg.Nearby.LookaheadDays,
			Limit:         cfg.Nearby.Limit,
		},
	)
	deps.AggregatorHandler = aggregator.NewHandler(deps.AggregatorService, cal)

	return deps, nil
}
