package tag

import (
	"context"

	"github.com/beebopboop22/ourphil-events/pkg/event"
)

// Tagging links one taggable record to one tag slug.
type Tagging struct {
	TaggableID string
	Slug       string
}

// Repository resolves tag associations for a batch of taggable ids of one
// source table.
type Repository interface {
	ForTaggables(ctx context.Context, taggableType event.SourceTable, ids []string) ([]Tagging, error)
}
