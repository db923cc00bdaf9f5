package area

import (
	"context"
	"errors"
)

var ErrAreaNotFound = errors.New("area not found")

// Area is a named geographic region. Its centroid serves as a coarse
// location fallback for events that carry an area reference but no
// coordinates of their own.
type Area struct {
	ID        int64
	Name      string
	Slug      string
	Latitude  *float64
	Longitude *float64
}

func (a Area) HasCentroid() bool {
	return a.Latitude != nil && a.Longitude != nil
}

type Repository interface {
	List(ctx context.Context) ([]Area, error)
	BySlug(ctx context.Context, slug string) (*Area, error)
}

// MetaMap indexes areas by id for centroid lookups.
func MetaMap(areas []Area) map[int64]Area {
	meta := make(map[int64]Area, len(areas))
	for _, a := range areas {
		meta[a.ID] = a
	}
	return meta
}
