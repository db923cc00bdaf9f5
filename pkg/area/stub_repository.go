package area

import (
	"context"
)

type StubRepository struct {
	Areas []Area
	Err   error
}

func (s *StubRepository) List(ctx context.Context) ([]Area, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Areas, nil
}

func (s *StubRepository) BySlug(ctx context.Context, slug string) (*Area, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.Areas {
		if a.Slug == slug {
			return &a, nil
		}
	}
	return nil, ErrAreaNotFound
}
