package area

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Area, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, latitude, longitude FROM areas ORDER BY id")
	if err != nil {
		err = fmt.Errorf("could not query areas: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Slug, &a.Latitude, &a.Longitude); err != nil {
			return nil, fmt.Errorf("could not scan areas row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *RepositoryImpl) BySlug(ctx context.Context, slug string) (*Area, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, name, slug, latitude, longitude FROM areas WHERE slug = $1", slug)

	var a Area
	if err := row.Scan(&a.ID, &a.Name, &a.Slug, &a.Latitude, &a.Longitude); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAreaNotFound
		}
		err = fmt.Errorf("could not find area %q: %w", slug, err)
		log.Error(err)
		return nil, err
	}
	return &a, nil
}
