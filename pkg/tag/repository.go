package tag

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/beebopboop22/ourphil-events/pkg/event"
)

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ForTaggables(ctx context.Context, taggableType event.SourceTable, ids []string) ([]Tagging, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(taggableType))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT tg.taggable_id, t.slug
		FROM taggings tg
		JOIN tags t ON t.id = tg.tag_id
		WHERE tg.taggable_type = $1 AND tg.taggable_id IN (%s)`,
		strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query taggings for %s: %w", taggableType, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var out []Tagging
	for rows.Next() {
		var tagging Tagging
		if err := rows.Scan(&tagging.TaggableID, &tagging.Slug); err != nil {
			return nil, fmt.Errorf("could not scan tagging row: %w", err)
		}
		out = append(out, tagging)
	}
	return out, rows.Err()
}
