package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/backend/internal/domain/model"
)

var ErrClosureTemplateNotFound = errors.New("closure template not found")

// ClosureTemplateRepo reads the immutable goodbye-message catalog. This
// service never writes it.
type ClosureTemplateRepo struct {
	pool *pgxpool.Pool
}

func NewClosureTemplateRepo(pool *pgxpool.Pool) *ClosureTemplateRepo {
	return &ClosureTemplateRepo{pool: pool}
}

func (r *ClosureTemplateRepo) List(ctx context.Context) ([]model.ClosureTemplate, error) {
	if r.pool == nil {
		return []model.ClosureTemplate{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, body, sort_order
FROM closure_templates
ORDER BY sort_order ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list closure templates: %w", err)
	}
	defer rows.Close()

	items := make([]model.ClosureTemplate, 0, 8)
	for rows.Next() {
		var tpl model.ClosureTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Body, &tpl.SortOrder); err != nil {
			return nil, fmt.Errorf("scan closure template: %w", err)
		}
		items = append(items, tpl)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate closure templates: %w", rows.Err())
	}

	return items, nil
}

func (r *ClosureTemplateRepo) Get(ctx context.Context, id int64) (model.ClosureTemplate, error) {
	if id <= 0 {
		return model.ClosureTemplate{}, fmt.Errorf("invalid template id")
	}
	if r.pool == nil {
		return model.ClosureTemplate{}, ErrClosureTemplateNotFound
	}

	var tpl model.ClosureTemplate
	err := r.pool.QueryRow(ctx, `
SELECT id, body, sort_order
FROM closure_templates
WHERE id = $1
LIMIT 1
`, id).Scan(&tpl.ID, &tpl.Body, &tpl.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ClosureTemplate{}, ErrClosureTemplateNotFound
		}
		return model.ClosureTemplate{}, fmt.Errorf("get closure template: %w", err)
	}

	return tpl, nil
}
