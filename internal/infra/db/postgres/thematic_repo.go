package postgres

import (
	"context"
	"database/sql"

	domain "github.com/habarihub/mediamon/internal/domain/projects"
)

type ThematicAreaRepository struct {
	db *sql.DB
}

func NewThematicAreaRepository(db *sql.DB) *ThematicAreaRepository {
	return &ThematicAreaRepository{db: db}
}

// Save insert/update a thematic area
func (r *ThematicAreaRepository) Save(ctx context.Context, a *domain.ThematicArea) error {
	const q = `
INSERT INTO thematic_areas (id, project_id, name, description, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
 name = EXCLUDED.name, description = EXCLUDED.description;`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.ProjectID, a.Name, a.Description, a.CreatedAt)
	return err
}

// ListByProject returns the project taxonomy
func (r *ThematicAreaRepository) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.ThematicArea, error) {
	const q = `
SELECT id, project_id, name, description, created_at
FROM thematic_areas WHERE project_id=$1 ORDER BY created_at, name;`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ThematicArea
	for rows.Next() {
		var a domain.ThematicArea
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Name, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Delete removes a thematic area by ID
func (r *ThematicAreaRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM thematic_areas WHERE id=$1;`, id)
	return err
}
