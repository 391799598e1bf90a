package mysql

import (
	"context"
	"database/sql"

	domain "github.com/habarihub/mediamon/internal/domain/media"
)

type LinkRepository struct {
	db *sql.DB
}

func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Link associates an item with a project. The pair is the primary key, so
// re-linking is a no-op.
func (r *LinkRepository) Link(ctx context.Context, projectID string, itemID domain.ItemID) error {
	const q = `INSERT IGNORE INTO project_media_items (project_id, media_item_id) VALUES (?,?);`
	_, err := r.db.ExecContext(ctx, q, projectID, itemID)
	return err
}

// ProjectIDsForItem lists every project linked to the item.
func (r *LinkRepository) ProjectIDsForItem(ctx context.Context, itemID domain.ItemID) ([]string, error) {
	const q = `SELECT project_id FROM project_media_items WHERE media_item_id=?;`
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
