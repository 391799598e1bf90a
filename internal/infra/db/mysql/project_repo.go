package mysql

import (
	"context"
	"database/sql"
	"sort"

	domain "github.com/habarihub/mediamon/internal/domain/projects"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Save upserts the project and replaces its source subscriptions in one
// transaction.
func (r *ProjectRepository) Save(ctx context.Context, p *domain.Project, sourceIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
INSERT INTO projects (id, title, description, client_id, created_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 title=VALUES(title), description=VALUES(description), client_id=VALUES(client_id);
`
	if _, err := tx.ExecContext(ctx, q, p.ID, p.Title, p.Description, p.ClientID, p.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_media_sources WHERE project_id=?;`, p.ID); err != nil {
		return err
	}
	const link = `INSERT INTO project_media_sources (project_id, source_id) VALUES (?,?);`
	for _, sid := range sourceIDs {
		if _, err := tx.ExecContext(ctx, link, p.ID, sid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get by ID
func (r *ProjectRepository) Get(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	const q = `SELECT id, title, description, client_id, created_at FROM projects WHERE id=? LIMIT 1;`
	var p domain.Project
	var client sql.NullString
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Title, &p.Description, &client, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ClientID = client.String
	return &p, nil
}

// SubscribedTo resolves every project subscribed to a source.
func (r *ProjectRepository) SubscribedTo(ctx context.Context, sourceID string) ([]*domain.Project, error) {
	const q = `
SELECT p.id, p.title, p.description, p.client_id, p.created_at
FROM projects p
JOIN project_media_sources pms ON pms.project_id = p.id
WHERE pms.source_id=?;
`
	rows, err := r.db.QueryContext(ctx, q, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Project
	for rows.Next() {
		var p domain.Project
		var client sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &client, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.ClientID = client.String
		out = append(out, &p)
	}
	return out, rows.Err()
}

// CountAll total registered projects
func (r *ProjectRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects;`).Scan(&n)
	return n, err
}

// Dashboard builds the per-project rollups. Everything except the
// stakeholder tally aggregates in SQL; stakeholders live in one
// comma-separated column and are split and counted here.
func (r *ProjectRepository) Dashboard(ctx context.Context, id domain.ProjectID) (*domain.Dashboard, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &domain.Dashboard{Project: p}

	const counts = `
SELECT COUNT(*),
       COALESCE(SUM(m.analysis_status='extracted'), 0),
       COALESCE(SUM(m.analysis_status='raw'), 0)
FROM project_media_items pmi
JOIN media_items m ON m.id = pmi.media_item_id
WHERE pmi.project_id=?;
`
	if err := r.db.QueryRowContext(ctx, counts, id).Scan(&d.TotalItems, &d.ExtractedItems, &d.AwaitingItems); err != nil {
		return nil, err
	}

	const bySource = `
SELECT COALESCE(s.name, ''), COUNT(*)
FROM project_media_items pmi
JOIN media_items m ON m.id = pmi.media_item_id
LEFT JOIN media_sources s ON s.id = m.source_id
WHERE pmi.project_id=?
GROUP BY s.name ORDER BY COUNT(*) DESC;
`
	d.BySource, err = r.countRows(ctx, bySource, id)
	if err != nil {
		return nil, err
	}

	const byTheme = `
SELECT t.name, COUNT(*)
FROM media_item_project_analysis a
JOIN (
  SELECT media_item_id, MAX(created_at) AS latest
  FROM media_item_project_analysis
  WHERE project_id=?
  GROUP BY media_item_id
) x ON x.media_item_id = a.media_item_id AND x.latest = a.created_at
JOIN thematic_areas t ON FIND_IN_SET(t.id, a.matched_thematic_area_ids)
WHERE a.project_id=? AND a.relevant=1
GROUP BY t.name ORDER BY COUNT(*) DESC, t.name;
`
	d.ByTheme, err = r.countRows(ctx, byTheme, id, id)
	if err != nil {
		return nil, err
	}

	if d.Industries, err = r.fieldCounts(ctx, "industry_name", id); err != nil {
		return nil, err
	}
	if d.Tactics, err = r.fieldCounts(ctx, "industry_tactic", id); err != nil {
		return nil, err
	}
	if d.Geographies, err = r.fieldCounts(ctx, "geographical_focus", id); err != nil {
		return nil, err
	}
	if d.Outcomes, err = r.fieldCounts(ctx, "outcome_impact", id); err != nil {
		return nil, err
	}

	if d.Stakeholders, err = r.stakeholderCounts(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

// fieldCounts groups the project's linked items over one extraction column.
func (r *ProjectRepository) fieldCounts(ctx context.Context, column string, id domain.ProjectID) ([]domain.DashboardCount, error) {
	q := `
SELECT m.` + column + `, COUNT(*)
FROM project_media_items pmi
JOIN media_items m ON m.id = pmi.media_item_id
WHERE pmi.project_id=? AND m.` + column + ` <> ''
GROUP BY m.` + column + ` ORDER BY COUNT(*) DESC, m.` + column + `;
`
	return r.countRows(ctx, q, id)
}

// stakeholderCounts tallies individual names out of the comma-separated
// stakeholders column, the one rollup SQL cannot group directly.
func (r *ProjectRepository) stakeholderCounts(ctx context.Context, id domain.ProjectID) ([]domain.DashboardCount, error) {
	const q = `
SELECT m.stakeholders
FROM project_media_items pmi
JOIN media_items m ON m.id = pmi.media_item_id
WHERE pmi.project_id=? AND m.stakeholders <> '';
`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tally := map[string]int{}
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		for _, name := range splitList(col) {
			tally[name]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return toCounts(tally), nil
}

func (r *ProjectRepository) countRows(ctx context.Context, q string, args ...any) ([]domain.DashboardCount, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DashboardCount
	for rows.Next() {
		var c domain.DashboardCount
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func toCounts(m map[string]int) []domain.DashboardCount {
	out := make([]domain.DashboardCount, 0, len(m))
	for label, n := range m {
		out = append(out, domain.DashboardCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
