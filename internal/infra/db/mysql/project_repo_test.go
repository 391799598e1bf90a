package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	domain "github.com/habarihub/mediamon/internal/domain/projects"
)

func TestProjectRepositorySaveReplacesSubscriptions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewProjectRepository(db)
	p := &domain.Project{
		ID:        "proj-1",
		Title:     "Tobacco Control Watch",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO projects").
		WithArgs(p.ID, p.Title, p.Description, p.ClientID, p.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM project_media_sources").
		WithArgs(p.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO project_media_sources").
		WithArgs(p.ID, "src-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO project_media_sources").
		WithArgs(p.ID, "src-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Save(context.Background(), p, []string{"src-1", "src-2"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestProjectRepositorySubscribedTo(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewProjectRepository(db)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "client_id", "created_at"}).
		AddRow("proj-1", "Tobacco Control Watch", "desc", "client-1", created).
		AddRow("proj-2", "Alcohol Policy Monitor", "", nil, created)
	mock.ExpectQuery("JOIN project_media_sources").
		WithArgs("src-1").
		WillReturnRows(rows)

	projects, err := repo.SubscribedTo(context.Background(), "src-1")
	if err != nil {
		t.Fatalf("SubscribedTo: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[1].ClientID != "" {
		t.Fatalf("NULL client_id should scan to empty string")
	}
}

func TestProjectRepositoryDashboardAggregatesFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewProjectRepository(db)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM projects WHERE id=").
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "client_id", "created_at"}).
			AddRow("proj-1", "Watch", "", nil, created))
	mock.ExpectQuery("FROM project_media_items").
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "extracted", "raw"}).AddRow(5, 3, 2))
	mock.ExpectQuery("GROUP BY s.name").
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count"}).AddRow("Daily Nation", 5))
	mock.ExpectQuery(`FIND_IN_SET`).
		WithArgs(domain.ProjectID("proj-1"), domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count"}).AddRow("Policy Manipulation", 2))
	mock.ExpectQuery(`m\.industry_name`).
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"industry_name", "count"}).AddRow("Tobacco", 2))
	mock.ExpectQuery(`m\.industry_tactic`).
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"industry_tactic", "count"}).AddRow("Lobbying", 1))
	mock.ExpectQuery(`m\.geographical_focus`).
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"geographical_focus", "count"}).AddRow("Kenya", 1))
	mock.ExpectQuery(`m\.outcome_impact`).
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"outcome_impact", "count"}))
	mock.ExpectQuery(`m\.stakeholders`).
		WithArgs(domain.ProjectID("proj-1")).
		WillReturnRows(sqlmock.NewRows([]string{"stakeholders"}).
			AddRow("MoH,KRA").
			AddRow("MoH"))

	d, err := repo.Dashboard(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalItems != 5 || d.ExtractedItems != 3 || d.AwaitingItems != 2 {
		t.Fatalf("unexpected counts: %+v", d)
	}
	if len(d.ByTheme) != 1 || d.ByTheme[0].Count != 2 {
		t.Fatalf("unexpected theme rollup: %+v", d.ByTheme)
	}
	if len(d.Industries) != 1 || d.Industries[0].Label != "Tobacco" || d.Industries[0].Count != 2 {
		t.Fatalf("unexpected industry rollup: %+v", d.Industries)
	}
	if len(d.Outcomes) != 0 {
		t.Fatalf("unexpected outcome rollup: %+v", d.Outcomes)
	}
	if len(d.Stakeholders) != 2 || d.Stakeholders[0].Label != "MoH" || d.Stakeholders[0].Count != 2 {
		t.Fatalf("unexpected stakeholder rollup: %+v", d.Stakeholders)
	}
}
