package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	domain "github.com/habarihub/mediamon/internal/domain/analysis"
	"github.com/habarihub/mediamon/internal/domain/media"
)

func TestAnalysisRepositorySaveMarshalsJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAnalysisRepository(db)
	rec := &domain.Record{
		ID:          "rec-1",
		MediaItemID: "item-1",
		ProjectID:   "proj-1",
		Relevant:    true,
		Confidence:  85,
		Reason:      "direct match",
		ThemeIDs:    []string{"theme-1", "theme-2"},
		ThemeMeta:   []domain.ThemeRef{{ID: "theme-1", Name: "Policy Manipulation"}},
		Fields:      media.ExtractedFields{IndustryName: "Tobacco", Stakeholders: []string{"MoH"}},
		Summary:     "summary",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO media_item_project_analysis").
		WithArgs(
			rec.ID, rec.MediaItemID, rec.ProjectID, rec.Relevant, rec.Confidence, rec.Reason,
			"theme-1,theme-2", // comma-separated for FIND_IN_SET
			`[{"id":"theme-1","name":"Policy Manipulation"}]`,
			sqlmock.AnyArg(), // extracted_fields json
			rec.Summary, rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestAnalysisRepositoryRelevantArticlesUsesLatestRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAnalysisRepository(db)
	rows := sqlmock.NewRows([]string{"id", "raw_title", "url", "raw_text"}).
		AddRow("item-1", "Tax vote postponed", "https://example.com/a", "body a").
		AddRow("item-2", "Lobby spending up", "https://example.com/b", "body b")
	mock.ExpectQuery(`MAX\(created_at\)`).
		WithArgs("proj-1", "proj-1").
		WillReturnRows(rows)

	articles, err := repo.RelevantArticles(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("RelevantArticles: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Tax vote postponed" {
		t.Fatalf("unexpected first article: %+v", articles[0])
	}
}

func TestAnalysisRepositoryListByItemDecodesJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAnalysisRepository(db)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "media_item_id", "project_id", "relevant", "relevance_confidence", "relevance_reason",
		"matched_thematic_area_ids", "matched_thematic_area_meta", "extracted_fields", "summary", "created_at",
	}).AddRow(
		"rec-1", "item-1", "proj-1", true, 85, "match",
		"theme-1,theme-2", `[{"id":"theme-1","name":"Policy Manipulation"}]`,
		`{"industry_name":"Tobacco"}`, "summary", created,
	)
	mock.ExpectQuery("FROM media_item_project_analysis").
		WithArgs("item-1").
		WillReturnRows(rows)

	recs, err := repo.ListByItem(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("ListByItem: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if len(recs[0].ThemeIDs) != 2 || recs[0].ThemeIDs[1] != "theme-2" {
		t.Fatalf("matched_thematic_area_ids not split: %v", recs[0].ThemeIDs)
	}
	if recs[0].ThemeMeta[0].Name != "Policy Manipulation" {
		t.Fatalf("theme_meta not decoded: %+v", recs[0].ThemeMeta)
	}
	if recs[0].Fields.IndustryName != "Tobacco" {
		t.Fatalf("extracted_fields not decoded: %+v", recs[0].Fields)
	}
}
