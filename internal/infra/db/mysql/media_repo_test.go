package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	domain "github.com/habarihub/mediamon/internal/domain/media"
)

func TestMediaRepositorySaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewMediaRepository(db)
	published := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	item := &domain.MediaItem{
		ID:          "item-1",
		SourceID:    "src-1",
		RawTitle:    "Title",
		RawText:     "Body",
		URL:         "https://example.com/a",
		PublishedAt: &published,
		ScrapedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Status:      domain.StatusRaw,
	}

	mock.ExpectExec("INSERT INTO media_items").
		WithArgs(
			item.ID, item.SourceID, item.RawTitle, item.RawText, item.URL,
			item.PublishedAt, item.ScrapedAt,
			"", "", "", "", "", "", // extraction columns start empty
			item.ArchiveURL, item.Status,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), item); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMediaRepositoryFindByURLAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewMediaRepository(db)
	mock.ExpectQuery("FROM media_items WHERE url=").
		WithArgs("https://example.com/missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "source_id", "raw_title", "raw_text", "url", "published_at",
			"scraped_at", "industry_name", "industry_tactic", "stakeholders",
			"targeted_policy", "geographical_focus", "outcome_impact",
			"archive_url", "analysis_status",
		}))

	item, err := repo.FindByURL(context.Background(), "https://example.com/missing")
	if err != nil {
		t.Fatalf("FindByURL: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item for unknown url, got %+v", item)
	}
}

func TestMediaRepositoryFindByURLFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewMediaRepository(db)
	scraped := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "source_id", "raw_title", "raw_text", "url", "published_at",
		"scraped_at", "industry_name", "industry_tactic", "stakeholders",
		"targeted_policy", "geographical_focus", "outcome_impact",
		"archive_url", "analysis_status",
	}).AddRow(
		"item-1", "src-1", "Title", "Body", "https://example.com/a", nil,
		scraped, "Tobacco", "Lobbying", "MoH, WHO FCTC Secretariat", "", "Kenya", "", "", "extracted",
	)
	mock.ExpectQuery("FROM media_items WHERE url=").
		WithArgs("https://example.com/a").
		WillReturnRows(rows)

	item, err := repo.FindByURL(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("FindByURL: %v", err)
	}
	if item == nil || item.ID != "item-1" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Fields.IndustryName != "Tobacco" {
		t.Fatalf("extraction columns not scanned: %+v", item.Fields)
	}
	if len(item.Fields.Stakeholders) != 2 || item.Fields.Stakeholders[1] != "WHO FCTC Secretariat" {
		t.Fatalf("stakeholders column not split: %v", item.Fields.Stakeholders)
	}
	if item.PublishedAt != nil {
		t.Fatalf("expected nil published_at")
	}
}

func TestMediaRepositoryUpdateExtraction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewMediaRepository(db)
	mock.ExpectExec("UPDATE media_items SET").
		WithArgs(
			"Tobacco", "Lobbying", "MoH,Parliament", "Excise Tax Bill", "Kenya", "Bill delayed",
			domain.StatusExtracted, domain.ItemID("item-1"),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	fields := domain.ExtractedFields{
		IndustryName:      "Tobacco",
		IndustryTactic:    "Lobbying",
		Stakeholders:      []string{"MoH", "Parliament"},
		TargetedPolicy:    "Excise Tax Bill",
		GeographicalFocus: "Kenya",
		OutcomeImpact:     "Bill delayed",
	}
	if err := repo.UpdateExtraction(context.Background(), "item-1", fields, domain.StatusExtracted); err != nil {
		t.Fatalf("UpdateExtraction: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMediaRepositoryStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewMediaRepository(db)
	mock.ExpectQuery("FROM media_items").
		WillReturnRows(sqlmock.NewRows([]string{"total", "raw", "extracted"}).AddRow(10, 4, 6))

	st, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 10 || st.Raw != 4 || st.Extracted != 6 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestLinkRepositoryLinkIsIdempotentInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewLinkRepository(db)
	mock.ExpectExec("INSERT IGNORE INTO project_media_items").
		WithArgs("proj-1", domain.ItemID("item-1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// second link of the same pair affects no rows and is still fine
	mock.ExpectExec("INSERT IGNORE INTO project_media_items").
		WithArgs("proj-1", domain.ItemID("item-1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Link(context.Background(), "proj-1", "item-1"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := repo.Link(context.Background(), "proj-1", "item-1"); err != nil {
		t.Fatalf("Link (repeat): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
