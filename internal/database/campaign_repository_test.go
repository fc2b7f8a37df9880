//nolint:testpackage // Testing internal repository requires same package access
package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

func newMockRepo(t *testing.T) (*CampaignRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}

	return NewCampaignRepository(db), mock, func() { db.Close() }
}

func campaignRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "kind", "icp_config_id", "status", "goal",
		"stats_discovered", "stats_enriched", "stats_qualified", "stats_messages_generated",
		"stats_messages_sent", "stats_responses", "stats_conversions",
		"started_at", "created_at", "updated_at",
	})
}

func TestCampaignRepository_Create(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("INSERT INTO campaigns").
		WithArgs(
			sqlmock.AnyArg(), // generated id
			"Dentists SP",
			"dental clinics in Sao Paulo",
			"b2c",
			"icp-1",
			"draft",
			int64(100),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	campaign := &domain.Campaign{
		Name:        "Dentists SP",
		Description: "dental clinics in Sao Paulo",
		Kind:        domain.KindB2C,
		ICPConfigID: "icp-1",
		Goal:        100,
	}

	createErr := repo.Create(context.Background(), campaign)
	if createErr != nil {
		t.Errorf("Create() error = %v", createErr)
	}

	if campaign.ID == "" {
		t.Error("expected Create to assign an id")
	}
	if campaign.Status != domain.StatusDraft {
		t.Errorf("campaign.Status = %s, want draft", campaign.Status)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestCampaignRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery("SELECT").
		WithArgs("missing").
		WillReturnRows(campaignRows())

	_, getErr := repo.GetByID(context.Background(), "missing")
	if !errors.Is(getErr, domain.ErrCampaignNotFound) {
		t.Errorf("GetByID() error = %v, want ErrCampaignNotFound", getErr)
	}
}

func TestCampaignRepository_GetByID(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	rows := campaignRows().AddRow(
		"camp-1", "Dentists SP", "", "b2c", "icp-1", "active", int64(100),
		int64(45), int64(20), int64(0), int64(0), int64(0), int64(0), int64(0),
		now, now, now,
	)

	mock.ExpectQuery("SELECT").
		WithArgs("camp-1").
		WillReturnRows(rows)

	campaign, getErr := repo.GetByID(context.Background(), "camp-1")
	if getErr != nil {
		t.Fatalf("GetByID() error = %v", getErr)
	}

	if campaign.Status != domain.StatusActive {
		t.Errorf("campaign.Status = %s, want active", campaign.Status)
	}
	if campaign.Stats.Discovered != 45 {
		t.Errorf("campaign.Stats.Discovered = %d, want 45", campaign.Stats.Discovered)
	}
	if campaign.StartedAt == nil {
		t.Error("expected started_at to be set")
	}
}

func TestCampaignRepository_UpdateStatus(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE campaigns").
		WithArgs("active", true, "camp-1", "draft").
		WillReturnResult(sqlmock.NewResult(0, 1))

	updateErr := repo.UpdateStatus(context.Background(), "camp-1", domain.StatusDraft, domain.StatusActive, true)
	if updateErr != nil {
		t.Errorf("UpdateStatus() error = %v", updateErr)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestCampaignRepository_UpdateStatus_GuardMismatch(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	// Guard does not match: zero rows updated.
	mock.ExpectExec("UPDATE campaigns").
		WithArgs("active", true, "camp-1", "draft").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Repository re-reads the row to report the actual status.
	now := time.Now().UTC()
	rows := campaignRows().AddRow(
		"camp-1", "Dentists SP", "", "b2c", "icp-1", "active", int64(100),
		int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), int64(0),
		now, now, now,
	)
	mock.ExpectQuery("SELECT").WithArgs("camp-1").WillReturnRows(rows)

	updateErr := repo.UpdateStatus(context.Background(), "camp-1", domain.StatusDraft, domain.StatusActive, true)

	var transitionErr *domain.TransitionError
	if !errors.As(updateErr, &transitionErr) {
		t.Fatalf("UpdateStatus() error = %v, want *TransitionError", updateErr)
	}
	if transitionErr.From != domain.StatusActive {
		t.Errorf("TransitionError.From = %s, want active", transitionErr.From)
	}
}

func TestCampaignRepository_MergeStats(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE campaigns").
		WithArgs(int64(45), int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), "camp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mergeErr := repo.MergeStats(context.Background(), "camp-1", domain.CampaignStats{Discovered: 45})
	if mergeErr != nil {
		t.Errorf("MergeStats() error = %v", mergeErr)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestCampaignRepository_MergeStats_RejectsInvalid(t *testing.T) {
	repo, _, closeDB := newMockRepo(t)
	defer closeDB()

	// enriched > discovered breaks the ordering invariant before any SQL runs.
	mergeErr := repo.MergeStats(context.Background(), "camp-1", domain.CampaignStats{Enriched: 10})
	if mergeErr == nil {
		t.Fatal("MergeStats() expected error for invalid stats, got nil")
	}
}

func TestCampaignRepository_GetStats(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{
		"stats_discovered", "stats_enriched", "stats_qualified", "stats_messages_generated",
		"stats_messages_sent", "stats_responses", "stats_conversions", "goal",
	}).AddRow(int64(45), int64(20), int64(0), int64(0), int64(0), int64(0), int64(0), int64(100))

	mock.ExpectQuery("SELECT").WithArgs("camp-1").WillReturnRows(rows)

	stats, goal, getErr := repo.GetStats(context.Background(), "camp-1")
	if getErr != nil {
		t.Fatalf("GetStats() error = %v", getErr)
	}

	if stats.Discovered != 45 || stats.Enriched != 20 {
		t.Errorf("stats = %+v, want discovered 45 enriched 20", stats)
	}
	if goal != 100 {
		t.Errorf("goal = %d, want 100", goal)
	}
}

func TestCampaignRepository_Delete_CascadesLeads(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM leads_b2b").
		WithArgs("camp-1").
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("DELETE FROM leads_b2c").
		WithArgs("camp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM campaigns").
		WithArgs("camp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleteErr := repo.Delete(context.Background(), "camp-1")
	if deleteErr != nil {
		t.Errorf("Delete() error = %v", deleteErr)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestCampaignRepository_Delete_NotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM leads_b2b").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM leads_b2c").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM campaigns").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	deleteErr := repo.Delete(context.Background(), "missing")
	if !errors.Is(deleteErr, domain.ErrCampaignNotFound) {
		t.Errorf("Delete() error = %v, want ErrCampaignNotFound", deleteErr)
	}
}
