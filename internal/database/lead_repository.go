package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// LeadRepository reads lead records. Leads are written exclusively by the
// external stage processors; this service only observes them.
type LeadRepository struct {
	db *sql.DB
}

// NewLeadRepository creates a new repository with the given database connection.
func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// leadsTable returns the partition table for a campaign kind.
func leadsTable(kind domain.CampaignKind) string {
	if kind == domain.KindB2C {
		return "leads_b2c"
	}
	return "leads_b2b"
}

// ListByCampaign returns all leads for a campaign, newest first.
func (r *LeadRepository) ListByCampaign(ctx context.Context, kind domain.CampaignKind, campaignID string) ([]domain.Lead, error) {
	query := `
		SELECT id, campaign_id, name, company, profession, specialty, city, state,
		       phone, email, website, instagram, linkedin, pipeline_status, score,
		       created_at, updated_at
		FROM ` + leadsTable(kind) + `
		WHERE campaign_id = $1
		ORDER BY created_at DESC
	`

	rows, queryErr := r.db.QueryContext(ctx, query, campaignID)
	if queryErr != nil {
		return nil, fmt.Errorf("query leads: %w", queryErr)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var lead domain.Lead
		var status string

		scanErr := rows.Scan(
			&lead.ID,
			&lead.CampaignID,
			&lead.Name,
			&lead.Company,
			&lead.Profession,
			&lead.Specialty,
			&lead.City,
			&lead.State,
			&lead.Phone,
			&lead.Email,
			&lead.Website,
			&lead.Instagram,
			&lead.LinkedIn,
			&status,
			&lead.Score,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan lead row: %w", scanErr)
		}

		lead.Kind = kind
		lead.PipelineStatus = domain.PipelineStatus(status)
		leads = append(leads, lead)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("lead rows: %w", rowsErr)
	}

	return leads, nil
}

// CountByStatus returns per-pipeline-status lead counts for a campaign.
func (r *LeadRepository) CountByStatus(ctx context.Context, kind domain.CampaignKind, campaignID string) (map[domain.PipelineStatus]int64, error) {
	query := `
		SELECT pipeline_status, COUNT(*)
		FROM ` + leadsTable(kind) + `
		WHERE campaign_id = $1
		GROUP BY pipeline_status
	`

	rows, queryErr := r.db.QueryContext(ctx, query, campaignID)
	if queryErr != nil {
		return nil, fmt.Errorf("query lead counts: %w", queryErr)
	}
	defer rows.Close()

	counts := make(map[domain.PipelineStatus]int64)
	for rows.Next() {
		var status string
		var count int64

		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, fmt.Errorf("scan lead count row: %w", scanErr)
		}

		counts[domain.PipelineStatus(status)] = count
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("lead count rows: %w", rowsErr)
	}

	return counts, nil
}
