package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// campaignColumns is the column list shared by campaign queries.
const campaignColumns = `
	id, name, description, kind, icp_config_id, status, goal,
	stats_discovered, stats_enriched, stats_qualified, stats_messages_generated,
	stats_messages_sent, stats_responses, stats_conversions,
	started_at, created_at, updated_at`

// CampaignRepository handles database operations for campaigns.
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new repository with the given database connection.
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Ping checks database connectivity.
func (r *CampaignRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create inserts a new campaign in draft status with zeroed stats.
func (r *CampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	campaign.ID = uuid.New().String()
	campaign.Status = domain.StatusDraft
	campaign.CreatedAt = time.Now().UTC()
	campaign.UpdatedAt = campaign.CreatedAt

	query := `
		INSERT INTO campaigns (id, name, description, kind, icp_config_id, status, goal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, execErr := r.db.ExecContext(ctx, query,
		campaign.ID,
		campaign.Name,
		campaign.Description,
		string(campaign.Kind),
		campaign.ICPConfigID,
		string(campaign.Status),
		campaign.Goal,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if execErr != nil {
		return fmt.Errorf("insert campaign: %w", execErr)
	}

	return nil
}

// GetByID returns the campaign with the given id, or ErrCampaignNotFound.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query := `SELECT` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, scanErr := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(scanErr, sql.ErrNoRows) {
		return nil, domain.ErrCampaignNotFound
	}
	if scanErr != nil {
		return nil, fmt.Errorf("query campaign: %w", scanErr)
	}

	return campaign, nil
}

// List returns all campaigns ordered by creation time, newest first.
func (r *CampaignRepository) List(ctx context.Context) ([]domain.Campaign, error) {
	query := `SELECT` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC`

	rows, queryErr := r.db.QueryContext(ctx, query)
	if queryErr != nil {
		return nil, fmt.Errorf("query campaigns: %w", queryErr)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		campaign, scanErr := scanCampaign(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan campaign row: %w", scanErr)
		}
		campaigns = append(campaigns, *campaign)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("campaign rows: %w", rowsErr)
	}

	return campaigns, nil
}

// UpdateStatus transitions a campaign from one status to another. The current
// status is part of the WHERE clause so a concurrent transition loses the race
// instead of clobbering state. When markStarted is true and started_at is
// still null it is set to now. Returns a TransitionError when the guard does
// not match, or ErrCampaignNotFound when the campaign does not exist.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id string, from, to domain.CampaignStatus, markStarted bool) error {
	query := `
		UPDATE campaigns
		SET status = $1,
		    started_at = CASE WHEN $2 AND started_at IS NULL THEN NOW() ELSE started_at END,
		    updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, execErr := r.db.ExecContext(ctx, query, string(to), markStarted, id, string(from))
	if execErr != nil {
		return fmt.Errorf("update campaign status: %w", execErr)
	}

	affected, affErr := result.RowsAffected()
	if affErr != nil {
		return fmt.Errorf("update campaign status rows: %w", affErr)
	}

	if affected == 0 {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		return &domain.TransitionError{CampaignID: id, From: current.Status, To: to}
	}

	return nil
}

// MergeStats merges incoming counters into the campaign's stats row. GREATEST
// keeps every counter monotonic regardless of how observations land.
func (r *CampaignRepository) MergeStats(ctx context.Context, id string, incoming domain.CampaignStats) error {
	if validateErr := incoming.Validate(); validateErr != nil {
		return fmt.Errorf("merge stats: %w", validateErr)
	}

	query := `
		UPDATE campaigns
		SET stats_discovered         = GREATEST(stats_discovered, $1),
		    stats_enriched           = GREATEST(stats_enriched, $2),
		    stats_qualified          = GREATEST(stats_qualified, $3),
		    stats_messages_generated = GREATEST(stats_messages_generated, $4),
		    stats_messages_sent      = GREATEST(stats_messages_sent, $5),
		    stats_responses          = GREATEST(stats_responses, $6),
		    stats_conversions        = GREATEST(stats_conversions, $7),
		    updated_at               = NOW()
		WHERE id = $8
	`

	result, execErr := r.db.ExecContext(ctx, query,
		incoming.Discovered,
		incoming.Enriched,
		incoming.Qualified,
		incoming.MessagesGenerated,
		incoming.MessagesSent,
		incoming.Responses,
		incoming.Conversions,
		id,
	)
	if execErr != nil {
		return fmt.Errorf("merge campaign stats: %w", execErr)
	}

	affected, affErr := result.RowsAffected()
	if affErr != nil {
		return fmt.Errorf("merge campaign stats rows: %w", affErr)
	}
	if affected == 0 {
		return domain.ErrCampaignNotFound
	}

	return nil
}

// GetStats returns only the stats counters and goal for a campaign. Used by
// the progress poller on every tick.
func (r *CampaignRepository) GetStats(ctx context.Context, id string) (domain.CampaignStats, int64, error) {
	query := `
		SELECT stats_discovered, stats_enriched, stats_qualified, stats_messages_generated,
		       stats_messages_sent, stats_responses, stats_conversions, goal
		FROM campaigns
		WHERE id = $1
	`

	var stats domain.CampaignStats
	var goal int64

	scanErr := r.db.QueryRowContext(ctx, query, id).Scan(
		&stats.Discovered,
		&stats.Enriched,
		&stats.Qualified,
		&stats.MessagesGenerated,
		&stats.MessagesSent,
		&stats.Responses,
		&stats.Conversions,
		&goal,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return domain.CampaignStats{}, 0, domain.ErrCampaignNotFound
	}
	if scanErr != nil {
		return domain.CampaignStats{}, 0, fmt.Errorf("query campaign stats: %w", scanErr)
	}

	return stats, goal, nil
}

// Delete removes a campaign and all of its leads in one transaction.
// Irreversible; the campaign is never resurrected.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	tx, txErr := r.db.BeginTx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("begin delete tx: %w", txErr)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"leads_b2b", "leads_b2c"} {
		if _, execErr := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE campaign_id = $1`, id); execErr != nil {
			return fmt.Errorf("delete %s: %w", table, execErr)
		}
	}

	result, execErr := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if execErr != nil {
		return fmt.Errorf("delete campaign: %w", execErr)
	}

	affected, affErr := result.RowsAffected()
	if affErr != nil {
		return fmt.Errorf("delete campaign rows: %w", affErr)
	}
	if affected == 0 {
		return domain.ErrCampaignNotFound
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit delete tx: %w", commitErr)
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCampaign.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var campaign domain.Campaign
	var kind, status string
	var startedAt sql.NullTime

	scanErr := row.Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Description,
		&kind,
		&campaign.ICPConfigID,
		&status,
		&campaign.Goal,
		&campaign.Stats.Discovered,
		&campaign.Stats.Enriched,
		&campaign.Stats.Qualified,
		&campaign.Stats.MessagesGenerated,
		&campaign.Stats.MessagesSent,
		&campaign.Stats.Responses,
		&campaign.Stats.Conversions,
		&startedAt,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if scanErr != nil {
		return nil, scanErr
	}

	campaign.Kind = domain.CampaignKind(kind)
	campaign.Status = domain.CampaignStatus(status)
	if startedAt.Valid {
		campaign.StartedAt = &startedAt.Time
	}

	return &campaign, nil
}
