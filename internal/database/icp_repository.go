package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// icpTargeting groups the targeting fields stored as a single JSONB column.
type icpTargeting struct {
	Sectors          []string `json:"sectors,omitempty"`
	CompanySizeBands []string `json:"company_size_bands,omitempty"`
	MinCapital       int64    `json:"min_capital,omitempty"`
	MinRevenue       int64    `json:"min_revenue,omitempty"`
	TargetTitles     []string `json:"target_titles,omitempty"`
	Professions      []string `json:"professions,omitempty"`
	Specialties      []string `json:"specialties,omitempty"`
	AffluenceSignals []string `json:"affluence_signals,omitempty"`
	Geography        []string `json:"geography,omitempty"`
}

func targetingOf(cfg *domain.ICPConfig) icpTargeting {
	return icpTargeting{
		Sectors:          cfg.Sectors,
		CompanySizeBands: cfg.CompanySizeBands,
		MinCapital:       cfg.MinCapital,
		MinRevenue:       cfg.MinRevenue,
		TargetTitles:     cfg.TargetTitles,
		Professions:      cfg.Professions,
		Specialties:      cfg.Specialties,
		AffluenceSignals: cfg.AffluenceSignals,
		Geography:        cfg.Geography,
	}
}

func applyTargeting(cfg *domain.ICPConfig, t icpTargeting) {
	cfg.Sectors = t.Sectors
	cfg.CompanySizeBands = t.CompanySizeBands
	cfg.MinCapital = t.MinCapital
	cfg.MinRevenue = t.MinRevenue
	cfg.TargetTitles = t.TargetTitles
	cfg.Professions = t.Professions
	cfg.Specialties = t.Specialties
	cfg.AffluenceSignals = t.AffluenceSignals
	cfg.Geography = t.Geography
}

// ICPConfigRepository handles database operations for ICP configs.
type ICPConfigRepository struct {
	db *sql.DB
}

// NewICPConfigRepository creates a new repository with the given database connection.
func NewICPConfigRepository(db *sql.DB) *ICPConfigRepository {
	return &ICPConfigRepository{db: db}
}

// Create inserts a new ICP config.
func (r *ICPConfigRepository) Create(ctx context.Context, cfg *domain.ICPConfig) error {
	cfg.ID = uuid.New().String()
	cfg.CreatedAt = time.Now().UTC()
	cfg.UpdatedAt = cfg.CreatedAt

	targetingJSON, marshalErr := json.Marshal(targetingOf(cfg))
	if marshalErr != nil {
		return fmt.Errorf("marshal targeting: %w", marshalErr)
	}

	query := `
		INSERT INTO icp_configs (id, name, kind, targeting, min_qualification_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, execErr := r.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.Name,
		string(cfg.Kind),
		targetingJSON,
		cfg.MinQualificationScore,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if execErr != nil {
		return fmt.Errorf("insert icp config: %w", execErr)
	}

	return nil
}

// GetByID returns the ICP config with the given id, or ErrICPConfigNotFound.
func (r *ICPConfigRepository) GetByID(ctx context.Context, id string) (*domain.ICPConfig, error) {
	query := `
		SELECT id, name, kind, targeting, min_qualification_score, created_at, updated_at
		FROM icp_configs
		WHERE id = $1
	`

	var cfg domain.ICPConfig
	var kind string
	var targetingJSON []byte

	scanErr := r.db.QueryRowContext(ctx, query, id).Scan(
		&cfg.ID,
		&cfg.Name,
		&kind,
		&targetingJSON,
		&cfg.MinQualificationScore,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return nil, domain.ErrICPConfigNotFound
	}
	if scanErr != nil {
		return nil, fmt.Errorf("query icp config: %w", scanErr)
	}

	cfg.Kind = domain.CampaignKind(kind)

	var targeting icpTargeting
	if unmarshalErr := json.Unmarshal(targetingJSON, &targeting); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal targeting: %w", unmarshalErr)
	}
	applyTargeting(&cfg, targeting)

	return &cfg, nil
}

// List returns all ICP configs ordered by name.
func (r *ICPConfigRepository) List(ctx context.Context) ([]domain.ICPConfig, error) {
	query := `
		SELECT id, name, kind, targeting, min_qualification_score, created_at, updated_at
		FROM icp_configs
		ORDER BY name
	`

	rows, queryErr := r.db.QueryContext(ctx, query)
	if queryErr != nil {
		return nil, fmt.Errorf("query icp configs: %w", queryErr)
	}
	defer rows.Close()

	var configs []domain.ICPConfig
	for rows.Next() {
		var cfg domain.ICPConfig
		var kind string
		var targetingJSON []byte

		scanErr := rows.Scan(
			&cfg.ID,
			&cfg.Name,
			&kind,
			&targetingJSON,
			&cfg.MinQualificationScore,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan icp config row: %w", scanErr)
		}

		cfg.Kind = domain.CampaignKind(kind)

		var targeting icpTargeting
		if unmarshalErr := json.Unmarshal(targetingJSON, &targeting); unmarshalErr != nil {
			return nil, fmt.Errorf("unmarshal targeting: %w", unmarshalErr)
		}
		applyTargeting(&cfg, targeting)

		configs = append(configs, cfg)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("icp config rows: %w", rowsErr)
	}

	return configs, nil
}

// Update replaces the mutable fields of an ICP config.
func (r *ICPConfigRepository) Update(ctx context.Context, cfg *domain.ICPConfig) error {
	targetingJSON, marshalErr := json.Marshal(targetingOf(cfg))
	if marshalErr != nil {
		return fmt.Errorf("marshal targeting: %w", marshalErr)
	}

	query := `
		UPDATE icp_configs
		SET name = $1, targeting = $2, min_qualification_score = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, execErr := r.db.ExecContext(ctx, query,
		cfg.Name,
		targetingJSON,
		cfg.MinQualificationScore,
		cfg.ID,
	)
	if execErr != nil {
		return fmt.Errorf("update icp config: %w", execErr)
	}

	affected, affErr := result.RowsAffected()
	if affErr != nil {
		return fmt.Errorf("update icp config rows: %w", affErr)
	}
	if affected == 0 {
		return domain.ErrICPConfigNotFound
	}

	return nil
}

// Delete removes an ICP config. Campaigns referencing it keep their snapshot
// of the reference id; kind immutability is enforced at campaign creation.
func (r *ICPConfigRepository) Delete(ctx context.Context, id string) error {
	result, execErr := r.db.ExecContext(ctx, `DELETE FROM icp_configs WHERE id = $1`, id)
	if execErr != nil {
		return fmt.Errorf("delete icp config: %w", execErr)
	}

	affected, affErr := result.RowsAffected()
	if affErr != nil {
		return fmt.Errorf("delete icp config rows: %w", affErr)
	}
	if affected == 0 {
		return domain.ErrICPConfigNotFound
	}

	return nil
}
