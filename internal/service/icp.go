package service

import (
	"context"
	"fmt"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
	"github.com/jonesrussell/prospect-pipeline/internal/logger"
)

// ICPRepository is the data access interface for ICP configs.
type ICPRepository interface {
	Create(ctx context.Context, cfg *domain.ICPConfig) error
	GetByID(ctx context.Context, id string) (*domain.ICPConfig, error)
	List(ctx context.Context) ([]domain.ICPConfig, error)
	Update(ctx context.Context, cfg *domain.ICPConfig) error
	Delete(ctx context.Context, id string) error
}

// ICPService manages the ideal-customer-profile configs campaigns target.
type ICPService struct {
	repo   ICPRepository
	logger logger.Logger
}

// NewICPService creates a new ICP config service.
func NewICPService(repo ICPRepository, log logger.Logger) *ICPService {
	return &ICPService{repo: repo, logger: log}
}

// Create validates and stores a new ICP config.
func (s *ICPService) Create(ctx context.Context, cfg *domain.ICPConfig) (*domain.ICPConfig, error) {
	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}

	if createErr := s.repo.Create(ctx, cfg); createErr != nil {
		return nil, fmt.Errorf("create icp config: %w", createErr)
	}

	s.logger.Info("icp config created",
		logger.String("icp_config_id", cfg.ID),
		logger.String("kind", string(cfg.Kind)))

	return cfg, nil
}

// Get returns an ICP config by id.
func (s *ICPService) Get(ctx context.Context, id string) (*domain.ICPConfig, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all ICP configs.
func (s *ICPService) List(ctx context.Context) ([]domain.ICPConfig, error) {
	return s.repo.List(ctx)
}

// Update replaces the mutable fields of an ICP config. The kind is fixed at
// creation; campaigns inherit it and changing it would orphan their leads.
func (s *ICPService) Update(ctx context.Context, cfg *domain.ICPConfig) (*domain.ICPConfig, error) {
	existing, getErr := s.repo.GetByID(ctx, cfg.ID)
	if getErr != nil {
		return nil, getErr
	}

	if cfg.Kind != "" && cfg.Kind != existing.Kind {
		return nil, &domain.ValidationError{Field: "kind", Message: "cannot be changed after creation"}
	}
	cfg.Kind = existing.Kind

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}

	if updateErr := s.repo.Update(ctx, cfg); updateErr != nil {
		return nil, updateErr
	}

	s.logger.Info("icp config updated", logger.String("icp_config_id", cfg.ID))

	return s.repo.GetByID(ctx, cfg.ID)
}

// Delete removes an ICP config.
func (s *ICPService) Delete(ctx context.Context, id string) error {
	if deleteErr := s.repo.Delete(ctx, id); deleteErr != nil {
		return deleteErr
	}

	s.logger.Info("icp config deleted", logger.String("icp_config_id", id))

	return nil
}
