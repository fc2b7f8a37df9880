// Package service contains the campaign orchestration logic: lifecycle
// transitions, stage invocations and progress reporting.
package service

import (
	"context"
	"fmt"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
	"github.com/jonesrussell/prospect-pipeline/internal/events"
	"github.com/jonesrussell/prospect-pipeline/internal/logger"
	"github.com/jonesrussell/prospect-pipeline/internal/processor"
)

// Repository is the data access interface for campaigns.
type Repository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.CampaignStatus, markStarted bool) error
	MergeStats(ctx context.Context, id string, incoming domain.CampaignStats) error
	GetStats(ctx context.Context, id string) (domain.CampaignStats, int64, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// ICPReader resolves ICP configs referenced by campaigns.
type ICPReader interface {
	GetByID(ctx context.Context, id string) (*domain.ICPConfig, error)
}

// LeadReader lists the leads a campaign has accumulated.
type LeadReader interface {
	ListByCampaign(ctx context.Context, kind domain.CampaignKind, campaignID string) ([]domain.Lead, error)
	CountByStatus(ctx context.Context, kind domain.CampaignKind, campaignID string) (map[domain.PipelineStatus]int64, error)
}

// StageClient invokes the external stage processors.
type StageClient interface {
	Enabled(stage domain.Stage) bool
	Run(ctx context.Context, stage domain.Stage, req processor.StageRequest) (*processor.StageResponse, error)
}

// ProgressWaiter blocks until a stage counter moves past a baseline.
type ProgressWaiter interface {
	WaitForProgress(ctx context.Context, campaignID string, stage domain.Stage, baseline int64) (domain.CampaignStats, error)
}

// Orchestrator drives campaigns through their lifecycle and hands batches of
// leads to the external stage processors.
type Orchestrator struct {
	repo       Repository
	icps       ICPReader
	leads      LeadReader
	stages     StageClient
	waiter     ProgressWaiter
	publisher  *events.Publisher
	logger     logger.Logger
	batchLimit int64
}

// NewOrchestrator creates a new campaign orchestrator. The publisher may be
// nil, in which case lifecycle events are not emitted. batchLimit caps a
// single stage invocation.
func NewOrchestrator(
	repo Repository,
	icps ICPReader,
	leads LeadReader,
	stages StageClient,
	waiter ProgressWaiter,
	publisher *events.Publisher,
	log logger.Logger,
	batchLimit int64,
) *Orchestrator {
	return &Orchestrator{
		repo:       repo,
		icps:       icps,
		leads:      leads,
		stages:     stages,
		waiter:     waiter,
		publisher:  publisher,
		logger:     log,
		batchLimit: batchLimit,
	}
}

// CreateCampaign validates the request, resolves the referenced ICP config
// and creates the campaign in draft status. The campaign's kind is inherited
// from the ICP config and fixed for the campaign's lifetime.
func (o *Orchestrator) CreateCampaign(ctx context.Context, req *domain.CreateCampaignRequest) (*domain.Campaign, error) {
	if validateErr := req.Validate(); validateErr != nil {
		return nil, validateErr
	}

	icp, icpErr := o.icps.GetByID(ctx, req.ICPConfigID)
	if icpErr != nil {
		return nil, fmt.Errorf("resolve icp config: %w", icpErr)
	}

	campaign := &domain.Campaign{
		Name:        req.Name,
		Description: req.Description,
		Kind:        icp.Kind,
		ICPConfigID: icp.ID,
		Goal:        req.Goal,
	}

	if createErr := o.repo.Create(ctx, campaign); createErr != nil {
		return nil, fmt.Errorf("create campaign: %w", createErr)
	}

	o.logger.Info("campaign created",
		logger.String("campaign_id", campaign.ID),
		logger.String("kind", string(campaign.Kind)),
		logger.Int64("goal", campaign.Goal))

	o.publisher.PublishAsync(events.CampaignEvent{
		EventType:  events.CampaignCreated,
		CampaignID: campaign.ID,
	})

	return campaign, nil
}

// GetCampaign returns a campaign by id.
func (o *Orchestrator) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return o.repo.GetByID(ctx, id)
}

// ListCampaigns returns all campaigns, newest first.
func (o *Orchestrator) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	return o.repo.List(ctx)
}

// StartCampaign activates a draft or paused campaign and kicks off discovery.
// Unlike ResumeCampaign, starting a paused campaign re-triggers discovery. If
// the discovery processor rejects the call the status change is rolled back so
// a failed start leaves the campaign where it was.
func (o *Orchestrator) StartCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	campaign, getErr := o.repo.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	prior := campaign.Status
	if prior != domain.StatusDraft && prior != domain.StatusPaused {
		return nil, &domain.TransitionError{CampaignID: id, From: prior, To: domain.StatusActive}
	}

	if updateErr := o.repo.UpdateStatus(ctx, id, prior, domain.StatusActive, true); updateErr != nil {
		return nil, updateErr
	}

	if o.stages.Enabled(domain.StageDiscovery) {
		// Without a goal the first batch falls back to the configured cap.
		limit := campaign.Goal
		if limit <= 0 {
			limit = o.batchLimit
		}

		_, runErr := o.stages.Run(ctx, domain.StageDiscovery, processor.StageRequest{
			CampaignID:  id,
			ICPConfigID: campaign.ICPConfigID,
			Limit:       limit,
		})
		if runErr != nil {
			// Roll back so the user can retry the start cleanly.
			if rollbackErr := o.repo.UpdateStatus(ctx, id, domain.StatusActive, prior, false); rollbackErr != nil {
				o.logger.Error("start rollback failed",
					logger.String("campaign_id", id),
					logger.Error(rollbackErr))
			}

			return nil, &domain.RemoteProcessingError{Stage: domain.StageDiscovery, Err: runErr}
		}
	}

	o.logger.Info("campaign started", logger.String("campaign_id", id))

	o.publisher.PublishAsync(events.CampaignEvent{
		EventType:  events.CampaignStarted,
		CampaignID: id,
	})

	return o.repo.GetByID(ctx, id)
}

// PauseCampaign suspends an active campaign. Running processor batches are
// not interrupted; their results still land through the stats merge.
func (o *Orchestrator) PauseCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	if updateErr := o.repo.UpdateStatus(ctx, id, domain.StatusActive, domain.StatusPaused, false); updateErr != nil {
		return nil, updateErr
	}

	o.logger.Info("campaign paused", logger.String("campaign_id", id))

	o.publisher.PublishAsync(events.CampaignEvent{
		EventType:  events.CampaignPaused,
		CampaignID: id,
	})

	return o.repo.GetByID(ctx, id)
}

// ResumeCampaign reactivates a paused campaign. Discovery is not re-run;
// work continues from the stats the campaign already has.
func (o *Orchestrator) ResumeCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	if updateErr := o.repo.UpdateStatus(ctx, id, domain.StatusPaused, domain.StatusActive, false); updateErr != nil {
		return nil, updateErr
	}

	o.logger.Info("campaign resumed", logger.String("campaign_id", id))

	o.publisher.PublishAsync(events.CampaignEvent{
		EventType:  events.CampaignResumed,
		CampaignID: id,
	})

	return o.repo.GetByID(ctx, id)
}

// CompleteCampaign closes an active campaign. Completion is always an
// explicit call; hitting the lead goal never completes a campaign on its own.
func (o *Orchestrator) CompleteCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	if updateErr := o.repo.UpdateStatus(ctx, id, domain.StatusActive, domain.StatusCompleted, false); updateErr != nil {
		return nil, updateErr
	}

	o.logger.Info("campaign completed", logger.String("campaign_id", id))

	o.publisher.PublishAsync(events.CampaignEvent{
		EventType:  events.CampaignCompleted,
		CampaignID: id,
	})

	return o.repo.GetByID(ctx, id)
}

// DeleteCampaign removes a campaign and its leads. Active campaigns cannot
// be deleted; pause or complete them first.
func (o *Orchestrator) DeleteCampaign(ctx context.Context, id string) error {
	campaign, getErr := o.repo.GetByID(ctx, id)
	if getErr != nil {
		return getErr
	}

	if !campaign.Status.Deletable() {
		return &domain.TransitionError{CampaignID: id, From: campaign.Status, To: "deleted"}
	}

	if deleteErr := o.repo.Delete(ctx, id); deleteErr != nil {
		return deleteErr
	}

	o.logger.Info("campaign deleted",
		logger.String("campaign_id", id),
		logger.String("name", campaign.Name))

	o.publisher.PublishAsync(events.CampaignEvent{
		EventType:  events.CampaignDeleted,
		CampaignID: id,
		Payload:    events.CampaignDeletedPayload{Name: campaign.Name},
	})

	return nil
}

// AdvanceStage hands the pending leads of a stage to its processor. The
// campaign must be active. When nothing is pending the call is a no-op and
// reports zero processed. The batch size is capped so one call never floods
// a processor.
func (o *Orchestrator) AdvanceStage(ctx context.Context, id, action string) (*domain.AdvanceStageResult, error) {
	stage, parseErr := domain.ParseAdvanceAction(action)
	if parseErr != nil {
		return nil, parseErr
	}

	campaign, getErr := o.repo.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	if campaign.Status != domain.StatusActive {
		return nil, &domain.TransitionError{CampaignID: id, From: campaign.Status, To: domain.StatusActive}
	}

	pending := campaign.Stats.Pending(stage, campaign.Goal)
	result := &domain.AdvanceStageResult{Stage: stage, Pending: pending}

	if pending <= 0 {
		return result, nil
	}

	limit := o.batchLimit
	if pending < limit {
		limit = pending
	}

	resp, runErr := o.stages.Run(ctx, stage, processor.StageRequest{
		CampaignID:  id,
		ICPConfigID: campaign.ICPConfigID,
		Limit:       limit,
	})
	if runErr != nil {
		return nil, &domain.RemoteProcessingError{Stage: stage, Err: runErr}
	}

	result.Processed = resp.Processed

	o.logger.Info("stage advanced",
		logger.String("campaign_id", id),
		logger.String("stage", string(stage)),
		logger.Int64("pending", pending),
		logger.Int64("processed", resp.Processed))

	o.publisher.PublishAsync(events.CampaignEvent{
		EventType:  events.StageAdvanced,
		CampaignID: id,
		Payload: events.StageAdvancedPayload{
			Stage:     string(stage),
			Pending:   pending,
			Processed: resp.Processed,
		},
	})

	return result, nil
}

// MergeStats folds counters reported by a stage processor into the campaign.
// Counters only ever go up; stale or duplicate reports are absorbed.
func (o *Orchestrator) MergeStats(ctx context.Context, id string, incoming domain.CampaignStats) (*domain.Campaign, error) {
	if mergeErr := o.repo.MergeStats(ctx, id, incoming); mergeErr != nil {
		return nil, mergeErr
	}

	return o.repo.GetByID(ctx, id)
}

// GetProgress returns the campaign with a per-stage view of its funnel.
func (o *Orchestrator) GetProgress(ctx context.Context, id string) (*domain.Campaign, []domain.StageView, error) {
	campaign, getErr := o.repo.GetByID(ctx, id)
	if getErr != nil {
		return nil, nil, getErr
	}

	return campaign, domain.StageProgress(campaign.Stats, campaign.Goal), nil
}

// WaitForStageProgress blocks until the stage's counter moves past its value
// at call time, then returns the refreshed per-stage view. Returns
// ErrPollTimeout when the poller's attempt budget runs out first.
func (o *Orchestrator) WaitForStageProgress(ctx context.Context, id string, stage domain.Stage) (*domain.Campaign, []domain.StageView, error) {
	stats, _, statsErr := o.repo.GetStats(ctx, id)
	if statsErr != nil {
		return nil, nil, statsErr
	}

	if _, waitErr := o.waiter.WaitForProgress(ctx, id, stage, stats.StageCount(stage)); waitErr != nil {
		return nil, nil, waitErr
	}

	return o.GetProgress(ctx, id)
}

// ListLeads returns the campaign's leads, newest first.
func (o *Orchestrator) ListLeads(ctx context.Context, campaignID string) ([]domain.Lead, error) {
	campaign, getErr := o.repo.GetByID(ctx, campaignID)
	if getErr != nil {
		return nil, getErr
	}

	return o.leads.ListByCampaign(ctx, campaign.Kind, campaignID)
}

// CountLeadsByStatus returns per-pipeline-status lead counts for a campaign.
func (o *Orchestrator) CountLeadsByStatus(ctx context.Context, campaignID string) (map[domain.PipelineStatus]int64, error) {
	campaign, getErr := o.repo.GetByID(ctx, campaignID)
	if getErr != nil {
		return nil, getErr
	}

	return o.leads.CountByStatus(ctx, campaign.Kind, campaignID)
}

// Ping checks backing-store connectivity for health reporting.
func (o *Orchestrator) Ping(ctx context.Context) error {
	return o.repo.Ping(ctx)
}
