//nolint:testpackage // Testing internal service requires same package access
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
	"github.com/jonesrussell/prospect-pipeline/internal/logger"
	"github.com/jonesrussell/prospect-pipeline/internal/processor"
)

const testBatchLimit = 50

// mockRepository is a function-field mock of the campaign repository.
type mockRepository struct {
	createFunc       func(ctx context.Context, campaign *domain.Campaign) error
	getByIDFunc      func(ctx context.Context, id string) (*domain.Campaign, error)
	listFunc         func(ctx context.Context) ([]domain.Campaign, error)
	updateStatusFunc func(ctx context.Context, id string, from, to domain.CampaignStatus, markStarted bool) error
	mergeStatsFunc   func(ctx context.Context, id string, incoming domain.CampaignStats) error
	getStatsFunc     func(ctx context.Context, id string) (domain.CampaignStats, int64, error)
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	return m.createFunc(ctx, campaign)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) List(ctx context.Context) ([]domain.Campaign, error) {
	return m.listFunc(ctx)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, from, to domain.CampaignStatus, markStarted bool) error {
	return m.updateStatusFunc(ctx, id, from, to, markStarted)
}

func (m *mockRepository) MergeStats(ctx context.Context, id string, incoming domain.CampaignStats) error {
	return m.mergeStatsFunc(ctx, id, incoming)
}

func (m *mockRepository) GetStats(ctx context.Context, id string) (domain.CampaignStats, int64, error) {
	return m.getStatsFunc(ctx, id)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockRepository) Ping(_ context.Context) error { return nil }

type mockICPReader struct {
	getByIDFunc func(ctx context.Context, id string) (*domain.ICPConfig, error)
}

func (m *mockICPReader) GetByID(ctx context.Context, id string) (*domain.ICPConfig, error) {
	return m.getByIDFunc(ctx, id)
}

type mockLeadReader struct {
	listFunc  func(ctx context.Context, kind domain.CampaignKind, campaignID string) ([]domain.Lead, error)
	countFunc func(ctx context.Context, kind domain.CampaignKind, campaignID string) (map[domain.PipelineStatus]int64, error)
}

func (m *mockLeadReader) ListByCampaign(ctx context.Context, kind domain.CampaignKind, campaignID string) ([]domain.Lead, error) {
	return m.listFunc(ctx, kind, campaignID)
}

func (m *mockLeadReader) CountByStatus(ctx context.Context, kind domain.CampaignKind, campaignID string) (map[domain.PipelineStatus]int64, error) {
	return m.countFunc(ctx, kind, campaignID)
}

type mockStageClient struct {
	enabledFunc func(stage domain.Stage) bool
	runFunc     func(ctx context.Context, stage domain.Stage, req processor.StageRequest) (*processor.StageResponse, error)
}

func (m *mockStageClient) Enabled(stage domain.Stage) bool {
	if m.enabledFunc == nil {
		return true
	}
	return m.enabledFunc(stage)
}

func (m *mockStageClient) Run(ctx context.Context, stage domain.Stage, req processor.StageRequest) (*processor.StageResponse, error) {
	return m.runFunc(ctx, stage, req)
}

type mockWaiter struct {
	waitFunc func(ctx context.Context, campaignID string, stage domain.Stage, baseline int64) (domain.CampaignStats, error)
}

func (m *mockWaiter) WaitForProgress(ctx context.Context, campaignID string, stage domain.Stage, baseline int64) (domain.CampaignStats, error) {
	return m.waitFunc(ctx, campaignID, stage, baseline)
}

func newOrchestrator(repo Repository, icps ICPReader, stages StageClient) *Orchestrator {
	return NewOrchestrator(repo, icps, &mockLeadReader{}, stages, &mockWaiter{}, nil, logger.NewNop(), testBatchLimit)
}

func TestOrchestrator_CreateCampaign(t *testing.T) {
	icps := &mockICPReader{
		getByIDFunc: func(_ context.Context, id string) (*domain.ICPConfig, error) {
			return &domain.ICPConfig{ID: id, Name: "Dentists", Kind: domain.KindB2C}, nil
		},
	}
	repo := &mockRepository{
		createFunc: func(_ context.Context, campaign *domain.Campaign) error {
			campaign.ID = "camp-1"
			campaign.Status = domain.StatusDraft
			return nil
		},
	}

	orch := newOrchestrator(repo, icps, &mockStageClient{})

	campaign, createErr := orch.CreateCampaign(context.Background(), &domain.CreateCampaignRequest{
		Name:        "Dentists SP",
		ICPConfigID: "icp-1",
		Goal:        100,
	})

	require.NoError(t, createErr)
	assert.Equal(t, domain.StatusDraft, campaign.Status)
	assert.Equal(t, domain.KindB2C, campaign.Kind, "kind should be inherited from the ICP config")
}

func TestOrchestrator_CreateCampaign_UnknownICP(t *testing.T) {
	icps := &mockICPReader{
		getByIDFunc: func(_ context.Context, _ string) (*domain.ICPConfig, error) {
			return nil, domain.ErrICPConfigNotFound
		},
	}

	orch := newOrchestrator(&mockRepository{}, icps, &mockStageClient{})

	_, createErr := orch.CreateCampaign(context.Background(), &domain.CreateCampaignRequest{
		Name:        "Dentists SP",
		ICPConfigID: "missing",
	})

	require.ErrorIs(t, createErr, domain.ErrICPConfigNotFound)
}

func TestOrchestrator_CreateCampaign_InvalidRequest(t *testing.T) {
	orch := newOrchestrator(&mockRepository{}, &mockICPReader{}, &mockStageClient{})

	_, createErr := orch.CreateCampaign(context.Background(), &domain.CreateCampaignRequest{Name: ""})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, createErr, &validationErr)
}

func TestOrchestrator_StartCampaign_TriggersDiscovery(t *testing.T) {
	statuses := []domain.CampaignStatus{domain.StatusDraft}
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{
				ID:          id,
				Status:      statuses[len(statuses)-1],
				ICPConfigID: "icp-1",
				Goal:        100,
			}, nil
		},
		updateStatusFunc: func(_ context.Context, _ string, _, to domain.CampaignStatus, _ bool) error {
			statuses = append(statuses, to)
			return nil
		},
	}

	var gotReq processor.StageRequest
	stages := &mockStageClient{
		runFunc: func(_ context.Context, stage domain.Stage, req processor.StageRequest) (*processor.StageResponse, error) {
			assert.Equal(t, domain.StageDiscovery, stage)
			gotReq = req
			return &processor.StageResponse{Processed: 100}, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	campaign, startErr := orch.StartCampaign(context.Background(), "camp-1")
	require.NoError(t, startErr)

	assert.Equal(t, domain.StatusActive, campaign.Status)
	assert.Equal(t, "camp-1", gotReq.CampaignID)
	assert.Equal(t, "icp-1", gotReq.ICPConfigID)
	assert.Equal(t, int64(100), gotReq.Limit, "limit should come from the campaign goal")
}

func TestOrchestrator_StartCampaign_RollsBackOnProcessorFailure(t *testing.T) {
	var transitions [][2]domain.CampaignStatus
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Status: domain.StatusDraft, ICPConfigID: "icp-1", Goal: 100}, nil
		},
		updateStatusFunc: func(_ context.Context, _ string, from, to domain.CampaignStatus, _ bool) error {
			transitions = append(transitions, [2]domain.CampaignStatus{from, to})
			return nil
		},
	}

	stages := &mockStageClient{
		runFunc: func(_ context.Context, _ domain.Stage, _ processor.StageRequest) (*processor.StageResponse, error) {
			return nil, errors.New("connection refused")
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	_, startErr := orch.StartCampaign(context.Background(), "camp-1")

	var remoteErr *domain.RemoteProcessingError
	require.ErrorAs(t, startErr, &remoteErr)
	assert.Equal(t, domain.StageDiscovery, remoteErr.Stage)

	require.Len(t, transitions, 2)
	assert.Equal(t, [2]domain.CampaignStatus{domain.StatusActive, domain.StatusDraft}, transitions[1],
		"failed start should roll the campaign back to draft")
}

func TestOrchestrator_StartCampaign_FromPaused_RetriggersDiscovery(t *testing.T) {
	statuses := []domain.CampaignStatus{domain.StatusPaused}
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{
				ID:          id,
				Status:      statuses[len(statuses)-1],
				ICPConfigID: "icp-1",
				Goal:        100,
			}, nil
		},
		updateStatusFunc: func(_ context.Context, _ string, from, to domain.CampaignStatus, _ bool) error {
			assert.Equal(t, domain.StatusPaused, from)
			statuses = append(statuses, to)
			return nil
		},
	}

	discoveryCalls := 0
	stages := &mockStageClient{
		runFunc: func(_ context.Context, stage domain.Stage, _ processor.StageRequest) (*processor.StageResponse, error) {
			assert.Equal(t, domain.StageDiscovery, stage)
			discoveryCalls++
			return &processor.StageResponse{Processed: 100}, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	campaign, startErr := orch.StartCampaign(context.Background(), "camp-1")
	require.NoError(t, startErr)

	assert.Equal(t, domain.StatusActive, campaign.Status)
	assert.Equal(t, 1, discoveryCalls, "start from paused should re-trigger discovery")
}

func TestOrchestrator_StartCampaign_FromPaused_RollsBackToPaused(t *testing.T) {
	var transitions [][2]domain.CampaignStatus
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Status: domain.StatusPaused, ICPConfigID: "icp-1"}, nil
		},
		updateStatusFunc: func(_ context.Context, _ string, from, to domain.CampaignStatus, _ bool) error {
			transitions = append(transitions, [2]domain.CampaignStatus{from, to})
			return nil
		},
	}

	stages := &mockStageClient{
		runFunc: func(_ context.Context, _ domain.Stage, _ processor.StageRequest) (*processor.StageResponse, error) {
			return nil, errors.New("connection refused")
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	_, startErr := orch.StartCampaign(context.Background(), "camp-1")

	var remoteErr *domain.RemoteProcessingError
	require.ErrorAs(t, startErr, &remoteErr)

	require.Len(t, transitions, 2)
	assert.Equal(t, [2]domain.CampaignStatus{domain.StatusActive, domain.StatusPaused}, transitions[1],
		"failed start must restore the prior status, not draft")
}

func TestOrchestrator_StartCampaign_RejectsActiveAndCompleted(t *testing.T) {
	for _, status := range []domain.CampaignStatus{domain.StatusActive, domain.StatusCompleted} {
		repo := &mockRepository{
			getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
				return &domain.Campaign{ID: id, Status: status}, nil
			},
		}

		orch := newOrchestrator(repo, &mockICPReader{}, &mockStageClient{})

		_, startErr := orch.StartCampaign(context.Background(), "camp-1")

		var transitionErr *domain.TransitionError
		require.ErrorAs(t, startErr, &transitionErr)
		assert.Equal(t, status, transitionErr.From)
	}
}

func TestOrchestrator_StartCampaign_DiscoveryDisabled(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Status: domain.StatusDraft}, nil
		},
		updateStatusFunc: func(_ context.Context, _ string, _, _ domain.CampaignStatus, _ bool) error {
			return nil
		},
	}

	stages := &mockStageClient{
		enabledFunc: func(_ domain.Stage) bool { return false },
		runFunc: func(_ context.Context, _ domain.Stage, _ processor.StageRequest) (*processor.StageResponse, error) {
			t.Fatal("Run should not be called for a disabled stage")
			return nil, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	_, startErr := orch.StartCampaign(context.Background(), "camp-1")
	require.NoError(t, startErr)
}

func TestOrchestrator_AdvanceStage(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{
				ID:          id,
				Status:      domain.StatusActive,
				ICPConfigID: "icp-1",
				Goal:        100,
				Stats:       domain.CampaignStats{Discovered: 45, Enriched: 20},
			}, nil
		},
	}

	var gotLimit int64
	stages := &mockStageClient{
		runFunc: func(_ context.Context, stage domain.Stage, req processor.StageRequest) (*processor.StageResponse, error) {
			assert.Equal(t, domain.StageEnrichment, stage)
			gotLimit = req.Limit
			return &processor.StageResponse{Processed: 25}, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	result, advanceErr := orch.AdvanceStage(context.Background(), "camp-1", "enrich")
	require.NoError(t, advanceErr)

	assert.Equal(t, domain.StageEnrichment, result.Stage)
	assert.Equal(t, int64(25), result.Pending, "pending = discovered - enriched")
	assert.Equal(t, int64(25), result.Processed)
	assert.Equal(t, int64(25), gotLimit, "limit should be capped at pending")
}

func TestOrchestrator_AdvanceStage_NothingPending(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{
				ID:     id,
				Status: domain.StatusActive,
				Stats:  domain.CampaignStats{Discovered: 45, Enriched: 45},
			}, nil
		},
	}

	stages := &mockStageClient{
		runFunc: func(_ context.Context, _ domain.Stage, _ processor.StageRequest) (*processor.StageResponse, error) {
			t.Fatal("Run should not be called when nothing is pending")
			return nil, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	result, advanceErr := orch.AdvanceStage(context.Background(), "camp-1", "enrich")
	require.NoError(t, advanceErr)

	assert.Equal(t, int64(0), result.Pending)
	assert.Equal(t, int64(0), result.Processed)
}

func TestOrchestrator_AdvanceStage_RejectsInactive(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Status: domain.StatusPaused}, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, &mockStageClient{})

	_, advanceErr := orch.AdvanceStage(context.Background(), "camp-1", "qualify")

	var transitionErr *domain.TransitionError
	require.ErrorAs(t, advanceErr, &transitionErr)
}

func TestOrchestrator_AdvanceStage_UnknownAction(t *testing.T) {
	orch := newOrchestrator(&mockRepository{}, &mockICPReader{}, &mockStageClient{})

	_, advanceErr := orch.AdvanceStage(context.Background(), "camp-1", "discover")

	var validationErr *domain.ValidationError
	require.ErrorAs(t, advanceErr, &validationErr)
}

func TestOrchestrator_AdvanceStage_ProcessorFailure(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{
				ID:     id,
				Status: domain.StatusActive,
				Stats:  domain.CampaignStats{Discovered: 45},
			}, nil
		},
	}

	stages := &mockStageClient{
		runFunc: func(_ context.Context, _ domain.Stage, _ processor.StageRequest) (*processor.StageResponse, error) {
			return nil, errors.New("bad gateway")
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, stages)

	_, advanceErr := orch.AdvanceStage(context.Background(), "camp-1", "enrich")

	var remoteErr *domain.RemoteProcessingError
	require.ErrorAs(t, advanceErr, &remoteErr)
	assert.Equal(t, domain.StageEnrichment, remoteErr.Stage)
}

func TestOrchestrator_PauseAndResume(t *testing.T) {
	current := domain.StatusActive
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Status: current}, nil
		},
		updateStatusFunc: func(_ context.Context, _ string, from, to domain.CampaignStatus, markStarted bool) error {
			assert.False(t, markStarted, "pause/resume must not touch started_at")
			if current != from {
				return &domain.TransitionError{From: current, To: to}
			}
			current = to
			return nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, &mockStageClient{})
	ctx := context.Background()

	paused, pauseErr := orch.PauseCampaign(ctx, "camp-1")
	require.NoError(t, pauseErr)
	assert.Equal(t, domain.StatusPaused, paused.Status)

	resumed, resumeErr := orch.ResumeCampaign(ctx, "camp-1")
	require.NoError(t, resumeErr)
	assert.Equal(t, domain.StatusActive, resumed.Status)

	// Pausing a draft campaign must fail.
	current = domain.StatusDraft
	_, badPauseErr := orch.PauseCampaign(ctx, "camp-1")
	var transitionErr *domain.TransitionError
	require.ErrorAs(t, badPauseErr, &transitionErr)
}

func TestOrchestrator_DeleteCampaign_RejectsActive(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Status: domain.StatusActive}, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, &mockStageClient{})

	deleteErr := orch.DeleteCampaign(context.Background(), "camp-1")

	var transitionErr *domain.TransitionError
	require.ErrorAs(t, deleteErr, &transitionErr)
	assert.Equal(t, domain.StatusActive, transitionErr.From)
}

func TestOrchestrator_DeleteCampaign(t *testing.T) {
	deleted := false
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Status: domain.StatusPaused, Name: "Dentists SP"}, nil
		},
		deleteFunc: func(_ context.Context, _ string) error {
			deleted = true
			return nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, &mockStageClient{})

	require.NoError(t, orch.DeleteCampaign(context.Background(), "camp-1"))
	assert.True(t, deleted)
}

func TestOrchestrator_GetProgress(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{
				ID:     id,
				Status: domain.StatusActive,
				Goal:   100,
				Stats:  domain.CampaignStats{Discovered: 45, Enriched: 20},
			}, nil
		},
	}

	orch := newOrchestrator(repo, &mockICPReader{}, &mockStageClient{})

	campaign, views, progressErr := orch.GetProgress(context.Background(), "camp-1")
	require.NoError(t, progressErr)

	assert.Equal(t, "camp-1", campaign.ID)
	require.Len(t, views, 4)
	assert.Equal(t, domain.StageInProgress, views[1].Status)
	assert.Equal(t, int64(20), views[1].Count)
}

func TestOrchestrator_WaitForStageProgress_Timeout(t *testing.T) {
	repo := &mockRepository{
		getStatsFunc: func(_ context.Context, _ string) (domain.CampaignStats, int64, error) {
			return domain.CampaignStats{Discovered: 45}, 100, nil
		},
	}

	waiter := &mockWaiter{
		waitFunc: func(_ context.Context, _ string, _ domain.Stage, baseline int64) (domain.CampaignStats, error) {
			assert.Equal(t, int64(45), baseline, "baseline should be the counter at call time")
			return domain.CampaignStats{}, domain.ErrPollTimeout
		},
	}

	orch := NewOrchestrator(repo, &mockICPReader{}, &mockLeadReader{}, &mockStageClient{}, waiter, nil, logger.NewNop(), testBatchLimit)

	_, _, waitErr := orch.WaitForStageProgress(context.Background(), "camp-1", domain.StageDiscovery)
	require.ErrorIs(t, waitErr, domain.ErrPollTimeout)
}

func TestOrchestrator_ListLeads_UsesCampaignKind(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id string) (*domain.Campaign, error) {
			return &domain.Campaign{ID: id, Kind: domain.KindB2C}, nil
		},
	}

	leads := &mockLeadReader{
		listFunc: func(_ context.Context, kind domain.CampaignKind, _ string) ([]domain.Lead, error) {
			assert.Equal(t, domain.KindB2C, kind)
			return []domain.Lead{{ID: "lead-1", PipelineStatus: domain.LeadDiscovered}}, nil
		},
	}

	orch := NewOrchestrator(repo, &mockICPReader{}, leads, &mockStageClient{}, &mockWaiter{}, nil, logger.NewNop(), testBatchLimit)

	got, listErr := orch.ListLeads(context.Background(), "camp-1")
	require.NoError(t, listErr)
	require.Len(t, got, 1)
}
