// Package domain contains the core domain models for the lead-prospecting
// campaign pipeline service.
package domain

import (
	"fmt"
	"time"
)

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

const (
	// StatusDraft is the initial state of a newly created campaign.
	StatusDraft CampaignStatus = "draft"
	// StatusActive indicates the campaign is open for stage processing.
	StatusActive CampaignStatus = "active"
	// StatusPaused indicates the campaign was suspended by the user.
	StatusPaused CampaignStatus = "paused"
	// StatusCompleted is the terminal state of a campaign.
	StatusCompleted CampaignStatus = "completed"
)

// validTransitions maps each status to the set of statuses reachable from it.
var validTransitions = map[CampaignStatus]map[CampaignStatus]bool{
	StatusDraft:     {StatusActive: true},
	StatusActive:    {StatusPaused: true, StatusCompleted: true},
	StatusPaused:    {StatusActive: true},
	StatusCompleted: {},
}

// IsValid reports whether s is a recognised campaign status.
func (s CampaignStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s -> next is allowed
// by the campaign state machine.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	return validTransitions[s][next]
}

// Deletable reports whether a campaign in status s may be deleted.
// Active campaigns must be paused first.
func (s CampaignStatus) Deletable() bool {
	return s != StatusActive
}

// CampaignKind partitions campaigns (and their leads) by audience.
type CampaignKind string

const (
	// KindB2B targets companies.
	KindB2B CampaignKind = "b2b"
	// KindB2C targets individual consumers.
	KindB2C CampaignKind = "b2c"
)

// IsValid reports whether k is a recognised campaign kind.
func (k CampaignKind) IsValid() bool {
	return k == KindB2B || k == KindB2C
}

// Stage represents one of the four ordered pipeline phases.
type Stage string

const (
	// StageDiscovery finds new prospects matching the ICP.
	StageDiscovery Stage = "discovery"
	// StageEnrichment fills in contact and firmographic data.
	StageEnrichment Stage = "enrichment"
	// StageQualification scores leads against the ICP minimum.
	StageQualification Stage = "qualification"
	// StageMessageGeneration drafts the outreach message per lead.
	StageMessageGeneration Stage = "message_generation"
)

// stageCount is the number of pipeline stages (used for pre-allocation).
const stageCount = 4

// AllStages returns the pipeline stages in processing order.
func AllStages() []Stage {
	stages := make([]Stage, 0, stageCount)
	stages = append(stages, StageDiscovery, StageEnrichment, StageQualification, StageMessageGeneration)
	return stages
}

// advanceActions maps the user-facing advance action names to the stage
// they trigger. Discovery is never advanced manually; it runs on start.
var advanceActions = map[string]Stage{
	"enrich":            StageEnrichment,
	"qualify":           StageQualification,
	"generate_messages": StageMessageGeneration,
}

// ParseAdvanceAction resolves an advance action name ("enrich", "qualify",
// "generate_messages") to its pipeline stage.
func ParseAdvanceAction(action string) (Stage, error) {
	stage, ok := advanceActions[action]
	if !ok {
		return "", &ValidationError{Field: "stage", Message: fmt.Sprintf("unknown advance action %q", action)}
	}
	return stage, nil
}

// CampaignStats holds the per-stage counters of a campaign. Counters are
// monotonically non-decreasing for the lifetime of the campaign and respect
// the pipeline ordering: enriched <= discovered, qualified <= enriched,
// messages_generated <= qualified.
type CampaignStats struct {
	Discovered        int64 `json:"discovered"`
	Enriched          int64 `json:"enriched"`
	Qualified         int64 `json:"qualified"`
	MessagesGenerated int64 `json:"messages_generated"`
	MessagesSent      int64 `json:"messages_sent"`
	Responses         int64 `json:"responses"`
	Conversions       int64 `json:"conversions"`
}

// Validate checks counter non-negativity and the pipeline ordering invariant.
func (s CampaignStats) Validate() error {
	counters := map[string]int64{
		"discovered":         s.Discovered,
		"enriched":           s.Enriched,
		"qualified":          s.Qualified,
		"messages_generated": s.MessagesGenerated,
		"messages_sent":      s.MessagesSent,
		"responses":          s.Responses,
		"conversions":        s.Conversions,
	}
	for name, v := range counters {
		if v < 0 {
			return &ValidationError{Field: "stats." + name, Message: "must not be negative"}
		}
	}

	if s.Enriched > s.Discovered {
		return &ValidationError{Field: "stats.enriched", Message: "exceeds discovered"}
	}
	if s.Qualified > s.Enriched {
		return &ValidationError{Field: "stats.qualified", Message: "exceeds enriched"}
	}
	if s.MessagesGenerated > s.Qualified {
		return &ValidationError{Field: "stats.messages_generated", Message: "exceeds qualified"}
	}

	return nil
}

// Merge combines s with incoming counters, keeping the maximum of each pair.
// Counters never decrease; the merged result must still satisfy Validate.
func (s CampaignStats) Merge(incoming CampaignStats) (CampaignStats, error) {
	merged := CampaignStats{
		Discovered:        maxInt64(s.Discovered, incoming.Discovered),
		Enriched:          maxInt64(s.Enriched, incoming.Enriched),
		Qualified:         maxInt64(s.Qualified, incoming.Qualified),
		MessagesGenerated: maxInt64(s.MessagesGenerated, incoming.MessagesGenerated),
		MessagesSent:      maxInt64(s.MessagesSent, incoming.MessagesSent),
		Responses:         maxInt64(s.Responses, incoming.Responses),
		Conversions:       maxInt64(s.Conversions, incoming.Conversions),
	}

	if validateErr := merged.Validate(); validateErr != nil {
		return s, fmt.Errorf("merge stats: %w", validateErr)
	}

	return merged, nil
}

// StageCount returns the counter for the given stage.
func (s CampaignStats) StageCount(stage Stage) int64 {
	switch stage {
	case StageDiscovery:
		return s.Discovered
	case StageEnrichment:
		return s.Enriched
	case StageQualification:
		return s.Qualified
	case StageMessageGeneration:
		return s.MessagesGenerated
	}
	return 0
}

// UpstreamCount returns the counter of the stage immediately upstream of the
// given stage. Discovery is its own upstream; its baseline is the campaign
// goal when one is set, otherwise the discovered count itself.
func (s CampaignStats) UpstreamCount(stage Stage, goal int64) int64 {
	switch stage {
	case StageDiscovery:
		if goal > 0 {
			return goal
		}
		return s.Discovered
	case StageEnrichment:
		return s.Discovered
	case StageQualification:
		return s.Enriched
	case StageMessageGeneration:
		return s.Qualified
	}
	return 0
}

// Pending returns how many leads are waiting to be processed by the given
// stage: the upstream counter minus this stage's counter. Never negative.
func (s CampaignStats) Pending(stage Stage, goal int64) int64 {
	pending := s.UpstreamCount(stage, goal) - s.StageCount(stage)
	if pending < 0 {
		return 0
	}
	return pending
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Campaign represents one lead-prospecting campaign and its aggregate progress.
type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Kind        CampaignKind   `json:"kind"`
	ICPConfigID string         `json:"icp_config_id"`
	Status      CampaignStatus `json:"status"`
	Goal        int64          `json:"meta_leads_total,omitempty"`
	Stats       CampaignStats  `json:"stats"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateCampaignRequest is the payload accepted by the campaign creation endpoint.
type CreateCampaignRequest struct {
	Name        string `binding:"required" json:"name"`
	Description string `json:"description"`
	ICPConfigID string `binding:"required" json:"icp_config_id"`
	Goal        int64  `json:"meta_leads_total"`
}

// Validate checks the creation payload beyond what request binding enforces.
func (r *CreateCampaignRequest) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if r.ICPConfigID == "" {
		return &ValidationError{Field: "icp_config_id", Message: "is required"}
	}
	if r.Goal < 0 {
		return &ValidationError{Field: "meta_leads_total", Message: "must not be negative"}
	}
	return nil
}

// AdvanceStageRequest is the payload accepted by the stage-advance endpoint.
type AdvanceStageRequest struct {
	Stage string `binding:"required" json:"stage"`
}

// AdvanceStageResult reports the outcome of a stage-advance call. Processed
// is the count acknowledged by the stage processor for this batch; it is an
// acknowledgment, not a completion guarantee.
type AdvanceStageResult struct {
	Stage     Stage `json:"stage"`
	Pending   int64 `json:"pending"`
	Processed int64 `json:"processed"`
}
