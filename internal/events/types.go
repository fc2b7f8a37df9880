// Package events provides event publishing for campaign lifecycle events via
// Redis Streams. Downstream consumers (dashboards, CRM sync) subscribe to the
// stream; publishing is best-effort and never blocks a campaign operation.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream for campaign events.
const StreamName = "campaign-events"

// EventType represents the type of campaign event.
type EventType string

const (
	// CampaignCreated indicates a new campaign was created in draft.
	CampaignCreated EventType = "CAMPAIGN_CREATED"
	// CampaignStarted indicates a campaign was activated and discovery kicked off.
	CampaignStarted EventType = "CAMPAIGN_STARTED"
	// CampaignPaused indicates an active campaign was paused.
	CampaignPaused EventType = "CAMPAIGN_PAUSED"
	// CampaignResumed indicates a paused campaign went active again.
	CampaignResumed EventType = "CAMPAIGN_RESUMED"
	// CampaignCompleted indicates a campaign reached its terminal state.
	CampaignCompleted EventType = "CAMPAIGN_COMPLETED"
	// CampaignDeleted indicates a campaign and its leads were removed.
	CampaignDeleted EventType = "CAMPAIGN_DELETED"
	// StageAdvanced indicates a processing stage was invoked for a campaign.
	StageAdvanced EventType = "STAGE_ADVANCED"
)

// CampaignEvent is the envelope for all campaign-related events.
type CampaignEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  EventType `json:"event_type"`
	CampaignID string    `json:"campaign_id"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// StageAdvancedPayload contains data for STAGE_ADVANCED events.
type StageAdvancedPayload struct {
	Stage     string `json:"stage"`
	Pending   int64  `json:"pending"`
	Processed int64  `json:"processed"`
}

// CampaignDeletedPayload contains data for CAMPAIGN_DELETED events.
type CampaignDeletedPayload struct {
	Name string `json:"name"`
}
