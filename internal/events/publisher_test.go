// Package events_test provides tests for the events package.
package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonesrussell/prospect-pipeline/internal/events"
)

func TestPublisher_NewPublisher_RequiresClient(t *testing.T) {
	pub := events.NewPublisher(nil, nil)
	if pub != nil {
		t.Error("expected nil publisher when client is nil")
	}
}

func TestPublisher_Publish_NilReceiverIsNoOp(t *testing.T) {
	var pub *events.Publisher
	event := events.CampaignEvent{
		EventType:  events.CampaignStarted,
		CampaignID: "camp-1",
	}

	// Should not panic and return nil
	publishErr := pub.Publish(context.Background(), event)
	if publishErr != nil {
		t.Errorf("expected nil error for nil receiver, got: %v", publishErr)
	}
}

func TestPublisher_PublishAsync_NilReceiverIsNoOp(t *testing.T) {
	var pub *events.Publisher
	event := events.CampaignEvent{
		EventType:  events.StageAdvanced,
		CampaignID: "camp-1",
		Payload:    events.StageAdvancedPayload{Stage: "enrichment", Pending: 45, Processed: 45},
	}

	// Should not panic
	pub.PublishAsync(event)

	time.Sleep(10 * time.Millisecond)
}
