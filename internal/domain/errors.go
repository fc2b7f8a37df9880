package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repositories and the poller.
var (
	// ErrCampaignNotFound is returned when a campaign lookup finds no row.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrICPConfigNotFound is returned when an ICP config lookup finds no row.
	ErrICPConfigNotFound = errors.New("icp config not found")
	// ErrPollTimeout is returned when the progress poller exhausts its bounded
	// attempts without observing progress. Non-fatal: stats remain as last observed.
	ErrPollTimeout = errors.New("no progress observed before poll timeout")
)

// ValidationError indicates a request was rejected before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// TransitionError indicates a lifecycle action was requested from a state
// that does not permit it. No state change occurs.
type TransitionError struct {
	CampaignID string
	From       CampaignStatus
	To         CampaignStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid campaign transition %s -> %s (campaign %s)", e.From, e.To, e.CampaignID)
}

// RemoteProcessingError indicates the stage-processor invocation itself
// failed (network or invocation failure, not per-lead failure).
type RemoteProcessingError struct {
	Stage Stage
	Err   error
}

func (e *RemoteProcessingError) Error() string {
	return fmt.Sprintf("stage processor %s: %v", e.Stage, e.Err)
}

func (e *RemoteProcessingError) Unwrap() error {
	return e.Err
}
