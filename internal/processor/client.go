// Package processor provides an HTTP client for the external stage services
// that do the actual lead work (discovery, enrichment, qualification, message
// generation). Calls are quick acknowledgements: the processor accepts the
// batch and works asynchronously, reporting results back through the stats
// merge endpoint. A stage with an empty URL is a no-op, allowing partial
// deployments.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jonesrussell/prospect-pipeline/internal/config"
	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// ErrCircuitBreakerOpen is returned when a stage's circuit breaker is open
// and blocking requests.
var ErrCircuitBreakerOpen = errors.New("stage processor circuit breaker open")

// ErrStageDisabled is returned when the stage has no configured endpoint.
var ErrStageDisabled = errors.New("stage processor not configured")

const (
	defaultTimeout            = 10 * time.Second
	circuitBreakerThreshold   = 5
	circuitBreakerHalfOpenAge = 30 * time.Second
	circuitBreakerCloseAfter  = 2

	processPath = "/api/v1/process"
)

// StageRequest is the payload sent to a stage processor.
type StageRequest struct {
	CampaignID  string `json:"campaign_id"`
	ICPConfigID string `json:"icp_config_id,omitempty"`
	Limit       int64  `json:"limit"`
}

// StageResponse is the acknowledgement returned by a stage processor.
type StageResponse struct {
	Processed int64    `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

type circuitBreaker struct {
	mu                  sync.Mutex
	state               circuitState
	consecutiveFailures int
	lastFailure         time.Time
	successesSinceOpen  int
}

// endpoint pairs a stage's base URL with its own circuit breaker so one
// failing processor does not block the others.
type endpoint struct {
	baseURL string
	breaker *circuitBreaker
}

// Client invokes external stage processors over HTTP.
type Client struct {
	endpoints  map[domain.Stage]*endpoint
	httpClient *http.Client
}

// NewClient creates a stage processor client from configuration. Stages with
// an empty URL are left unconfigured.
func NewClient(cfg *config.ProcessorsConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	endpoints := make(map[domain.Stage]*endpoint)
	for stage, url := range map[domain.Stage]string{
		domain.StageDiscovery:         cfg.DiscoveryURL,
		domain.StageEnrichment:        cfg.EnrichmentURL,
		domain.StageQualification:     cfg.QualificationURL,
		domain.StageMessageGeneration: cfg.MessageGenerationURL,
	} {
		if url != "" {
			endpoints[stage] = &endpoint{baseURL: url, breaker: &circuitBreaker{}}
		}
	}

	return &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled returns true if the stage has a configured endpoint.
func (c *Client) Enabled(stage domain.Stage) bool {
	_, ok := c.endpoints[stage]
	return ok
}

// CircuitOpen returns true if the stage's circuit breaker is open.
func (c *Client) CircuitOpen(stage domain.Stage) bool {
	ep, ok := c.endpoints[stage]
	if !ok {
		return false
	}

	ep.breaker.mu.Lock()
	defer ep.breaker.mu.Unlock()

	return ep.breaker.state == circuitOpen
}

// Run asks a stage processor to work a batch for the campaign. The processor
// acknowledges synchronously with the number of leads it accepted and does
// the work in the background.
func (c *Client) Run(ctx context.Context, stage domain.Stage, req StageRequest) (*StageResponse, error) {
	ep, ok := c.endpoints[stage]
	if !ok {
		return nil, ErrStageDisabled
	}

	if !breakerAllow(ep.breaker) {
		return nil, ErrCircuitBreakerOpen
	}

	body, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal stage request: %w", marshalErr)
	}

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, ep.baseURL+processPath, bytes.NewReader(body))
	if reqErr != nil {
		breakerRecordFailure(ep.breaker)

		return nil, fmt.Errorf("create request: %w", reqErr)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, doErr := c.httpClient.Do(httpReq)
	if doErr != nil {
		breakerRecordFailure(ep.breaker)

		return nil, fmt.Errorf("send request: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		breakerRecordFailure(ep.breaker)

		return nil, fmt.Errorf("stage processor error: status %d", resp.StatusCode)
	}

	var stageResp StageResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&stageResp); decodeErr != nil {
		breakerRecordFailure(ep.breaker)

		return nil, fmt.Errorf("decode stage response: %w", decodeErr)
	}

	breakerRecordSuccess(ep.breaker)

	return &stageResp, nil
}

func breakerAllow(b *circuitBreaker) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if time.Since(b.lastFailure) > circuitBreakerHalfOpenAge {
			b.state = circuitHalfOpen
			b.successesSinceOpen = 0

			return true
		}

		return false
	case circuitHalfOpen:
		return true
	}

	return true
}

func breakerRecordFailure(b *circuitBreaker) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.lastFailure = time.Now()
	b.successesSinceOpen = 0

	if b.consecutiveFailures >= circuitBreakerThreshold {
		b.state = circuitOpen
	}
}

func breakerRecordSuccess(b *circuitBreaker) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == circuitHalfOpen {
		b.successesSinceOpen++

		if b.successesSinceOpen >= circuitBreakerCloseAfter {
			b.state = circuitClosed
			b.consecutiveFailures = 0
		}
	} else {
		b.consecutiveFailures = 0
	}
}
