//nolint:testpackage // Testing internal poller requires same package access
package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
	"github.com/jonesrussell/prospect-pipeline/internal/logger"
)

// fakeStatsReader returns a scripted discovered counter, advancing it after a
// given number of reads.
type fakeStatsReader struct {
	reads        atomic.Int64
	advanceAfter int64
	target       int64
	readErr      error
}

func (f *fakeStatsReader) GetStats(_ context.Context, _ string) (domain.CampaignStats, int64, error) {
	if f.readErr != nil {
		return domain.CampaignStats{}, 0, f.readErr
	}

	reads := f.reads.Add(1)
	if reads > f.advanceAfter {
		return domain.CampaignStats{Discovered: f.target}, 100, nil
	}

	return domain.CampaignStats{}, 100, nil
}

func TestPoller_WaitForProgress_Succeeds(t *testing.T) {
	reader := &fakeStatsReader{advanceAfter: 2, target: 45}
	p := New(reader, logger.NewNop(), time.Millisecond, 10)

	stats, waitErr := p.WaitForProgress(context.Background(), "camp-1", domain.StageDiscovery, 0)
	if waitErr != nil {
		t.Fatalf("WaitForProgress() error = %v", waitErr)
	}

	if stats.Discovered != 45 {
		t.Errorf("stats.Discovered = %d, want 45", stats.Discovered)
	}

	if reads := reader.reads.Load(); reads != 3 {
		t.Errorf("reads = %d, want 3", reads)
	}
}

func TestPoller_WaitForProgress_BaselineMustBeExceeded(t *testing.T) {
	// Counter stays at the baseline: no progress, only a timeout.
	reader := &fakeStatsReader{advanceAfter: 0, target: 45}
	p := New(reader, logger.NewNop(), time.Millisecond, 5)

	_, waitErr := p.WaitForProgress(context.Background(), "camp-1", domain.StageDiscovery, 45)
	if !errors.Is(waitErr, domain.ErrPollTimeout) {
		t.Errorf("WaitForProgress() error = %v, want ErrPollTimeout", waitErr)
	}
}

func TestPoller_WaitForProgress_Timeout(t *testing.T) {
	reader := &fakeStatsReader{advanceAfter: 100, target: 45}
	p := New(reader, logger.NewNop(), time.Millisecond, 3)

	_, waitErr := p.WaitForProgress(context.Background(), "camp-1", domain.StageDiscovery, 0)
	if !errors.Is(waitErr, domain.ErrPollTimeout) {
		t.Errorf("WaitForProgress() error = %v, want ErrPollTimeout", waitErr)
	}

	if reads := reader.reads.Load(); reads != 3 {
		t.Errorf("reads = %d, want exactly 3 attempts", reads)
	}
}

func TestPoller_WaitForProgress_ReadErrorsConsumeAttempts(t *testing.T) {
	reader := &fakeStatsReader{readErr: errors.New("connection refused")}
	p := New(reader, logger.NewNop(), time.Millisecond, 3)

	_, waitErr := p.WaitForProgress(context.Background(), "camp-1", domain.StageEnrichment, 0)
	if !errors.Is(waitErr, domain.ErrPollTimeout) {
		t.Errorf("WaitForProgress() error = %v, want ErrPollTimeout", waitErr)
	}
}

func TestPoller_WaitForProgress_ContextCancelled(t *testing.T) {
	reader := &fakeStatsReader{advanceAfter: 100, target: 45}
	p := New(reader, logger.NewNop(), time.Hour, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, waitErr := p.WaitForProgress(ctx, "camp-1", domain.StageDiscovery, 0)
	if !errors.Is(waitErr, context.Canceled) {
		t.Errorf("WaitForProgress() error = %v, want context.Canceled", waitErr)
	}
}
