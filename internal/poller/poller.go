// Package poller implements bounded polling of campaign stats, used to wait
// for an asynchronous stage processor to show visible progress.
package poller

import (
	"context"
	"time"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
	"github.com/jonesrussell/prospect-pipeline/internal/logger"
)

// StatsReader reads campaign stats. Satisfied by the campaign repository.
type StatsReader interface {
	GetStats(ctx context.Context, campaignID string) (domain.CampaignStats, int64, error)
}

// Poller watches campaign stats for stage progress. It only ever reads;
// processors advance the counters through the stats merge path.
type Poller struct {
	reader      StatsReader
	logger      logger.Logger
	interval    time.Duration
	maxAttempts int
}

// New creates a poller with the given tick interval and attempt budget.
func New(reader StatsReader, log logger.Logger, interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		reader:      reader,
		logger:      log,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// WaitForProgress blocks until the stage's counter rises above baseline,
// returning the stats snapshot that showed the progress. Each tick is one
// attempt; a failed read still consumes an attempt so a broken backend cannot
// stall the wait forever. Returns ErrPollTimeout when the attempt budget runs
// out and the context error when the caller gives up first.
func (p *Poller) WaitForProgress(ctx context.Context, campaignID string, stage domain.Stage, baseline int64) (domain.CampaignStats, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return domain.CampaignStats{}, ctx.Err()
		case <-ticker.C:
		}

		stats, _, readErr := p.reader.GetStats(ctx, campaignID)
		if readErr != nil {
			p.logger.Warn("progress poll read failed",
				logger.String("campaign_id", campaignID),
				logger.String("stage", string(stage)),
				logger.Int("attempt", attempt),
				logger.Error(readErr))

			continue
		}

		if stats.StageCount(stage) > baseline {
			p.logger.Debug("progress observed",
				logger.String("campaign_id", campaignID),
				logger.String("stage", string(stage)),
				logger.Int64("count", stats.StageCount(stage)),
				logger.Int("attempt", attempt))

			return stats, nil
		}
	}

	return domain.CampaignStats{}, domain.ErrPollTimeout
}
