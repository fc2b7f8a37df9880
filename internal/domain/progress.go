package domain

// StageStatus is the derived progress state of a single pipeline stage.
type StageStatus string

const (
	// StagePending means the stage has not started (or has no upstream input).
	StagePending StageStatus = "pending"
	// StageInProgress means some but not all upstream leads were processed.
	StageInProgress StageStatus = "in_progress"
	// StageCompleted means every upstream lead was processed.
	StageCompleted StageStatus = "completed"
)

// stageLabels are the display labels for the stage progress view.
var stageLabels = map[Stage]string{
	StageDiscovery:         "Discovery",
	StageEnrichment:        "Enrichment",
	StageQualification:     "Qualification",
	StageMessageGeneration: "Message Generation",
}

// StageView is the derived progress of one stage for presentation.
type StageView struct {
	Stage         Stage       `json:"stage"`
	Label         string      `json:"label"`
	Count         int64       `json:"count"`
	UpstreamCount int64       `json:"upstream_count"`
	Percent       float64     `json:"percent"`
	Status        StageStatus `json:"status"`
}

const percentScale = 100

// StageProgress derives the per-stage progress view from raw campaign
// counters and the campaign goal. Pure function; safe to call on every
// polling tick. Stage status per stage, given its count and its immediate
// upstream count:
//   - completed iff count == upstream and upstream > 0
//   - in_progress iff 0 < count < upstream
//   - pending otherwise (including upstream == 0)
func StageProgress(stats CampaignStats, goal int64) []StageView {
	views := make([]StageView, 0, stageCount)

	for _, stage := range AllStages() {
		count := stats.StageCount(stage)
		upstream := stats.UpstreamCount(stage, goal)

		views = append(views, StageView{
			Stage:         stage,
			Label:         stageLabels[stage],
			Count:         count,
			UpstreamCount: upstream,
			Percent:       stagePercent(count, upstream),
			Status:        stageStatus(count, upstream),
		})
	}

	return views
}

func stageStatus(count, upstream int64) StageStatus {
	switch {
	case upstream > 0 && count == upstream:
		return StageCompleted
	case count > 0 && count < upstream:
		return StageInProgress
	default:
		return StagePending
	}
}

func stagePercent(count, upstream int64) float64 {
	if upstream <= 0 {
		return 0
	}
	pct := float64(count) / float64(upstream) * percentScale
	if pct > percentScale {
		return percentScale
	}
	return pct
}
