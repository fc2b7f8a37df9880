package domain

import "time"

// PipelineStatus tracks how far a lead has advanced through the pipeline.
// It only ever moves forward, and is written exclusively by the stage
// processor that performs that stage's work.
type PipelineStatus string

const (
	// LeadDiscovered means the lead was found by the discovery stage.
	LeadDiscovered PipelineStatus = "descoberto"
	// LeadEnriched means contact and firmographic data was filled in.
	LeadEnriched PipelineStatus = "enriquecido"
	// LeadQualified means the lead scored at or above the ICP minimum.
	LeadQualified PipelineStatus = "qualificado"
	// LeadMessageGenerated means an outreach message was drafted.
	LeadMessageGenerated PipelineStatus = "mensagem_gerada"
	// LeadContacted means the outreach message was sent.
	LeadContacted PipelineStatus = "contatado"
)

// pipelineOrder maps each status to its rank in the pipeline.
var pipelineOrder = map[PipelineStatus]int{
	LeadDiscovered:       0,
	LeadEnriched:         1,
	LeadQualified:        2,
	LeadMessageGenerated: 3,
	LeadContacted:        4,
}

// IsValid reports whether p is a recognised pipeline status.
func (p PipelineStatus) IsValid() bool {
	_, ok := pipelineOrder[p]
	return ok
}

// Before reports whether p precedes other in the pipeline.
func (p PipelineStatus) Before(other PipelineStatus) bool {
	return pipelineOrder[p] < pipelineOrder[other]
}

// StageTarget returns the pipeline status a stage moves leads into.
func StageTarget(stage Stage) PipelineStatus {
	switch stage {
	case StageDiscovery:
		return LeadDiscovered
	case StageEnrichment:
		return LeadEnriched
	case StageQualification:
		return LeadQualified
	case StageMessageGeneration:
		return LeadMessageGenerated
	}
	return ""
}

// Lead is one discovered prospect, partitioned by campaign kind and tagged
// with its campaign. Leads are created only by a successful discovery
// invocation, never pre-created.
type Lead struct {
	ID             string         `json:"id"`
	CampaignID     string         `json:"campaign_id"`
	Kind           CampaignKind   `json:"kind"`
	Name           string         `json:"name"`
	Company        string         `json:"company,omitempty"`
	Profession     string         `json:"profession,omitempty"`
	Specialty      string         `json:"specialty,omitempty"`
	City           string         `json:"city,omitempty"`
	State          string         `json:"state,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Email          string         `json:"email,omitempty"`
	Website        string         `json:"website,omitempty"`
	Instagram      string         `json:"instagram,omitempty"`
	LinkedIn       string         `json:"linkedin,omitempty"`
	PipelineStatus PipelineStatus `json:"pipeline_status"`
	Score          int            `json:"score"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
