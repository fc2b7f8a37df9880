package domain

import "time"

// Score bounds for lead qualification.
const (
	MinScore = 0
	MaxScore = 100
)

// ICPConfig is a named, reusable targeting profile. It is owned independently
// of any single campaign; many campaigns may reference the same config.
type ICPConfig struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind CampaignKind `json:"kind"`

	// B2B targeting.
	Sectors          []string `json:"sectors,omitempty"`
	CompanySizeBands []string `json:"company_size_bands,omitempty"`
	MinCapital       int64    `json:"min_capital,omitempty"`
	MinRevenue       int64    `json:"min_revenue,omitempty"`
	TargetTitles     []string `json:"target_titles,omitempty"`

	// B2C targeting.
	Professions      []string `json:"professions,omitempty"`
	Specialties      []string `json:"specialties,omitempty"`
	AffluenceSignals []string `json:"affluence_signals,omitempty"`
	Geography        []string `json:"geography,omitempty"`

	// MinQualificationScore is the minimum score (0-100) a lead must reach
	// during qualification to advance.
	MinQualificationScore int `json:"min_qualification_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the config before persistence.
func (c *ICPConfig) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if !c.Kind.IsValid() {
		return &ValidationError{Field: "kind", Message: "must be b2b or b2c"}
	}
	if c.MinQualificationScore < MinScore || c.MinQualificationScore > MaxScore {
		return &ValidationError{Field: "min_qualification_score", Message: "must be between 0 and 100"}
	}
	return nil
}
