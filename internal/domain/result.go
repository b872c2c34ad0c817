package domain

// Proposal is the structured output of a proposal generation run.
type Proposal struct {
	ExecutiveSummary  string `json:"executive_summary"`
	TechnicalApproach string `json:"technical_approach"`
	BudgetInfo        string `json:"budget_info"`
}

// ComplianceReport is the structured output of a compliance check:
// a 0-100 score plus an ordered list of issue descriptions.
type ComplianceReport struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// PipelineResult is the final artifact handed to the caller. Exactly one of
// Proposal or Compliance is set, matching the requested operation.
// Constructed once per request, immutable thereafter.
type PipelineResult struct {
	Operation  Operation         `json:"operation"`
	Proposal   *Proposal         `json:"proposal,omitempty"`
	Compliance *ComplianceReport `json:"compliance,omitempty"`
}
