package domain

// Operation is a named extraction or generation task requested of the
// pipeline.
type Operation string

// Retrieval operations (closed set, routed by the query router).
const (
	OpTechnicalRequirements Operation = "technical_requirements"
	OpBudget                Operation = "budget"
	OpSectionClassification Operation = "section_classification"
)

// Orchestrator-level operations.
const (
	OpProposal   Operation = "proposal"
	OpCompliance Operation = "compliance"
)
