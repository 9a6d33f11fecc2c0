// Package types provides type definitions for the decision brief aggregate
// and the artifacts produced by the generation pipeline.
package types

import (
	"time"

	"github.com/google/uuid"
)

// BriefStatus is the coarse lifecycle state of a brief.
type BriefStatus string

// Brief lifecycle states.
const (
	StatusDraft      BriefStatus = "draft"
	StatusGenerating BriefStatus = "generating"
	StatusComplete   BriefStatus = "complete"
	StatusError      BriefStatus = "error"
)

// GenerationStage is the pipeline stage cursor. It advances monotonically
// through the fixed stage order while the brief is generating.
type GenerationStage string

// Pipeline stages in execution order.
const (
	StageNone         GenerationStage = "none"
	StageEntities     GenerationStage = "entities"
	StageGraph        GenerationStage = "graph"
	StagePRD          GenerationStage = "prd"
	StageStakeholders GenerationStage = "stakeholders"
	StageChecklist    GenerationStage = "checklist"
	StageTraceability GenerationStage = "traceability"
	StageDone         GenerationStage = "done"
)

// ReviewStatus tracks the human review state of a PRD section.
type ReviewStatus string

// Section review states.
const (
	ReviewNeedsReview    ReviewStatus = "needs_review"
	ReviewApproved       ReviewStatus = "approved"
	ReviewRiskIdentified ReviewStatus = "risk_identified"
)

// RiskTier classifies a stakeholder critique or an overall readiness result.
type RiskTier string

// Risk tiers.
const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// InputType describes how the brief's main input was provided.
type InputType string

// Supported input types.
const (
	InputFeatureIdea InputType = "feature_idea"
	InputPRDDraft    InputType = "prd_draft"
	InputURL         InputType = "url"
)

// Brief is the central aggregate: one product decision under governance
// review, together with every artifact the pipeline has produced for it.
type Brief struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Input fields, user-editable only while status is draft.
	Title           string    `json:"title"`
	MainInput       string    `json:"main_input"`
	InputType       InputType `json:"input_type"`
	IndustryContext string    `json:"industry_context"`
	DataSensitivity []string  `json:"data_sensitivity"`
	Geography       string    `json:"geography"`
	LaunchType      string    `json:"launch_type"`
	RiskTolerance   string    `json:"risk_tolerance"`

	// Pipeline state, owned by the orchestrator.
	Status          BriefStatus     `json:"status"`
	GenerationStage GenerationStage `json:"generation_stage"`
	ErrorMessage    string          `json:"error_message,omitempty"`

	// Generated artifacts, each nil until its stage completes.
	Entities             *Entities                  `json:"entities,omitempty"`
	Graph                *Graph                     `json:"graph,omitempty"`
	PRDSections          map[string]string          `json:"prd_sections,omitempty"`
	StakeholderCritiques map[string]CritiquePack    `json:"stakeholder_critiques,omitempty"`
	Checklist            map[string][]ChecklistItem `json:"checklist,omitempty"`
	Traceability         []TraceEntry               `json:"traceability,omitempty"`
	ExecutiveSummary     *ExecutiveSummary          `json:"executive_summary,omitempty"`

	// Derived and review state.
	SectionStatuses       map[string]ReviewStatus `json:"section_statuses"`
	StakeholderRiskLevels map[string]RiskTier     `json:"stakeholder_risk_levels"`
	Assumptions           []Assumption            `json:"assumptions"`
	RegenerationDiffs     map[string]Diff         `json:"regeneration_diffs"`

	// Audit trails, append-only.
	Revisions      []Revision `json:"revisions"`
	TimelineEvents []Event    `json:"timeline_events"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BriefSummary is the listing view of a brief, without artifact payloads.
type BriefSummary struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Status          BriefStatus     `json:"status"`
	GenerationStage GenerationStage `json:"generation_stage"`
	IndustryContext string          `json:"industry_context"`
	LaunchType      string          `json:"launch_type"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Entities is the structured extraction produced by the first pipeline stage.
type Entities struct {
	FeatureSummary    string             `json:"feature_summary"`
	Entities          []string           `json:"entities"`
	Risks             []Risk             `json:"risks"`
	ComplianceSignals []ComplianceSignal `json:"compliance_signals"`
	Stakeholders      []string           `json:"stakeholders"`
	Metrics           []Metric           `json:"metrics"`
	RolloutHints      []string           `json:"rollout_hints"`
}

// Risk is a single extracted risk.
type Risk struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ComplianceSignal is a regulation the feature may be subject to.
type ComplianceSignal struct {
	Regulation  string `json:"regulation"`
	Relevance   string `json:"relevance"`
	Description string `json:"description"`
}

// Metric is a measurable outcome extracted for the feature.
type Metric struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Graph is the dependency graph derived deterministically from entities.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a single graph node. Severity and Relevance are populated only for
// risk and compliance nodes respectively.
type Node struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
	Relevance   string `json:"relevance,omitempty"`
}

// Edge is a directed, labeled graph edge.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// CritiquePack is one stakeholder's structured feedback.
type CritiquePack struct {
	Concerns          []string `json:"concerns"`
	RequiredControls  []string `json:"required_controls"`
	RequiredApprovals []string `json:"required_approvals"`
	Questions         []string `json:"questions"`
}

// ChecklistItem is one launch checklist entry. Checked is the only field a
// user may mutate after generation.
type ChecklistItem struct {
	Item            string `json:"item"`
	Checked         bool   `json:"checked"`
	Owner           string `json:"owner"`
	IncludeInExport bool   `json:"include_in_export"`
}

// TraceEntry links a requirement to a PRD section and graph nodes.
type TraceEntry struct {
	Requirement   string   `json:"requirement"`
	PRDSection    string   `json:"prd_section"`
	LinkedNodeIDs []string `json:"linked_node_ids"`
	Rationale     string   `json:"rationale"`
}

// Recommendation is the executive summary's go/no-go verdict.
type Recommendation string

// Recommendation values.
const (
	RecommendGo            Recommendation = "go"
	RecommendGoConditional Recommendation = "go_with_conditions"
	RecommendNoGo          Recommendation = "no_go"
	RecommendNeedsReview   Recommendation = "needs_further_review"
)

// ExecutiveSummary is the final, whole-brief synthesis.
type ExecutiveSummary struct {
	Overview                string         `json:"overview"`
	TopRisks                []string       `json:"top_risks"`
	RequiredApprovals       []string       `json:"required_approvals"`
	Recommendation          Recommendation `json:"recommendation"`
	RecommendationRationale string         `json:"recommendation_rationale"`
	KeyDependencies         []string       `json:"key_dependencies"`
}

// Assumption is a user-recorded assumption with a confidence level.
type Assumption struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Confidence string    `json:"confidence"` // low, medium, high
	CreatedAt  time.Time `json:"created_at"`
}

// Diff is the before/after pair recorded when a unit is regenerated. At most
// one Diff is retained per unit; the next regeneration overwrites it.
type Diff struct {
	OldContent string    `json:"old_content"`
	NewContent string    `json:"new_content"`
	Timestamp  time.Time `json:"timestamp"`
}

// Revision types.
const (
	RevisionFullGeneration          = "full_generation"
	RevisionSectionRegeneration     = "section_regeneration"
	RevisionStakeholderRegeneration = "stakeholder_regeneration"
	RevisionSummaryRefresh          = "summary_refresh"
)

// Revision is a coarse audit record, one per full or partial generation.
type Revision struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// Timeline event types.
const (
	EventCreated                = "created"
	EventGenerationStarted      = "generation_started"
	EventStageCompleted         = "stage_completed"
	EventGenerationComplete     = "generation_complete"
	EventGenerationFailed       = "generation_failed"
	EventSectionRegenerated     = "section_regenerated"
	EventStakeholderRegenerated = "stakeholder_regenerated"
	EventSummaryRefreshed       = "summary_refreshed"
	EventGenerationReset        = "generation_reset"
	EventChecklistToggled       = "checklist_toggled"
	EventSectionStatusSet       = "section_status_set"
	EventAssumptionChanged      = "assumption_changed"
)

// Event is a fine-grained, insertion-ordered timeline record. Events are
// append-only and never mutated or removed.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// StageOrder is the fixed pipeline stage sequence, excluding the terminal
// done marker.
var StageOrder = []GenerationStage{
	StageEntities,
	StageGraph,
	StagePRD,
	StageStakeholders,
	StageChecklist,
	StageTraceability,
}

// PRDSectionKeys are the ten fixed PRD section keys, in display order.
var PRDSectionKeys = []string{
	"problem_statement",
	"goals",
	"non_goals",
	"user_stories",
	"functional_requirements",
	"compliance_risk_requirements",
	"stakeholder_notes",
	"rollout_plan",
	"metrics",
	"open_questions",
}

// StakeholderNames are the six fixed stakeholder perspectives.
var StakeholderNames = []string{
	"Security",
	"Compliance",
	"Legal",
	"Finance",
	"Engineering",
	"Support",
}

// ChecklistCategories are the six fixed checklist categories.
var ChecklistCategories = []string{
	"Approvals",
	"Security Controls",
	"Testing Requirements",
	"Monitoring and Alerts",
	"Documentation Updates",
	"Release Steps",
}

// SensitiveDataClasses are the sensitivity values that force risk-to-compliance
// cross-linking in the graph.
var SensitiveDataClasses = []string{"PII", "Financial transactions"}

// IsValidPRDSection reports whether key is one of the fixed PRD section keys.
func IsValidPRDSection(key string) bool {
	for _, k := range PRDSectionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsValidStakeholder reports whether name is one of the fixed stakeholders.
func IsValidStakeholder(name string) bool {
	for _, n := range StakeholderNames {
		if n == name {
			return true
		}
	}
	return false
}
