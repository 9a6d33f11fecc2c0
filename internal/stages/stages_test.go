package stages

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulapm/nexus/internal/graph"
	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/types"
)

// scriptedCaller returns a canned payload and records the prompt it was
// given.
type scriptedCaller struct {
	payload string
	err     error
	prompts []string
}

func (s *scriptedCaller) Call(_ context.Context, prompt string) (json.RawMessage, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.payload), nil
}

func testBrief() *types.Brief {
	return &types.Brief{
		Title:           "Instant Payouts",
		MainInput:       "Enable instant payouts for SMB customers.",
		InputType:       types.InputFeatureIdea,
		IndustryContext: "Fintech",
		DataSensitivity: []string{"PII", "Financial transactions"},
		Geography:       "US",
		LaunchType:      "beta",
		RiskTolerance:   "low",
	}
}

func TestExtractEntities(t *testing.T) {
	caller := &scriptedCaller{payload: `{
		"feature_summary": "Instant payouts over RTP rails.",
		"risks": [{"name": "fraud", "severity": "high", "description": "d"}]
	}`}

	entities, err := ExtractEntities(context.Background(), caller, EntitiesInputFromBrief(testBrief()))
	require.NoError(t, err)

	assert.Equal(t, "Instant payouts over RTP rails.", entities.FeatureSummary)
	require.Len(t, entities.Risks, 1)

	// Missing optional lists default to empty, never nil.
	assert.NotNil(t, entities.ComplianceSignals)
	assert.NotNil(t, entities.Stakeholders)
	assert.NotNil(t, entities.Metrics)
	assert.NotNil(t, entities.RolloutHints)

	// Prompt is built from the declared brief fields.
	require.Len(t, caller.prompts, 1)
	assert.Contains(t, caller.prompts[0], "Instant Payouts")
	assert.Contains(t, caller.prompts[0], "Fintech")
	assert.Contains(t, caller.prompts[0], "PII, Financial transactions")
}

func TestExtractEntities_SchemaViolation(t *testing.T) {
	caller := &scriptedCaller{payload: `{"risks": []}`}

	_, err := ExtractEntities(context.Background(), caller, EntitiesInputFromBrief(testBrief()))
	require.Error(t, err)

	var malformed *llm.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestExtractEntities_AdapterErrorPassesThrough(t *testing.T) {
	wantErr := &llm.ModelExhaustedError{Attempts: 6, Err: errors.New("quota")}
	caller := &scriptedCaller{err: wantErr}

	_, err := ExtractEntities(context.Background(), caller, EntitiesInputFromBrief(testBrief()))
	var exhausted *llm.ModelExhaustedError
	require.ErrorAs(t, err, &exhausted)
}

func TestGeneratePRD(t *testing.T) {
	caller := &scriptedCaller{payload: `{
		"problem_statement": "p", "goals": "g", "non_goals": "n", "user_stories": "u",
		"functional_requirements": "f", "compliance_risk_requirements": "c",
		"stakeholder_notes": "s", "rollout_plan": "r", "metrics": "m", "open_questions": "o"
	}`}

	entities := &types.Entities{
		FeatureSummary:    "summary",
		Risks:             []types.Risk{{Name: "fraud"}},
		ComplianceSignals: []types.ComplianceSignal{{Regulation: "PCI DSS"}},
	}
	sections, err := GeneratePRD(context.Background(), caller, PRDInputFrom(testBrief(), entities))
	require.NoError(t, err)
	assert.Len(t, sections, len(types.PRDSectionKeys))

	assert.Contains(t, caller.prompts[0], "fraud")
	assert.Contains(t, caller.prompts[0], "PCI DSS")
}

func TestGeneratePRD_MissingSectionRejected(t *testing.T) {
	caller := &scriptedCaller{payload: `{"problem_statement": "p"}`}

	entities := &types.Entities{FeatureSummary: "summary"}
	_, err := GeneratePRD(context.Background(), caller, PRDInputFrom(testBrief(), entities))

	var malformed *llm.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestGenerateStakeholders(t *testing.T) {
	pack := `{"concerns": ["c"]}`
	caller := &scriptedCaller{payload: `{
		"Security": ` + pack + `, "Compliance": ` + pack + `, "Legal": ` + pack + `,
		"Finance": ` + pack + `, "Engineering": ` + pack + `, "Support": ` + pack + `
	}`}

	entities := &types.Entities{FeatureSummary: "summary"}
	critiques, err := GenerateStakeholders(context.Background(), caller, StakeholdersInputFrom(testBrief(), entities))
	require.NoError(t, err)
	require.Len(t, critiques, 6)

	// Nil lists are default-filled per pack.
	security := critiques["Security"]
	assert.Equal(t, []string{"c"}, security.Concerns)
	assert.NotNil(t, security.RequiredControls)
	assert.NotNil(t, security.RequiredApprovals)
	assert.NotNil(t, security.Questions)
}

func TestGenerateChecklist_ForcesUnchecked(t *testing.T) {
	item := `{"item": "Security sign-off", "checked": true, "owner": "sec", "include_in_export": true}`
	caller := &scriptedCaller{payload: `{
		"Approvals": [` + item + `], "Security Controls": [` + item + `],
		"Testing Requirements": [` + item + `], "Monitoring and Alerts": [` + item + `],
		"Documentation Updates": [` + item + `], "Release Steps": [` + item + `]
	}`}

	checklist, err := GenerateChecklist(context.Background(), caller, ChecklistInputFromBrief(testBrief()))
	require.NoError(t, err)
	require.Len(t, checklist, 6)

	for category, items := range checklist {
		for _, it := range items {
			assert.False(t, it.Checked, "items in %s must start unchecked", category)
		}
	}
}

func TestBuildTraceability(t *testing.T) {
	caller := &scriptedCaller{payload: `[
		{"requirement": "encrypt PII", "prd_section": "functional_requirements", "linked_node_ids": ["risk-0"], "rationale": "r"},
		{"requirement": "fraud monitoring", "prd_section": "compliance_risk_requirements"}
	]`}

	g := graph.Build(&types.Entities{FeatureSummary: "s"}, testBrief())
	prd := map[string]string{"functional_requirements": "f", "compliance_risk_requirements": "c"}

	entries, err := BuildTraceability(context.Background(), caller, TraceabilityInputFrom(prd, g))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotNil(t, entries[1].LinkedNodeIDs)

	assert.Contains(t, caller.prompts[0], "functional_requirements")
	assert.Contains(t, caller.prompts[0], graph.FeatureNodeID)
}

func TestGenerateExecutiveSummary(t *testing.T) {
	caller := &scriptedCaller{payload: `{
		"overview": "Ready with conditions.",
		"top_risks": ["fraud"],
		"recommendation": "go_with_conditions",
		"recommendation_rationale": "controls pending"
	}`}

	entities := &types.Entities{FeatureSummary: "s", Risks: []types.Risk{{Name: "fraud"}}}
	critiques := map[string]types.CritiquePack{
		"Security": {RequiredApprovals: []string{"CISO sign-off"}},
	}
	levels := map[string]types.RiskTier{"Security": types.RiskHigh}

	input := SummaryInputFrom(testBrief(), entities, critiques, nil, levels)
	summary, err := GenerateExecutiveSummary(context.Background(), caller, input)
	require.NoError(t, err)

	assert.Equal(t, types.RecommendGoConditional, summary.Recommendation)
	assert.NotNil(t, summary.RequiredApprovals)
	assert.NotNil(t, summary.KeyDependencies)

	assert.Contains(t, caller.prompts[0], "CISO sign-off")
	assert.Contains(t, caller.prompts[0], "fraud")
}

func TestGenerateExecutiveSummary_BadRecommendation(t *testing.T) {
	caller := &scriptedCaller{payload: `{
		"overview": "o", "recommendation": "ship it", "recommendation_rationale": "r"
	}`}

	input := SummaryInput{Title: "X"}
	_, err := GenerateExecutiveSummary(context.Background(), caller, input)

	var malformed *llm.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}
