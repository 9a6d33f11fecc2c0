package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStage_Entities(t *testing.T) {
	valid := `{
		"feature_summary": "Instant payouts for SMB customers.",
		"risks": [{"name": "fraud", "severity": "high", "description": "instant rails"}],
		"compliance_signals": [{"regulation": "PCI DSS", "relevance": "high", "description": "card data"}],
		"stakeholders": ["Security"],
		"metrics": [{"name": "payout latency", "type": "success", "description": "p95"}]
	}`
	assert.NoError(t, ValidateStage("entities", []byte(valid)))

	missing := `{"risks": []}`
	err := ValidateStage("entities", []byte(missing))
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidateStage_PRDRequiresAllTenKeys(t *testing.T) {
	payload := []byte(`{
		"problem_statement": "p", "goals": "g", "non_goals": "n", "user_stories": "u",
		"functional_requirements": "f", "compliance_risk_requirements": "c",
		"stakeholder_notes": "s", "rollout_plan": "r", "metrics": "m", "open_questions": "o"
	}`)
	assert.NoError(t, ValidateStage("prd", payload))

	incomplete := []byte(`{"problem_statement": "p", "goals": "g"}`)
	assert.Error(t, ValidateStage("prd", incomplete))

	extra := []byte(`{
		"problem_statement": "p", "goals": "g", "non_goals": "n", "user_stories": "u",
		"functional_requirements": "f", "compliance_risk_requirements": "c",
		"stakeholder_notes": "s", "rollout_plan": "r", "metrics": "m", "open_questions": "o",
		"surprise": "x"
	}`)
	assert.Error(t, ValidateStage("prd", extra))
}

func TestValidateStage_StakeholdersRequiresAllSix(t *testing.T) {
	pack := `{"concerns": ["c"], "required_controls": [], "required_approvals": [], "questions": []}`
	payload := []byte(`{
		"Security": ` + pack + `, "Compliance": ` + pack + `, "Legal": ` + pack + `,
		"Finance": ` + pack + `, "Engineering": ` + pack + `, "Support": ` + pack + `
	}`)
	assert.NoError(t, ValidateStage("stakeholders", payload))

	partial := []byte(`{"Security": ` + pack + `}`)
	assert.Error(t, ValidateStage("stakeholders", partial))
}

func TestValidateStage_ChecklistCategories(t *testing.T) {
	item := `{"item": "Security review sign-off", "checked": false, "owner": "", "include_in_export": true}`
	payload := []byte(`{
		"Approvals": [` + item + `], "Security Controls": [` + item + `],
		"Testing Requirements": [` + item + `], "Monitoring and Alerts": [` + item + `],
		"Documentation Updates": [` + item + `], "Release Steps": [` + item + `]
	}`)
	assert.NoError(t, ValidateStage("checklist", payload))

	assert.Error(t, ValidateStage("checklist", []byte(`{"Approvals": []}`)))
}

func TestValidateStage_Traceability(t *testing.T) {
	payload := []byte(`[{"requirement": "encrypt PII", "prd_section": "functional_requirements", "linked_node_ids": ["risk-0"], "rationale": "links"}]`)
	assert.NoError(t, ValidateStage("traceability", payload))

	assert.Error(t, ValidateStage("traceability", []byte(`[{"rationale": "no requirement"}]`)))
}

func TestValidateStage_ExecutiveSummaryRecommendationEnum(t *testing.T) {
	payload := []byte(`{"overview": "o", "recommendation": "go_with_conditions", "recommendation_rationale": "r"}`)
	assert.NoError(t, ValidateStage("executive_summary", payload))

	bad := []byte(`{"overview": "o", "recommendation": "maybe", "recommendation_rationale": "r"}`)
	assert.Error(t, ValidateStage("executive_summary", bad))
}

func TestValidateStage_UnknownStage(t *testing.T) {
	err := ValidateStage("nope", []byte(`{}`))
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}
