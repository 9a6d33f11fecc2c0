package stages

import (
	"context"
	"encoding/json"

	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/prompts"
	"github.com/regulapm/nexus/internal/types"
)

// PRDInput is the snapshot the PRD stage reads: brief framing plus the names
// extracted by the entities stage.
type PRDInput struct {
	Title           string
	FeatureSummary  string
	IndustryContext string
	Geography       string
	RiskTolerance   string
	LaunchType      string
	DataSensitivity []string
	RiskNames       []string
	Regulations     []string
}

// PRDInputFrom snapshots the PRD stage inputs from a brief and its entities.
func PRDInputFrom(brief *types.Brief, entities *types.Entities) PRDInput {
	input := PRDInput{
		Title:           brief.Title,
		FeatureSummary:  entities.FeatureSummary,
		IndustryContext: brief.IndustryContext,
		Geography:       brief.Geography,
		RiskTolerance:   brief.RiskTolerance,
		LaunchType:      brief.LaunchType,
		DataSensitivity: brief.DataSensitivity,
	}
	for _, r := range entities.Risks {
		input.RiskNames = append(input.RiskNames, r.Name)
	}
	for _, c := range entities.ComplianceSignals {
		input.Regulations = append(input.Regulations, c.Regulation)
	}
	return input
}

// PRDPrompt builds the PRD generation prompt.
func PRDPrompt(input PRDInput) string {
	template := prompts.MustGet("stages.json", "prd")
	return prompts.Format(template, map[string]string{
		"Title":           input.Title,
		"FeatureSummary":  input.FeatureSummary,
		"Industry":        input.IndustryContext,
		"Geography":       input.Geography,
		"RiskTolerance":   input.RiskTolerance,
		"LaunchType":      input.LaunchType,
		"DataSensitivity": joinList(input.DataSensitivity),
		"RiskNames":       joinList(input.RiskNames),
		"Regulations":     joinList(input.Regulations),
	})
}

// GeneratePRD produces the ten fixed PRD sections as markdown text.
func GeneratePRD(ctx context.Context, c Caller, input PRDInput) (map[string]string, error) {
	payload, err := callValidated(ctx, c, "prd", PRDPrompt(input))
	if err != nil {
		return nil, err
	}

	var sections map[string]string
	if err := json.Unmarshal(payload, &sections); err != nil {
		return nil, &llm.MalformedResponseError{Message: "prd payload did not decode", Cause: err}
	}

	return sections, nil
}
