package stages

import (
	"context"
	"encoding/json"

	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/prompts"
	"github.com/regulapm/nexus/internal/types"
)

// EntitiesInput is the snapshot of brief fields the entities stage reads.
// Keeping the input explicit makes the prompt reproducible in tests.
type EntitiesInput struct {
	Title           string
	MainInput       string
	InputType       types.InputType
	IndustryContext string
	DataSensitivity []string
	Geography       string
	LaunchType      string
	RiskTolerance   string
}

// EntitiesInputFromBrief snapshots the entities stage inputs from a brief.
func EntitiesInputFromBrief(brief *types.Brief) EntitiesInput {
	return EntitiesInput{
		Title:           brief.Title,
		MainInput:       brief.MainInput,
		InputType:       brief.InputType,
		IndustryContext: brief.IndustryContext,
		DataSensitivity: brief.DataSensitivity,
		Geography:       brief.Geography,
		LaunchType:      brief.LaunchType,
		RiskTolerance:   brief.RiskTolerance,
	}
}

// EntitiesPrompt builds the extraction prompt for the given input snapshot.
func EntitiesPrompt(input EntitiesInput) string {
	template := prompts.MustGet("stages.json", "entities")
	return prompts.Format(template, map[string]string{
		"Title":           input.Title,
		"MainInput":       input.MainInput,
		"InputType":       string(input.InputType),
		"Industry":        input.IndustryContext,
		"DataSensitivity": joinList(input.DataSensitivity),
		"Geography":       input.Geography,
		"LaunchType":      input.LaunchType,
		"RiskTolerance":   input.RiskTolerance,
	})
}

// ExtractEntities runs the first pipeline stage: structured entity extraction
// from the brief's raw input.
func ExtractEntities(ctx context.Context, c Caller, input EntitiesInput) (*types.Entities, error) {
	payload, err := callValidated(ctx, c, "entities", EntitiesPrompt(input))
	if err != nil {
		return nil, err
	}

	var entities types.Entities
	if err := json.Unmarshal(payload, &entities); err != nil {
		return nil, &llm.MalformedResponseError{Message: "entities payload did not decode", Cause: err}
	}

	// Missing optional sub-lists default to empty at the schema boundary.
	if entities.Entities == nil {
		entities.Entities = []string{}
	}
	if entities.Risks == nil {
		entities.Risks = []types.Risk{}
	}
	if entities.ComplianceSignals == nil {
		entities.ComplianceSignals = []types.ComplianceSignal{}
	}
	if entities.Stakeholders == nil {
		entities.Stakeholders = []string{}
	}
	if entities.Metrics == nil {
		entities.Metrics = []types.Metric{}
	}
	if entities.RolloutHints == nil {
		entities.RolloutHints = []string{}
	}

	return &entities, nil
}
