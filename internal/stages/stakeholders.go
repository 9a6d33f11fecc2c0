package stages

import (
	"context"
	"encoding/json"

	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/prompts"
	"github.com/regulapm/nexus/internal/types"
)

// StakeholdersInput is the snapshot the stakeholder critique stage reads.
type StakeholdersInput struct {
	Title           string
	FeatureSummary  string
	IndustryContext string
	DataSensitivity []string
	Geography       string
	Risks           []types.Risk
	Compliance      []types.ComplianceSignal
}

// StakeholdersInputFrom snapshots the stakeholder stage inputs.
func StakeholdersInputFrom(brief *types.Brief, entities *types.Entities) StakeholdersInput {
	return StakeholdersInput{
		Title:           brief.Title,
		FeatureSummary:  entities.FeatureSummary,
		IndustryContext: brief.IndustryContext,
		DataSensitivity: brief.DataSensitivity,
		Geography:       brief.Geography,
		Risks:           entities.Risks,
		Compliance:      entities.ComplianceSignals,
	}
}

// StakeholdersPrompt builds the critique pack prompt.
func StakeholdersPrompt(input StakeholdersInput) string {
	template := prompts.MustGet("stages.json", "stakeholders")
	return prompts.Format(template, map[string]string{
		"Title":           input.Title,
		"FeatureSummary":  input.FeatureSummary,
		"Industry":        input.IndustryContext,
		"DataSensitivity": joinList(input.DataSensitivity),
		"Geography":       input.Geography,
		"RisksJSON":       mustJSON(input.Risks),
		"ComplianceJSON":  mustJSON(input.Compliance),
	})
}

// GenerateStakeholders produces a critique pack for each of the six fixed
// stakeholder perspectives.
func GenerateStakeholders(ctx context.Context, c Caller, input StakeholdersInput) (map[string]types.CritiquePack, error) {
	payload, err := callValidated(ctx, c, "stakeholders", StakeholdersPrompt(input))
	if err != nil {
		return nil, err
	}

	var critiques map[string]types.CritiquePack
	if err := json.Unmarshal(payload, &critiques); err != nil {
		return nil, &llm.MalformedResponseError{Message: "stakeholders payload did not decode", Cause: err}
	}

	for name, pack := range critiques {
		critiques[name] = fillCritiquePack(pack)
	}

	return critiques, nil
}

// fillCritiquePack defaults nil lists to empty so callers can index freely.
func fillCritiquePack(pack types.CritiquePack) types.CritiquePack {
	if pack.Concerns == nil {
		pack.Concerns = []string{}
	}
	if pack.RequiredControls == nil {
		pack.RequiredControls = []string{}
	}
	if pack.RequiredApprovals == nil {
		pack.RequiredApprovals = []string{}
	}
	if pack.Questions == nil {
		pack.Questions = []string{}
	}
	return pack
}
