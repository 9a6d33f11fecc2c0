package stages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/prompts"
	"github.com/regulapm/nexus/internal/types"
)

// SummaryInput is the snapshot the executive summary stage reads. It is
// computed from the accumulated state of every earlier stage.
type SummaryInput struct {
	Title             string
	FeatureSummary    string
	IndustryContext   string
	RiskTolerance     string
	RiskNames         []string
	RiskLevels        map[string]types.RiskTier
	RequiredApprovals []string
	ChecklistSummary  []string
}

// SummaryInputFrom snapshots the executive summary inputs from the brief's
// accumulated artifacts.
func SummaryInputFrom(brief *types.Brief, entities *types.Entities, critiques map[string]types.CritiquePack, checklist map[string][]types.ChecklistItem, riskLevels map[string]types.RiskTier) SummaryInput {
	input := SummaryInput{
		Title:           brief.Title,
		FeatureSummary:  entities.FeatureSummary,
		IndustryContext: brief.IndustryContext,
		RiskTolerance:   brief.RiskTolerance,
		RiskLevels:      riskLevels,
	}

	for _, r := range entities.Risks {
		input.RiskNames = append(input.RiskNames, r.Name)
	}

	for _, name := range types.StakeholderNames {
		if pack, ok := critiques[name]; ok {
			input.RequiredApprovals = append(input.RequiredApprovals, pack.RequiredApprovals...)
		}
	}

	for _, category := range types.ChecklistCategories {
		if items, ok := checklist[category]; ok {
			input.ChecklistSummary = append(input.ChecklistSummary, fmt.Sprintf("%s: %d items", category, len(items)))
		}
	}

	return input
}

// SummaryPrompt builds the executive summary prompt.
func SummaryPrompt(input SummaryInput) string {
	template := prompts.MustGet("stages.json", "executive_summary")
	return prompts.Format(template, map[string]string{
		"Title":            input.Title,
		"FeatureSummary":   input.FeatureSummary,
		"Industry":         input.IndustryContext,
		"RiskTolerance":    input.RiskTolerance,
		"RiskNames":        joinList(input.RiskNames),
		"RiskLevelsJSON":   mustJSON(input.RiskLevels),
		"ApprovalsJSON":    mustJSON(input.RequiredApprovals),
		"ChecklistSummary": joinList(input.ChecklistSummary),
	})
}

// GenerateExecutiveSummary produces the final, whole-brief synthesis with a
// go/no-go recommendation.
func GenerateExecutiveSummary(ctx context.Context, c Caller, input SummaryInput) (*types.ExecutiveSummary, error) {
	payload, err := callValidated(ctx, c, "executive_summary", SummaryPrompt(input))
	if err != nil {
		return nil, err
	}

	var summary types.ExecutiveSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, &llm.MalformedResponseError{Message: "executive summary payload did not decode", Cause: err}
	}

	if summary.TopRisks == nil {
		summary.TopRisks = []string{}
	}
	if summary.RequiredApprovals == nil {
		summary.RequiredApprovals = []string{}
	}
	if summary.KeyDependencies == nil {
		summary.KeyDependencies = []string{}
	}

	return &summary, nil
}
