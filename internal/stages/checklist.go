package stages

import (
	"context"
	"encoding/json"

	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/prompts"
	"github.com/regulapm/nexus/internal/types"
)

// ChecklistInput is the snapshot the checklist stage reads.
type ChecklistInput struct {
	Title           string
	IndustryContext string
	LaunchType      string
	DataSensitivity []string
	Geography       string
}

// ChecklistInputFromBrief snapshots the checklist stage inputs.
func ChecklistInputFromBrief(brief *types.Brief) ChecklistInput {
	return ChecklistInput{
		Title:           brief.Title,
		IndustryContext: brief.IndustryContext,
		LaunchType:      brief.LaunchType,
		DataSensitivity: brief.DataSensitivity,
		Geography:       brief.Geography,
	}
}

// ChecklistPrompt builds the launch checklist prompt.
func ChecklistPrompt(input ChecklistInput) string {
	template := prompts.MustGet("stages.json", "checklist")
	return prompts.Format(template, map[string]string{
		"Title":           input.Title,
		"Industry":        input.IndustryContext,
		"LaunchType":      input.LaunchType,
		"DataSensitivity": joinList(input.DataSensitivity),
		"Geography":       input.Geography,
	})
}

// GenerateChecklist produces the launch and compliance checklist. Every item
// starts unchecked regardless of what the model returned; checking items is
// exclusively a user action.
func GenerateChecklist(ctx context.Context, c Caller, input ChecklistInput) (map[string][]types.ChecklistItem, error) {
	payload, err := callValidated(ctx, c, "checklist", ChecklistPrompt(input))
	if err != nil {
		return nil, err
	}

	var checklist map[string][]types.ChecklistItem
	if err := json.Unmarshal(payload, &checklist); err != nil {
		return nil, &llm.MalformedResponseError{Message: "checklist payload did not decode", Cause: err}
	}

	for category, items := range checklist {
		for i := range items {
			items[i].Checked = false
		}
		checklist[category] = items
	}

	return checklist, nil
}
