package stages

import (
	"context"
	"encoding/json"

	"github.com/regulapm/nexus/internal/graph"
	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/prompts"
	"github.com/regulapm/nexus/internal/types"
)

// TraceabilityInput is the snapshot the traceability stage reads: PRD section
// keys plus compact graph node summaries.
type TraceabilityInput struct {
	SectionKeys   []string
	NodeSummaries []map[string]string
}

// TraceabilityInputFrom snapshots the traceability stage inputs.
func TraceabilityInputFrom(prdSections map[string]string, g *types.Graph) TraceabilityInput {
	keys := make([]string, 0, len(types.PRDSectionKeys))
	for _, key := range types.PRDSectionKeys {
		if _, ok := prdSections[key]; ok {
			keys = append(keys, key)
		}
	}
	return TraceabilityInput{
		SectionKeys:   keys,
		NodeSummaries: graph.NodeSummaries(g),
	}
}

// TraceabilityPrompt builds the requirement-to-node mapping prompt.
func TraceabilityPrompt(input TraceabilityInput) string {
	template := prompts.MustGet("stages.json", "traceability")
	return prompts.Format(template, map[string]string{
		"SectionKeys":   mustJSON(input.SectionKeys),
		"NodeSummaries": mustJSON(input.NodeSummaries),
	})
}

// BuildTraceability maps PRD requirements to graph nodes.
func BuildTraceability(ctx context.Context, c Caller, input TraceabilityInput) ([]types.TraceEntry, error) {
	payload, err := callValidated(ctx, c, "traceability", TraceabilityPrompt(input))
	if err != nil {
		return nil, err
	}

	var entries []types.TraceEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, &llm.MalformedResponseError{Message: "traceability payload did not decode", Cause: err}
	}

	for i := range entries {
		if entries[i].LinkedNodeIDs == nil {
			entries[i].LinkedNodeIDs = []string{}
		}
	}

	return entries, nil
}
