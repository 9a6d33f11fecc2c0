// Package stages implements the model-backed pipeline stages. Each stage
// builds its prompt from only the fields it declares as input, calls the
// model adapter, and validates the parsed payload against the stage schema
// before accepting it, so downstream code never sees undefined fields.
package stages

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/schemas"
)

// Caller is the adapter surface stages depend on. *llm.Adapter satisfies it;
// tests substitute a scripted fake.
type Caller interface {
	Call(ctx context.Context, prompt string) (json.RawMessage, error)
}

// callValidated runs a prompt through the adapter and validates the payload
// against the named stage schema. Schema violations surface as
// *llm.MalformedResponseError so the orchestrator treats them like any other
// unusable model output.
func callValidated(ctx context.Context, c Caller, stage, prompt string) (json.RawMessage, error) {
	payload, err := c.Call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateStage(stage, payload); err != nil {
		return nil, &llm.MalformedResponseError{
			Message: stage + " payload failed schema validation",
			Cause:   err,
		}
	}

	return payload, nil
}

// joinList renders a string slice for prompt interpolation.
func joinList(items []string) string {
	return strings.Join(items, ", ")
}

// mustJSON marshals v for prompt interpolation. Inputs are stage snapshots we
// constructed ourselves, so marshaling cannot fail.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
