package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// Adapter wraps a Client with retry, backoff, and model-fallback policy.
// It knows nothing about brief semantics: prompt in, parsed JSON out.
type Adapter struct {
	client  Client
	models  []string
	retries int

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewAdapter creates an adapter over client using the config's model list
// and retry budget.
func NewAdapter(client Client, config *Config) *Adapter {
	if config == nil {
		config = DefaultConfig()
	}
	retries := config.Retries
	if retries < 1 {
		retries = 1
	}
	return &Adapter{
		client:  client,
		models:  append([]string(nil), config.Models...),
		retries: retries,
		sleep:   time.Sleep,
	}
}

// Models returns the configured model list, primary first.
func (a *Adapter) Models() []string {
	return append([]string(nil), a.models...)
}

// Call sends prompt to the first model that produces a usable response and
// returns the parsed JSON payload.
//
// Per model it attempts up to the retry budget, sleeping 2^attempt seconds
// plus jitter after a transient (rate-limit/quota) failure. Once a model's
// retries are exhausted it advances to the next model with a fresh attempt
// count. A JSON parse failure or a non-transient API failure aborts
// immediately without trying further models. When every model is exhausted
// by transient failures, Call fails with *ModelExhaustedError carrying the
// last underlying error.
func (a *Adapter) Call(ctx context.Context, prompt string) (json.RawMessage, error) {
	if len(a.models) == 0 {
		return nil, fmt.Errorf("no models configured")
	}

	attempts := 0
	var lastErr error

	for _, model := range a.models {
		for attempt := 0; attempt < a.retries; attempt++ {
			attempts++

			text, err := a.client.GenerateJSON(ctx, prompt, model)
			if err == nil {
				var payload json.RawMessage
				if jsonErr := json.Unmarshal([]byte(text), &payload); jsonErr != nil {
					return nil, &MalformedResponseError{
						Message: fmt.Sprintf("model %s returned invalid JSON", model),
						Cause:   jsonErr,
					}
				}
				return payload, nil
			}

			if !IsTransient(err) {
				return nil, fmt.Errorf("model %s request failed: %w", model, err)
			}

			lastErr = err
			if attempt < a.retries-1 {
				a.sleep(backoff(attempt))
			}
		}
		// Retries exhausted on this model; fall through to the next one.
	}

	return nil, &ModelExhaustedError{Attempts: attempts, Err: lastErr}
}

// backoff returns 2^attempt seconds plus up to 500ms of jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	jitter := time.Duration(rand.Intn(500)) * time.Millisecond
	return base + jitter
}
