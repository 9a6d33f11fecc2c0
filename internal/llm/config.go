// Package llm provides the Gemini client and the resilient model-call
// adapter used by every model-backed pipeline stage.
package llm

// Provider represents an LLM provider.
type Provider string

// Provider constants define supported LLM providers.
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (future)
	ProviderOpenAI Provider = "openai"
)

// Config holds the model configuration for the adapter. Models are ordered
// primary first, degrading in capability and cost; the adapter falls back
// down the list when a model keeps rate-limiting.
type Config struct {
	Provider    Provider
	Models      []string
	Retries     int
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini).
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.5-flash-lite",
		},
		Retries:     3,
		Temperature: 0.7,
	}
}

// WithModels returns a copy of the config with the model list replaced.
// Empty input leaves the list unchanged.
func (c *Config) WithModels(models []string) *Config {
	out := *c
	if len(models) > 0 {
		out.Models = append([]string(nil), models...)
	}
	return &out
}
