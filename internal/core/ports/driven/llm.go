package driven

import "context"

// GenerateOptions tunes a single LLM completion call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float32
	// JSONOutput asks the model to return a single JSON object.
	JSONOutput bool
}

// LLMService generates text completions. Optional: the indexer falls
// back to regex metadata extraction when no service is configured.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string
}
