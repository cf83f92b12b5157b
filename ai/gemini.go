package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiOracle scores evaluation prompts with a Google Gemini model.
type GeminiOracle struct {
	model *genai.GenerativeModel
}

// NewGeminiOracle creates a Gemini-backed oracle with the given sampling
// configuration baked in.
func NewGeminiOracle(ctx context.Context, apiKey, modelName string, settings GenerationSettings) (*GeminiOracle, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(settings.Temperature)
	model.SetTopP(settings.TopP)
	model.SetTopK(settings.TopK)
	model.SetMaxOutputTokens(settings.MaxOutputTokens)

	return &GeminiOracle{model: model}, nil
}

// Score sends the prompt and returns the model's raw text answer. Any
// failure surfaces as an *OracleError; the caller decides whether to retry.
func (o *GeminiOracle) Score(ctx context.Context, prompt string) (string, error) {
	resp, err := o.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &OracleError{Err: err}
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}

	if b.Len() == 0 {
		return "", &OracleError{Err: errors.New("model returned no text candidates")}
	}

	return b.String(), nil
}
