package ai

import "context"

// GenerationSettings holds the sampling configuration for the scoring
// oracle. It is fixed at client construction time and not tunable per call.
type GenerationSettings struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// DefaultGenerationSettings returns the documented evaluation configuration
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		Temperature:     0.3,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 8192,
	}
}

// Oracle is the boundary to the external generative scoring service: one
// blocking call in, raw free-text answer out.
type Oracle interface {
	Score(ctx context.Context, prompt string) (string, error)
}

// OracleError wraps a transport, quota, or availability failure of the
// scoring call. The client performs no retries and enforces no timeout;
// callers needing resilience wrap the call with a context deadline and treat
// expiry as an OracleError too.
type OracleError struct {
	Err error
}

func (e *OracleError) Error() string {
	return "scoring oracle: " + e.Err.Error()
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
