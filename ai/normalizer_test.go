package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedAnswer = `{
  "technical_evaluation": {"score": 80, "strengths": ["solid team"], "key_findings": "capable"},
  "financial_evaluation": {"score": 90, "competitiveness": "strong"},
  "compliance_evaluation": {"score": 60, "status": "pass"},
  "overall_assessment": {"recommendation": "shortlist", "summary": "good bid"}
}`

func TestNormalizeEvaluationBackfillsOverallScore(t *testing.T) {
	eval := NormalizeEvaluation(wellFormedAnswer)

	require.NotNil(t, eval.Overall.OverallScore)
	// 0.5*80 + 0.3*90 + 0.2*60
	assert.Equal(t, 79.0, eval.OverallScore())
	assert.False(t, eval.Degraded())
	assert.Equal(t, 80.0, eval.Technical.Score)
	assert.Equal(t, "shortlist", eval.Overall.Recommendation)
}

func TestNormalizeEvaluationKeepsExplicitOverallScore(t *testing.T) {
	raw := `{
  "technical_evaluation": {"score": 10},
  "financial_evaluation": {"score": 10},
  "compliance_evaluation": {"score": 10},
  "overall_assessment": {"overall_score": 88.5, "recommendation": "award"}
}`
	eval := NormalizeEvaluation(raw)

	assert.Equal(t, 88.5, eval.OverallScore())
	assert.False(t, eval.Degraded())
}

func TestNormalizeEvaluationStripsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + wellFormedAnswer + "\n```"
	eval := NormalizeEvaluation(fenced)

	assert.False(t, eval.Degraded())
	assert.Equal(t, 79.0, eval.OverallScore())

	bare := "```\n" + wellFormedAnswer + "\n```"
	eval = NormalizeEvaluation(bare)
	assert.False(t, eval.Degraded())
}

func TestNormalizeEvaluationExtractsJSONFromProse(t *testing.T) {
	chatty := "Here is my evaluation of the bid:\n\n" + wellFormedAnswer + "\n\nLet me know if you need more detail."
	eval := NormalizeEvaluation(chatty)

	assert.False(t, eval.Degraded())
	assert.Equal(t, 79.0, eval.OverallScore())
}

func TestNormalizeEvaluationDegradesOnUnparsableAnswer(t *testing.T) {
	raw := "I am unable to evaluate this bid."
	eval := NormalizeEvaluation(raw)

	assert.True(t, eval.Degraded())
	assert.Equal(t, raw, eval.RawResponse)
	assert.Equal(t, 0.0, eval.Technical.Score)
	assert.Equal(t, 0.0, eval.Financial.Score)
	assert.Equal(t, 0.0, eval.Compliance.Score)
	assert.Equal(t, 0.0, eval.OverallScore())
	assert.Equal(t, "fail", eval.Compliance.Status)
	assert.Equal(t, "reject", eval.Overall.Recommendation)
	assert.Contains(t, eval.Overall.Summary, "Error parsing evaluation:")
}

func TestNormalizeEvaluationDegradesOnMalformedJSON(t *testing.T) {
	raw := `{"technical_evaluation": {"score": `
	eval := NormalizeEvaluation(raw)

	assert.True(t, eval.Degraded())
	assert.Equal(t, raw, eval.RawResponse)
}

func TestNormalizeEvaluationIsDeterministic(t *testing.T) {
	inputs := []string{
		wellFormedAnswer,
		"garbage answer",
		"```json\n" + wellFormedAnswer + "\n```",
	}
	for _, raw := range inputs {
		first := NormalizeEvaluation(raw)
		second := NormalizeEvaluation(raw)
		assert.Equal(t, first, second)
	}
}

func TestNormalizeEvaluationRoundsBackfilledScore(t *testing.T) {
	raw := `{
  "technical_evaluation": {"score": 33.333},
  "financial_evaluation": {"score": 33.333},
  "compliance_evaluation": {"score": 33.333},
  "overall_assessment": {}
}`
	eval := NormalizeEvaluation(raw)

	// 0.5*33.333 + 0.3*33.333 + 0.2*33.333 = 33.333, rounded to 2 decimals
	assert.Equal(t, 33.33, eval.OverallScore())
}
