package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Fixed fallback weights used when the oracle omits the overall score.
// Independent of the tender's own criteria weights.
const (
	fallbackTechnicalWeight  = 0.5
	fallbackFinancialWeight  = 0.3
	fallbackComplianceWeight = 0.2
)

// jsonSpanRe greedily locates the outermost {...} span in the answer.
var jsonSpanRe = regexp.MustCompile(`(?s)\{.*\}`)

// TechnicalEvaluation is the oracle's technical assessment.
type TechnicalEvaluation struct {
	Score       float64  `json:"score"`
	Strengths   []string `json:"strengths,omitempty"`
	Weaknesses  []string `json:"weaknesses,omitempty"`
	KeyFindings string   `json:"key_findings,omitempty"`
}

// FinancialEvaluation is the oracle's financial assessment.
type FinancialEvaluation struct {
	Score              float64 `json:"score"`
	Competitiveness    string  `json:"competitiveness,omitempty"`
	FinancialStability string  `json:"financial_stability,omitempty"`
	KeyFindings        string  `json:"key_findings,omitempty"`
}

// ComplianceEvaluation is the oracle's compliance assessment.
type ComplianceEvaluation struct {
	Score               float64  `json:"score"`
	Status              string   `json:"status,omitempty"`
	MissingRequirements []string `json:"missing_requirements,omitempty"`
	ComplianceIssues    []string `json:"compliance_issues,omitempty"`
}

// OverallAssessment combines the dimensions. OverallScore is a pointer so an
// absent score can be detected and back-filled.
type OverallAssessment struct {
	OverallScore         *float64 `json:"overall_score,omitempty"`
	Recommendation       string   `json:"recommendation,omitempty"`
	RankingJustification string   `json:"ranking_justification,omitempty"`
	RiskFactors          []string `json:"risk_factors,omitempty"`
	Summary              string   `json:"summary,omitempty"`
}

// Evaluation is the normalized, bounded evaluation record extracted from the
// oracle's free-text answer. RawResponse is only filled when normalization
// degraded, preserving the original answer for audit.
type Evaluation struct {
	Technical   TechnicalEvaluation  `json:"technical_evaluation"`
	Financial   FinancialEvaluation  `json:"financial_evaluation"`
	Compliance  ComplianceEvaluation `json:"compliance_evaluation"`
	Overall     OverallAssessment    `json:"overall_assessment"`
	RawResponse string               `json:"raw_response,omitempty"`
}

// OverallScore returns the overall score, which is always present after
// normalization.
func (e *Evaluation) OverallScore() float64 {
	if e.Overall.OverallScore == nil {
		return 0
	}
	return *e.Overall.OverallScore
}

// Degraded reports whether this record came from the unparsable-answer path
func (e *Evaluation) Degraded() bool {
	return e.RawResponse != ""
}

// NormalizeEvaluation extracts a structured evaluation from the oracle's raw
// answer: strip a markdown code fence if present, restrict to the first
// greedy {...} span, then parse strictly. A missing overall score is
// computed from the fixed fallback weights. On any parse failure the result
// degrades to a zero-score record carrying the original text; this function
// never fails and is deterministic for identical input.
func NormalizeEvaluation(raw string) *Evaluation {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSpace(cleaned)
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}

	if span := jsonSpanRe.FindString(cleaned); span != "" {
		cleaned = span
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &eval); err != nil {
		return degradedEvaluation(raw, err)
	}

	if eval.Overall.OverallScore == nil {
		overall := round2(fallbackTechnicalWeight*eval.Technical.Score +
			fallbackFinancialWeight*eval.Financial.Score +
			fallbackComplianceWeight*eval.Compliance.Score)
		eval.Overall.OverallScore = &overall
	}

	return &eval
}

// degradedEvaluation is the placeholder returned when the answer could not
// be interpreted. All scores are zero and the raw answer is kept for audit.
func degradedEvaluation(raw string, parseErr error) *Evaluation {
	zero := 0.0
	return &Evaluation{
		Technical:  TechnicalEvaluation{KeyFindings: "Evaluation parsing failed"},
		Financial:  FinancialEvaluation{KeyFindings: "Evaluation parsing failed"},
		Compliance: ComplianceEvaluation{Status: "fail"},
		Overall: OverallAssessment{
			OverallScore:   &zero,
			Recommendation: "reject",
			Summary:        fmt.Sprintf("Error parsing evaluation: %v", parseErr),
		},
		RawResponse: raw,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
