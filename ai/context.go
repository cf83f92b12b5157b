package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tenderpulse-backend/models"

	"github.com/google/uuid"
)

const (
	// maxSourceChars caps how much of a document's extracted text is
	// considered per evaluation request.
	maxSourceChars = 5000
	// maxExcerptChars caps the excerpt of each document rendered into the
	// prompt.
	maxExcerptChars = 2000
	// truncationMarker is appended to an excerpt that was cut short.
	truncationMarker = "..."
)

// BidInfo carries the bid identity shown to the oracle.
type BidInfo struct {
	BidID       uuid.UUID
	CompanyName string
	BidAmount   float64
	Currency    string
	SubmittedAt *time.Time
}

// DocumentInput is one extracted document entering the request builder.
type DocumentInput struct {
	DocumentType string
	Filename     string
	Text         string
	Metadata     map[string]interface{}
}

// DocumentExcerpt is a truncated document grouped into the context.
type DocumentExcerpt struct {
	Filename string
	Content  string
	Metadata map[string]interface{}
}

// EvaluationContext is the structured evaluation request assembled for one
// bid. It is built fresh per request and never persisted.
type EvaluationContext struct {
	Bid        BidInfo
	Criteria   models.CriteriaWeights
	Documents  map[string][]DocumentExcerpt
	categories []string // first-seen order of document types
}

// BuildEvaluationContext groups extracted documents by type, preserving
// upload order within a group, and bounds each document to maxSourceChars.
// It performs no scoring.
func BuildEvaluationContext(bid BidInfo, criteria models.CriteriaWeights, documents []DocumentInput) *EvaluationContext {
	ec := &EvaluationContext{
		Bid:       bid,
		Criteria:  criteria,
		Documents: make(map[string][]DocumentExcerpt),
	}

	for _, doc := range documents {
		docType := doc.DocumentType
		if docType == "" {
			docType = "unknown"
		}
		if _, seen := ec.Documents[docType]; !seen {
			ec.categories = append(ec.categories, docType)
		}
		ec.Documents[docType] = append(ec.Documents[docType], DocumentExcerpt{
			Filename: doc.Filename,
			Content:  truncateRunes(doc.Text, maxSourceChars),
			Metadata: doc.Metadata,
		})
	}

	return ec
}

// Categories returns the document types in first-seen order
func (c *EvaluationContext) Categories() []string {
	return c.categories
}

// Prompt renders the evaluation request for the scoring oracle. The criteria
// weights appear verbatim so the model can be instructed to honor them.
func (c *EvaluationContext) Prompt() string {
	criteriaJSON, _ := json.MarshalIndent(c.Criteria, "", "  ")

	submitted := "N/A"
	if c.Bid.SubmittedAt != nil {
		submitted = c.Bid.SubmittedAt.UTC().Format(time.RFC3339)
	}

	var docs strings.Builder
	for _, docType := range c.categories {
		docs.WriteString(fmt.Sprintf("\n### %s DOCUMENTS\n", strings.ToUpper(docType)))
		for _, doc := range c.Documents[docType] {
			docs.WriteString(fmt.Sprintf("\n**File: %s**\n", doc.Filename))
			docs.WriteString(renderExcerpt(doc.Content))
			docs.WriteString("\n")
		}
	}

	return fmt.Sprintf(`You are an expert procurement evaluator analyzing a bid submission for a tender/project. Your task is to thoroughly evaluate the bid against the specified criteria and provide detailed scoring.

## PROJECT CRITERIA
%s

## BID INFORMATION
- Bidder: %s
- Bid Amount: %.2f %s
- Submission Date: %s

## SUBMITTED DOCUMENTS
%s

## EVALUATION TASK

Please evaluate this bid comprehensively and provide your analysis in the following JSON format:

{
  "technical_evaluation": {
    "score": <0-100>,
    "strengths": [<list of technical strengths>],
    "weaknesses": [<list of technical weaknesses>],
    "key_findings": "<detailed technical assessment>"
  },
  "financial_evaluation": {
    "score": <0-100>,
    "competitiveness": "<assessment of pricing>",
    "financial_stability": "<assessment from financial docs>",
    "key_findings": "<detailed financial assessment>"
  },
  "compliance_evaluation": {
    "score": <0-100>,
    "status": "pass" or "fail",
    "missing_requirements": [<list any missing required items>],
    "compliance_issues": [<list any compliance concerns>]
  },
  "overall_assessment": {
    "overall_score": <weighted average based on criteria weights>,
    "recommendation": "award" or "shortlist" or "reject",
    "ranking_justification": "<why this bid should be ranked as it is>",
    "risk_factors": [<list any risk factors>],
    "summary": "<executive summary of the bid evaluation>"
  }
}

IMPORTANT GUIDELINES:
- Be objective and thorough
- Base scores on evidence from documents
- Consider the project criteria weights: Technical (%g%%), Financial (%g%%)
- Flag any red flags or concerns
- Provide actionable insights
- Ensure scores are realistic and justified

Return ONLY the JSON object, no additional text or markdown formatting.`,
		string(criteriaJSON),
		c.Bid.CompanyName,
		c.Bid.BidAmount,
		c.Bid.Currency,
		submitted,
		docs.String(),
		c.Criteria.TechnicalWeight,
		c.Criteria.FinancialWeight,
	)
}

// renderExcerpt caps a document's visible excerpt and marks the cut.
func renderExcerpt(content string) string {
	if len([]rune(content)) <= maxExcerptChars {
		return content
	}
	return truncateRunes(content, maxExcerptChars) + truncationMarker
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
