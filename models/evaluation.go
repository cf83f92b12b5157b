package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AIAnalysis holds the normalized free-form analysis returned by the scoring
// oracle (strengths, weaknesses, compliance status, recommendation, summary,
// and the raw oracle text when normalization degraded).
type AIAnalysis map[string]interface{}

// Value implements driver.Valuer for JSONB
func (a AIAnalysis) Value() (driver.Value, error) {
	if a == nil {
		a = make(AIAnalysis)
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *AIAnalysis) Scan(value interface{}) error {
	if value == nil {
		*a = make(AIAnalysis)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*a = make(AIAnalysis)
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Evaluation represents the evaluation record for a single bid. One row per
// bid; re-evaluation overwrites it. Rank is assigned only by per-project
// aggregation and is meaningful only within one project's bid set.
type Evaluation struct {
	ID              uuid.UUID  `json:"id"`
	BidID           uuid.UUID  `json:"bid_id"`
	TechnicalScore  float64    `json:"technical_score"`
	FinancialScore  float64    `json:"financial_score"`
	ComplianceScore float64    `json:"compliance_score"`
	OverallScore    float64    `json:"overall_score"`
	Analysis        AIAnalysis `json:"ai_analysis"`
	IsQualified     bool       `json:"is_qualified"`
	IsShortlisted   bool       `json:"is_shortlisted"`
	Rank            *int       `json:"rank,omitempty"`
	ReviewerNotes   *string    `json:"reviewer_notes,omitempty"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BidderEvaluationView is the restricted projection of an evaluation exposed
// to the bidder who owns the bid. The full analysis fields stay with the
// evaluation-owning organization.
type BidderEvaluationView struct {
	BidID          uuid.UUID `json:"bid_id"`
	OverallScore   float64   `json:"overall_score"`
	IsQualified    bool      `json:"is_qualified"`
	IsShortlisted  bool      `json:"is_shortlisted"`
	Rank           *int      `json:"rank,omitempty"`
	EvaluationDate time.Time `json:"evaluation_date"`
}

// BidderView returns the redacted projection of the evaluation
func (e *Evaluation) BidderView() BidderEvaluationView {
	return BidderEvaluationView{
		BidID:          e.BidID,
		OverallScore:   e.OverallScore,
		IsQualified:    e.IsQualified,
		IsShortlisted:  e.IsShortlisted,
		Rank:           e.Rank,
		EvaluationDate: e.CreatedAt,
	}
}
