package repository

import (
	"context"
	"time"

	"tenderpulse-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EvaluationRepository handles database operations for bid evaluations
type EvaluationRepository struct {
	db *pgxpool.Pool
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// ProjectEvaluation is one evaluated bid of a project, joined with the bid
// fields the aggregator and the owner-facing listing need.
type ProjectEvaluation struct {
	Evaluation  models.Evaluation `json:"evaluation"`
	BidAmount   float64           `json:"bid_amount"`
	Currency    string            `json:"currency"`
	BidderName  string            `json:"bidder_name"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
}

// RankAssignment carries one rank to write back after aggregation.
type RankAssignment struct {
	BidID uuid.UUID
	Rank  int
}

// Upsert inserts the evaluation for a bid or overwrites the existing one.
// Re-evaluation is idempotent: exactly one row per bid. The rank column is
// left alone on overwrite; re-ranking is a separate operation.
func (r *EvaluationRepository) Upsert(ctx context.Context, eval *models.Evaluation) error {
	query := `
		INSERT INTO evaluations (
			bid_id, technical_score, financial_score, compliance_score,
			overall_score, ai_analysis, is_qualified, is_shortlisted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (bid_id) DO UPDATE SET
			technical_score = EXCLUDED.technical_score,
			financial_score = EXCLUDED.financial_score,
			compliance_score = EXCLUDED.compliance_score,
			overall_score = EXCLUDED.overall_score,
			ai_analysis = EXCLUDED.ai_analysis,
			is_qualified = EXCLUDED.is_qualified,
			is_shortlisted = EXCLUDED.is_shortlisted,
			updated_at = NOW()
		RETURNING id, rank, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		eval.BidID,
		eval.TechnicalScore,
		eval.FinancialScore,
		eval.ComplianceScore,
		eval.OverallScore,
		eval.Analysis,
		eval.IsQualified,
		eval.IsShortlisted,
	).Scan(&eval.ID, &eval.Rank, &eval.CreatedAt, &eval.UpdatedAt)

	return err
}

// GetByBidID retrieves the evaluation for a bid
func (r *EvaluationRepository) GetByBidID(ctx context.Context, bidID uuid.UUID) (*models.Evaluation, error) {
	eval := &models.Evaluation{}
	query := `
		SELECT id, bid_id, technical_score, financial_score, compliance_score,
			overall_score, ai_analysis, is_qualified, is_shortlisted, rank,
			reviewer_notes, reviewed_by, reviewed_at, created_at, updated_at
		FROM evaluations
		WHERE bid_id = $1`

	err := r.db.QueryRow(ctx, query, bidID).Scan(
		&eval.ID,
		&eval.BidID,
		&eval.TechnicalScore,
		&eval.FinancialScore,
		&eval.ComplianceScore,
		&eval.OverallScore,
		&eval.Analysis,
		&eval.IsQualified,
		&eval.IsShortlisted,
		&eval.Rank,
		&eval.ReviewerNotes,
		&eval.ReviewedBy,
		&eval.ReviewedAt,
		&eval.CreatedAt,
		&eval.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return eval, nil
}

// ListByProjectID retrieves all evaluations for a project's bids in one
// batch, joined with bid and bidder fields. The single SELECT gives the
// aggregator a consistent snapshot to rank from.
func (r *EvaluationRepository) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*ProjectEvaluation, error) {
	query := `
		SELECT e.id, e.bid_id, e.technical_score, e.financial_score,
			e.compliance_score, e.overall_score, e.ai_analysis,
			e.is_qualified, e.is_shortlisted, e.rank,
			e.reviewer_notes, e.reviewed_by, e.reviewed_at,
			e.created_at, e.updated_at,
			b.bid_amount, b.currency, b.submitted_at,
			COALESCE(u.company_name, u.full_name)
		FROM evaluations e
		JOIN bids b ON b.id = e.bid_id
		JOIN users u ON u.id = b.bidder_id
		WHERE b.project_id = $1
		ORDER BY e.overall_score DESC`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []*ProjectEvaluation
	for rows.Next() {
		pe := &ProjectEvaluation{}
		err := rows.Scan(
			&pe.Evaluation.ID,
			&pe.Evaluation.BidID,
			&pe.Evaluation.TechnicalScore,
			&pe.Evaluation.FinancialScore,
			&pe.Evaluation.ComplianceScore,
			&pe.Evaluation.OverallScore,
			&pe.Evaluation.Analysis,
			&pe.Evaluation.IsQualified,
			&pe.Evaluation.IsShortlisted,
			&pe.Evaluation.Rank,
			&pe.Evaluation.ReviewerNotes,
			&pe.Evaluation.ReviewedBy,
			&pe.Evaluation.ReviewedAt,
			&pe.Evaluation.CreatedAt,
			&pe.Evaluation.UpdatedAt,
			&pe.BidAmount,
			&pe.Currency,
			&pe.SubmittedAt,
			&pe.BidderName,
		)
		if err != nil {
			return nil, err
		}
		evals = append(evals, pe)
	}

	return evals, rows.Err()
}

// UpdateRanks writes a batch of rank assignments in one transaction so a
// reader never observes a partially re-ranked bid set.
func (r *EvaluationRepository) UpdateRanks(ctx context.Context, ranks []RankAssignment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE evaluations SET
			rank = $2,
			updated_at = NOW()
		WHERE bid_id = $1`

	for _, assignment := range ranks {
		if _, err := tx.Exec(ctx, query, assignment.BidID, assignment.Rank); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
