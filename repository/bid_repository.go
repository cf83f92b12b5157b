package repository

import (
	"context"
	"fmt"
	"time"

	"tenderpulse-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository handles database operations for bids
type BidRepository struct {
	db *pgxpool.Pool
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *pgxpool.Pool) *BidRepository {
	return &BidRepository{db: db}
}

// Create creates a new bid
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (
			project_id, bidder_id, status, bid_amount, currency, cover_letter
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		bid.ProjectID,
		bid.BidderID,
		bid.Status,
		bid.BidAmount,
		bid.Currency,
		bid.CoverLetter,
	).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)

	return err
}

// GetByID retrieves a bid by ID
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	bid := &models.Bid{}
	query := `
		SELECT id, project_id, bidder_id, status, bid_amount, currency,
			cover_letter, submitted_at, created_at, updated_at
		FROM bids
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&bid.ID,
		&bid.ProjectID,
		&bid.BidderID,
		&bid.Status,
		&bid.BidAmount,
		&bid.Currency,
		&bid.CoverLetter,
		&bid.SubmittedAt,
		&bid.CreatedAt,
		&bid.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return bid, nil
}

// GetByProjectAndBidder retrieves a bidder's bid on a project, if any
func (r *BidRepository) GetByProjectAndBidder(ctx context.Context, projectID, bidderID uuid.UUID) (*models.Bid, error) {
	bid := &models.Bid{}
	query := `
		SELECT id, project_id, bidder_id, status, bid_amount, currency,
			cover_letter, submitted_at, created_at, updated_at
		FROM bids
		WHERE project_id = $1 AND bidder_id = $2`

	err := r.db.QueryRow(ctx, query, projectID, bidderID).Scan(
		&bid.ID,
		&bid.ProjectID,
		&bid.BidderID,
		&bid.Status,
		&bid.BidAmount,
		&bid.Currency,
		&bid.CoverLetter,
		&bid.SubmittedAt,
		&bid.CreatedAt,
		&bid.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return bid, nil
}

// UpdateStatus updates only the bid status
func (r *BidRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BidStatus) error {
	query := `
		UPDATE bids SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// MarkSubmitted sets the bid status to submitted and stamps the submission time
func (r *BidRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, submittedAt time.Time) error {
	query := `
		UPDATE bids SET
			status = $2,
			submitted_at = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.BidStatusSubmitted, submittedAt)
	return err
}

// ListByProjectID retrieves all bids for a project, newest submission first
func (r *BidRepository) ListByProjectID(ctx context.Context, projectID uuid.UUID, status *models.BidStatus) ([]*models.Bid, error) {
	query := `
		SELECT id, project_id, bidder_id, status, bid_amount, currency,
			cover_letter, submitted_at, created_at, updated_at
		FROM bids
		WHERE project_id = $1`

	args := []interface{}{projectID}
	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *status)
	}

	query += " ORDER BY submitted_at DESC NULLS LAST, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*models.Bid
	for rows.Next() {
		bid := &models.Bid{}
		err := rows.Scan(
			&bid.ID,
			&bid.ProjectID,
			&bid.BidderID,
			&bid.Status,
			&bid.BidAmount,
			&bid.Currency,
			&bid.CoverLetter,
			&bid.SubmittedAt,
			&bid.CreatedAt,
			&bid.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}

	return bids, rows.Err()
}

// ListByBidderID retrieves all bids created by a bidder
func (r *BidRepository) ListByBidderID(ctx context.Context, bidderID uuid.UUID) ([]*models.Bid, error) {
	query := `
		SELECT id, project_id, bidder_id, status, bid_amount, currency,
			cover_letter, submitted_at, created_at, updated_at
		FROM bids
		WHERE bidder_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, bidderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*models.Bid
	for rows.Next() {
		bid := &models.Bid{}
		err := rows.Scan(
			&bid.ID,
			&bid.ProjectID,
			&bid.BidderID,
			&bid.Status,
			&bid.BidAmount,
			&bid.Currency,
			&bid.CoverLetter,
			&bid.SubmittedAt,
			&bid.CreatedAt,
			&bid.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}

	return bids, rows.Err()
}
