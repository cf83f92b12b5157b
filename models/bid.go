package models

import (
	"time"

	"github.com/google/uuid"
)

// BidStatus represents the lifecycle status of a bid
type BidStatus string

const (
	BidStatusDraft           BidStatus = "draft"
	BidStatusSubmitted       BidStatus = "submitted"
	BidStatusUnderEvaluation BidStatus = "under_evaluation"
	BidStatusEvaluated       BidStatus = "evaluated"
	BidStatusShortlisted     BidStatus = "shortlisted"
	BidStatusRejected        BidStatus = "rejected"
	BidStatusAwarded         BidStatus = "awarded"
)

// Bid represents a bidder's submission against a tender project
type Bid struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	BidderID    uuid.UUID  `json:"bidder_id"`
	Status      BidStatus  `json:"status"`
	BidAmount   float64    `json:"bid_amount"`
	Currency    string     `json:"currency"`
	CoverLetter *string    `json:"cover_letter,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
