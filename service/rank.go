package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// BidScore is one evaluated bid entering aggregation.
type BidScore struct {
	BidID        uuid.UUID
	OverallScore float64
	SubmittedAt  *time.Time
}

// RankedBid is one bid's standing after aggregation.
type RankedBid struct {
	BidID        uuid.UUID `json:"bid_id"`
	Rank         int       `json:"rank"`
	OverallScore float64   `json:"overall_score"`
}

// RankEvaluations orders bids by overall score descending and assigns ranks
// 1..N. Equal scores break toward the earlier submission (bids without a
// submission time sort last among ties), then the smaller bid ID, so ranking
// the same snapshot twice yields identical output.
func RankEvaluations(scores []BidScore) []RankedBid {
	sorted := make([]BidScore, len(scores))
	copy(sorted, scores)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		switch {
		case a.SubmittedAt == nil && b.SubmittedAt == nil:
			// Fall through to the ID tie-break
		case a.SubmittedAt == nil:
			return false
		case b.SubmittedAt == nil:
			return true
		case !a.SubmittedAt.Equal(*b.SubmittedAt):
			return a.SubmittedAt.Before(*b.SubmittedAt)
		}
		return a.BidID.String() < b.BidID.String()
	})

	ranked := make([]RankedBid, len(sorted))
	for i, score := range sorted {
		ranked[i] = RankedBid{
			BidID:        score.BidID,
			Rank:         i + 1,
			OverallScore: score.OverallScore,
		}
	}

	return ranked
}
