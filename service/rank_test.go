package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankEvaluationsOrdersByScoreDescending(t *testing.T) {
	a := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	b := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	c := uuid.MustParse("cccccccc-0000-0000-0000-000000000000")

	ranked := RankEvaluations([]BidScore{
		{BidID: a, OverallScore: 62.5},
		{BidID: b, OverallScore: 88.0},
		{BidID: c, OverallScore: 75.25},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, RankedBid{BidID: b, Rank: 1, OverallScore: 88.0}, ranked[0])
	assert.Equal(t, RankedBid{BidID: c, Rank: 2, OverallScore: 75.25}, ranked[1])
	assert.Equal(t, RankedBid{BidID: a, Rank: 3, OverallScore: 62.5}, ranked[2])
}

func TestRankEvaluationsBreaksTiesByEarlierSubmission(t *testing.T) {
	early := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)

	a := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	b := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	c := uuid.MustParse("cccccccc-0000-0000-0000-000000000000")

	ranked := RankEvaluations([]BidScore{
		{BidID: a, OverallScore: 80, SubmittedAt: &late},
		{BidID: b, OverallScore: 80, SubmittedAt: &early},
		{BidID: c, OverallScore: 80, SubmittedAt: nil},
	})

	// Earlier submission wins the tie; missing submission time sorts last.
	assert.Equal(t, b, ranked[0].BidID)
	assert.Equal(t, a, ranked[1].BidID)
	assert.Equal(t, c, ranked[2].BidID)
}

func TestRankEvaluationsBreaksRemainingTiesByBidID(t *testing.T) {
	when := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	low := uuid.MustParse("11111111-0000-0000-0000-000000000000")
	high := uuid.MustParse("99999999-0000-0000-0000-000000000000")

	ranked := RankEvaluations([]BidScore{
		{BidID: high, OverallScore: 70, SubmittedAt: &when},
		{BidID: low, OverallScore: 70, SubmittedAt: &when},
	})

	assert.Equal(t, low, ranked[0].BidID)
	assert.Equal(t, high, ranked[1].BidID)
}

func TestRankEvaluationsAssignsDenseRanks(t *testing.T) {
	scores := make([]BidScore, 5)
	for i := range scores {
		scores[i] = BidScore{BidID: uuid.New(), OverallScore: float64(i * 10)}
	}

	ranked := RankEvaluations(scores)

	require.Len(t, ranked, 5)
	for i, rb := range ranked {
		assert.Equal(t, i+1, rb.Rank)
	}
}

func TestRankEvaluationsDoesNotMutateInput(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	scores := []BidScore{
		{BidID: a, OverallScore: 10},
		{BidID: b, OverallScore: 90},
	}

	RankEvaluations(scores)

	assert.Equal(t, a, scores[0].BidID)
	assert.Equal(t, b, scores[1].BidID)
}

func TestRankEvaluationsEmptyInput(t *testing.T) {
	assert.Empty(t, RankEvaluations(nil))
}
