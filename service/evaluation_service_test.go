package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tenderpulse-backend/ai"
	"tenderpulse-backend/models"
	"tenderpulse-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oracleAnswer = `{
  "technical_evaluation": {"score": 80, "strengths": ["experienced team"]},
  "financial_evaluation": {"score": 90, "competitiveness": "strong"},
  "compliance_evaluation": {"score": 60, "status": "pass"},
  "overall_assessment": {"recommendation": "award", "summary": "solid bid"}
}`

type fakeBidStore struct {
	mu       sync.Mutex
	bids     map[uuid.UUID]*models.Bid
	statuses map[uuid.UUID][]models.BidStatus
}

func newFakeBidStore() *fakeBidStore {
	return &fakeBidStore{
		bids:     make(map[uuid.UUID]*models.Bid),
		statuses: make(map[uuid.UUID][]models.BidStatus),
	}
}

func (f *fakeBidStore) GetByID(_ context.Context, id uuid.UUID) (*models.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bid, ok := f.bids[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return bid, nil
}

func (f *fakeBidStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.BidStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	bid, ok := f.bids[id]
	if !ok {
		return errors.New("no rows")
	}
	bid.Status = status
	f.statuses[id] = append(f.statuses[id], status)
	return nil
}

func (f *fakeBidStore) ListByProjectID(_ context.Context, projectID uuid.UUID, status *models.BidStatus) ([]*models.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Bid
	for _, bid := range f.bids {
		if bid.ProjectID != projectID {
			continue
		}
		if status != nil && bid.Status != *status {
			continue
		}
		out = append(out, bid)
	}
	return out, nil
}

type fakeProjectStore struct {
	projects map[uuid.UUID]*models.Project
}

func (f *fakeProjectStore) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return project, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return user, nil
}

type fakeDocumentStore struct {
	docs map[uuid.UUID][]*models.Document
}

func (f *fakeDocumentStore) ListByBidID(_ context.Context, bidID uuid.UUID) ([]*models.Document, error) {
	return f.docs[bidID], nil
}

type fakeEvaluationStore struct {
	mu          sync.Mutex
	evals       map[uuid.UUID]*models.Evaluation
	submissions map[uuid.UUID]*time.Time
	ranks       []repository.RankAssignment
}

func newFakeEvaluationStore() *fakeEvaluationStore {
	return &fakeEvaluationStore{
		evals:       make(map[uuid.UUID]*models.Evaluation),
		submissions: make(map[uuid.UUID]*time.Time),
	}
}

func (f *fakeEvaluationStore) Upsert(_ context.Context, eval *models.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evals[eval.BidID] = eval
	return nil
}

func (f *fakeEvaluationStore) GetByBidID(_ context.Context, bidID uuid.UUID) (*models.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	eval, ok := f.evals[bidID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return eval, nil
}

func (f *fakeEvaluationStore) ListByProjectID(_ context.Context, _ uuid.UUID) ([]*repository.ProjectEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.ProjectEvaluation
	for bidID, eval := range f.evals {
		out = append(out, &repository.ProjectEvaluation{
			Evaluation:  *eval,
			SubmittedAt: f.submissions[bidID],
		})
	}
	return out, nil
}

func (f *fakeEvaluationStore) UpdateRanks(_ context.Context, ranks []repository.RankAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranks = ranks
	for _, ra := range ranks {
		if eval, ok := f.evals[ra.BidID]; ok {
			rank := ra.Rank
			eval.Rank = &rank
		}
	}
	return nil
}

type fakeOracle struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (f *fakeOracle) Score(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fixture struct {
	bids     *fakeBidStore
	projects *fakeProjectStore
	users    *fakeUserStore
	docs     *fakeDocumentStore
	evals    *fakeEvaluationStore
	oracle   *fakeOracle
	service  *EvaluationService

	projectID uuid.UUID
	bidderID  uuid.UUID
}

func newFixture(t *testing.T, oracle *fakeOracle) *fixture {
	t.Helper()

	f := &fixture{
		bids:      newFakeBidStore(),
		projects:  &fakeProjectStore{projects: make(map[uuid.UUID]*models.Project)},
		users:     &fakeUserStore{users: make(map[uuid.UUID]*models.User)},
		docs:      &fakeDocumentStore{docs: make(map[uuid.UUID][]*models.Document)},
		evals:     newFakeEvaluationStore(),
		oracle:    oracle,
		projectID: uuid.New(),
		bidderID:  uuid.New(),
	}

	f.projects.projects[f.projectID] = &models.Project{
		ID:       f.projectID,
		Title:    "Road Rehabilitation",
		Status:   models.ProjectStatusActive,
		Criteria: models.DefaultCriteriaWeights(),
	}

	company := "Acme Construction Ltd"
	f.users.users[f.bidderID] = &models.User{
		ID:          f.bidderID,
		Role:        models.RoleBidder,
		FullName:    "Jordan Doe",
		CompanyName: &company,
	}

	f.service = NewEvaluationService(
		EvalWithBidStore(f.bids),
		EvalWithProjectStore(f.projects),
		EvalWithUserStore(f.users),
		EvalWithDocumentStore(f.docs),
		EvalWithEvaluationStore(f.evals),
		EvalWithOracle(oracle),
		EvalWithWorkers(2),
	)

	return f
}

func (f *fixture) addBid(overallText string) *models.Bid {
	submitted := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	bid := &models.Bid{
		ID:          uuid.New(),
		ProjectID:   f.projectID,
		BidderID:    f.bidderID,
		Status:      models.BidStatusSubmitted,
		BidAmount:   125000,
		Currency:    "USD",
		SubmittedAt: &submitted,
	}
	f.bids.bids[bid.ID] = bid
	f.evals.submissions[bid.ID] = &submitted

	f.docs.docs[bid.ID] = []*models.Document{
		{
			ID:            uuid.New(),
			BidID:         bid.ID,
			DocumentType:  models.DocumentTypeTechnical,
			Filename:      "proposal.pdf",
			ExtractedText: overallText,
		},
	}
	return bid
}

func TestEvaluateBidPersistsEvaluation(t *testing.T) {
	oracle := &fakeOracle{answer: oracleAnswer}
	f := newFixture(t, oracle)
	bid := f.addBid("technical approach with experienced team")

	eval, err := f.service.EvaluateBid(context.Background(), bid.ID)
	require.NoError(t, err)

	assert.Equal(t, 79.0, eval.OverallScore)
	assert.Equal(t, 80.0, eval.TechnicalScore)
	assert.Equal(t, 90.0, eval.FinancialScore)
	assert.Equal(t, 60.0, eval.ComplianceScore)
	assert.True(t, eval.IsQualified)
	assert.True(t, eval.IsShortlisted)

	stored, err := f.evals.GetByBidID(context.Background(), bid.ID)
	require.NoError(t, err)
	assert.Equal(t, eval, stored)

	// The bid walks through under_evaluation to evaluated.
	assert.Equal(t,
		[]models.BidStatus{models.BidStatusUnderEvaluation, models.BidStatusEvaluated},
		f.bids.statuses[bid.ID])

	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "technical approach with experienced team")
	assert.Contains(t, oracle.prompts[0], "Acme Construction Ltd")
}

func TestEvaluateBidOracleFailure(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("deadline exceeded")}
	f := newFixture(t, oracle)
	bid := f.addBid("some text")

	_, err := f.service.EvaluateBid(context.Background(), bid.ID)
	require.Error(t, err)

	var oracleErr *ai.OracleError
	assert.True(t, errors.As(err, &oracleErr))

	// No evaluation persisted, bid restored to submitted for a retry.
	_, err = f.evals.GetByBidID(context.Background(), bid.ID)
	assert.Error(t, err)
	assert.Equal(t, models.BidStatusSubmitted, f.bids.bids[bid.ID].Status)
}

func TestEvaluateBidUnparsableAnswerDegrades(t *testing.T) {
	oracle := &fakeOracle{answer: "I cannot evaluate this bid."}
	f := newFixture(t, oracle)
	bid := f.addBid("some text")

	eval, err := f.service.EvaluateBid(context.Background(), bid.ID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, eval.OverallScore)
	assert.False(t, eval.IsQualified)
	assert.False(t, eval.IsShortlisted)
	assert.Equal(t, "I cannot evaluate this bid.", eval.Analysis["raw_response"])
	assert.Equal(t, models.BidStatusEvaluated, f.bids.bids[bid.ID].Status)
}

func TestEvaluateBidNotFound(t *testing.T) {
	f := newFixture(t, &fakeOracle{answer: oracleAnswer})

	_, err := f.service.EvaluateBid(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBidNotFound)
}

func TestEvaluateBidWithoutDocuments(t *testing.T) {
	f := newFixture(t, &fakeOracle{answer: oracleAnswer})
	bid := f.addBid("text")
	f.docs.docs[bid.ID] = nil

	_, err := f.service.EvaluateBid(context.Background(), bid.ID)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestEvaluateBidWithoutOracle(t *testing.T) {
	f := newFixture(t, &fakeOracle{answer: oracleAnswer})
	f.service.oracle = nil
	bid := f.addBid("text")

	_, err := f.service.EvaluateBid(context.Background(), bid.ID)
	assert.ErrorIs(t, err, ErrOracleNotSet)
}

func TestEvaluateProjectRanksAllBids(t *testing.T) {
	oracle := &fakeOracle{answer: oracleAnswer}
	f := newFixture(t, oracle)

	first := f.addBid("bid one")
	second := f.addBid("bid two")

	// Drafts are skipped.
	draft := f.addBid("draft bid")
	f.bids.bids[draft.ID].Status = models.BidStatusDraft

	result, err := f.service.EvaluateProject(context.Background(), f.projectID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Evaluated)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Ranked, 2)
	assert.Equal(t, 1, result.Ranked[0].Rank)
	assert.Equal(t, 2, result.Ranked[1].Rank)

	rankedIDs := []uuid.UUID{result.Ranked[0].BidID, result.Ranked[1].BidID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, rankedIDs)

	// Ranks were written back to the store.
	require.Len(t, f.evals.ranks, 2)
	for _, bidID := range rankedIDs {
		stored, err := f.evals.GetByBidID(context.Background(), bidID)
		require.NoError(t, err)
		require.NotNil(t, stored.Rank)
	}
}

func TestEvaluateProjectCountsFailures(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("model unavailable")}
	f := newFixture(t, oracle)
	f.addBid("bid one")
	f.addBid("bid two")

	result, err := f.service.EvaluateProject(context.Background(), f.projectID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Evaluated)
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, result.Ranked)
}

func TestEvaluateProjectUnknownProject(t *testing.T) {
	f := newFixture(t, &fakeOracle{answer: oracleAnswer})

	_, err := f.service.EvaluateProject(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRankProjectBidsUsesSnapshot(t *testing.T) {
	f := newFixture(t, &fakeOracle{answer: oracleAnswer})

	early := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	winner := uuid.New()
	runnerUp := uuid.New()
	f.evals.evals[winner] = &models.Evaluation{BidID: winner, OverallScore: 91}
	f.evals.evals[runnerUp] = &models.Evaluation{BidID: runnerUp, OverallScore: 74}
	f.evals.submissions[winner] = &late
	f.evals.submissions[runnerUp] = &early

	ranked, err := f.service.RankProjectBids(context.Background(), f.projectID)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, winner, ranked[0].BidID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, runnerUp, ranked[1].BidID)
	assert.Equal(t, 2, ranked[1].Rank)

	require.NotNil(t, f.evals.evals[winner].Rank)
	assert.Equal(t, 1, *f.evals.evals[winner].Rank)
}

func TestGetBidEvaluationNotFound(t *testing.T) {
	f := newFixture(t, &fakeOracle{answer: oracleAnswer})

	_, err := f.service.GetBidEvaluation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEvaluationNotFound)
}
