package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tenderpulse-backend/ai"
	"tenderpulse-backend/extractor"
	"tenderpulse-backend/models"
	"tenderpulse-backend/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBidNotFound        = errors.New("bid not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrNoDocuments        = errors.New("bid has no documents to evaluate")
	ErrOracleNotSet       = errors.New("scoring oracle is not configured")
)

// qualificationThreshold is the minimum overall score for a compliant bid to
// count as qualified.
const qualificationThreshold = 50.0

// BidStore is the subset of bid persistence the evaluation flow needs. The
// pgx repositories satisfy these store interfaces; tests swap in fakes.
type BidStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BidStatus) error
	ListByProjectID(ctx context.Context, projectID uuid.UUID, status *models.BidStatus) ([]*models.Bid, error)
}

// ProjectStore loads project records
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// UserStore loads user records
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// DocumentStore lists the documents attached to a bid
type DocumentStore interface {
	ListByBidID(ctx context.Context, bidID uuid.UUID) ([]*models.Document, error)
}

// EvaluationStore persists evaluation records and ranks
type EvaluationStore interface {
	Upsert(ctx context.Context, eval *models.Evaluation) error
	GetByBidID(ctx context.Context, bidID uuid.UUID) (*models.Evaluation, error)
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]*repository.ProjectEvaluation, error)
	UpdateRanks(ctx context.Context, ranks []repository.RankAssignment) error
}

// ObjectStorage retrieves stored document payloads for re-extraction
type ObjectStorage interface {
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)
}

// ExtractFunc converts raw document bytes into text, embedding failures as
// sentinel strings rather than returning errors.
type ExtractFunc func(data []byte, ext string) string

// EvaluationService orchestrates bid scoring: it assembles document excerpts,
// queries the scoring oracle, normalizes the answer, and persists the result.
type EvaluationService struct {
	bidStore     BidStore
	projectStore ProjectStore
	userStore    UserStore
	docStore     DocumentStore
	evalStore    EvaluationStore
	storage      ObjectStorage
	oracle       ai.Oracle
	extract      ExtractFunc
	timeout      time.Duration
	workers      int
	logger       *slog.Logger
}

// EvaluationServiceOption is a functional option for EvaluationService
type EvaluationServiceOption func(*EvaluationService)

// EvalWithBidStore sets the bid store
func EvalWithBidStore(store BidStore) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.bidStore = store
	}
}

// EvalWithProjectStore sets the project store
func EvalWithProjectStore(store ProjectStore) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.projectStore = store
	}
}

// EvalWithUserStore sets the user store
func EvalWithUserStore(store UserStore) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.userStore = store
	}
}

// EvalWithDocumentStore sets the document store
func EvalWithDocumentStore(store DocumentStore) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.docStore = store
	}
}

// EvalWithEvaluationStore sets the evaluation store
func EvalWithEvaluationStore(store EvaluationStore) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.evalStore = store
	}
}

// EvalWithObjectStorage sets the object storage used for re-extraction
func EvalWithObjectStorage(storage ObjectStorage) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.storage = storage
	}
}

// EvalWithOracle sets the scoring oracle
func EvalWithOracle(oracle ai.Oracle) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.oracle = oracle
	}
}

// EvalWithExtractor overrides the text extraction function
func EvalWithExtractor(fn ExtractFunc) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.extract = fn
	}
}

// EvalWithTimeout bounds a single oracle round trip
func EvalWithTimeout(timeout time.Duration) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.timeout = timeout
	}
}

// EvalWithWorkers caps concurrent bid evaluations during a project run
func EvalWithWorkers(workers int) EvaluationServiceOption {
	return func(s *EvaluationService) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// EvalWithLogger sets the structured logger
func EvalWithLogger(logger *slog.Logger) EvaluationServiceOption {
	return func(s *EvaluationService) {
		s.logger = logger
	}
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(opts ...EvaluationServiceOption) *EvaluationService {
	s := &EvaluationService{
		extract: extractor.Extract,
		timeout: 2 * time.Minute,
		workers: 4,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EvaluateBid scores a single bid end to end and persists the evaluation.
// Oracle failures abort the call; normalization failures do not, and instead
// produce a persisted zero-score record carrying the raw oracle text.
func (s *EvaluationService) EvaluateBid(ctx context.Context, bidID uuid.UUID) (*models.Evaluation, error) {
	if s.bidStore == nil || s.projectStore == nil || s.docStore == nil || s.evalStore == nil {
		return nil, errors.New("evaluation service is not fully configured")
	}
	if s.oracle == nil {
		return nil, ErrOracleNotSet
	}

	bid, err := s.bidStore.GetByID(ctx, bidID)
	if err != nil {
		return nil, ErrBidNotFound
	}

	project, err := s.projectStore.GetByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}

	docs, err := s.docStore.ListByBidID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bid documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	if err := s.bidStore.UpdateStatus(ctx, bidID, models.BidStatusUnderEvaluation); err != nil {
		return nil, fmt.Errorf("failed to mark bid under evaluation: %w", err)
	}

	evalCtx := ai.BuildEvaluationContext(s.bidInfo(ctx, bid), project.Criteria, s.documentInputs(ctx, docs))

	raw, err := s.score(ctx, evalCtx.Prompt())
	if err != nil {
		// Leave the bid actionable for a retry.
		if stErr := s.bidStore.UpdateStatus(ctx, bidID, models.BidStatusSubmitted); stErr != nil {
			s.logger.Error("failed to reset bid status after oracle failure",
				"bid_id", bidID, "error", stErr)
		}
		return nil, err
	}

	normalized := ai.NormalizeEvaluation(raw)
	if normalized.Degraded() {
		s.logger.Warn("oracle answer could not be parsed, storing degraded evaluation",
			"bid_id", bidID)
	}

	eval := evaluationRecord(bidID, normalized)
	if err := s.evalStore.Upsert(ctx, eval); err != nil {
		return nil, fmt.Errorf("failed to save evaluation: %w", err)
	}

	if err := s.bidStore.UpdateStatus(ctx, bidID, models.BidStatusEvaluated); err != nil {
		return nil, fmt.Errorf("failed to mark bid evaluated: %w", err)
	}

	s.logger.Info("bid evaluated",
		"bid_id", bidID,
		"project_id", bid.ProjectID,
		"overall_score", eval.OverallScore,
		"qualified", eval.IsQualified)

	return eval, nil
}

// ProjectEvaluationResult summarizes a full project evaluation run
type ProjectEvaluationResult struct {
	Evaluated int         `json:"evaluated"`
	Failed    int         `json:"failed"`
	Ranked    []RankedBid `json:"ranked"`
}

// EvaluateProject evaluates every submitted bid on a project with bounded
// concurrency, then recomputes ranks over the persisted evaluations. A single
// failing bid does not abort the run; it is counted and the rest proceed.
func (s *EvaluationService) EvaluateProject(ctx context.Context, projectID uuid.UUID) (*ProjectEvaluationResult, error) {
	if s.projectStore == nil || s.bidStore == nil {
		return nil, errors.New("evaluation service is not fully configured")
	}

	if _, err := s.projectStore.GetByID(ctx, projectID); err != nil {
		return nil, ErrProjectNotFound
	}

	bids, err := s.bidStore.ListByProjectID(ctx, projectID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list project bids: %w", err)
	}

	var (
		mu        sync.Mutex
		evaluated int
		failed    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, bid := range bids {
		if bid.Status == models.BidStatusDraft {
			continue
		}
		bid := bid
		g.Go(func() error {
			_, err := s.EvaluateBid(gctx, bid.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				s.logger.Error("bid evaluation failed", "bid_id", bid.ID, "error", err)
				return nil
			}
			evaluated++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked, err := s.RankProjectBids(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &ProjectEvaluationResult{
		Evaluated: evaluated,
		Failed:    failed,
		Ranked:    ranked,
	}, nil
}

// RankProjectBids recomputes ranks 1..N over the project's persisted
// evaluations and writes them back. Ranks are only ever refreshed here;
// re-evaluating a single bid leaves its stored rank untouched until the next
// explicit re-rank.
func (s *EvaluationService) RankProjectBids(ctx context.Context, projectID uuid.UUID) ([]RankedBid, error) {
	if s.evalStore == nil {
		return nil, errors.New("evaluation service is not fully configured")
	}

	snapshot, err := s.evalStore.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project evaluations: %w", err)
	}

	scores := make([]BidScore, 0, len(snapshot))
	for _, pe := range snapshot {
		scores = append(scores, BidScore{
			BidID:        pe.Evaluation.BidID,
			OverallScore: pe.Evaluation.OverallScore,
			SubmittedAt:  pe.SubmittedAt,
		})
	}

	ranked := RankEvaluations(scores)

	assignments := make([]repository.RankAssignment, len(ranked))
	for i, rb := range ranked {
		assignments[i] = repository.RankAssignment{BidID: rb.BidID, Rank: rb.Rank}
	}

	if err := s.evalStore.UpdateRanks(ctx, assignments); err != nil {
		return nil, fmt.Errorf("failed to persist ranks: %w", err)
	}

	return ranked, nil
}

// GetBidEvaluation returns the stored evaluation for a bid
func (s *EvaluationService) GetBidEvaluation(ctx context.Context, bidID uuid.UUID) (*models.Evaluation, error) {
	if s.evalStore == nil {
		return nil, errors.New("evaluation service is not fully configured")
	}
	eval, err := s.evalStore.GetByBidID(ctx, bidID)
	if err != nil {
		return nil, ErrEvaluationNotFound
	}
	return eval, nil
}

// ListProjectEvaluations returns the project's evaluations joined with bid
// and bidder details, ordered by overall score descending.
func (s *EvaluationService) ListProjectEvaluations(ctx context.Context, projectID uuid.UUID) ([]*repository.ProjectEvaluation, error) {
	if s.evalStore == nil {
		return nil, errors.New("evaluation service is not fully configured")
	}
	return s.evalStore.ListByProjectID(ctx, projectID)
}

// score runs one oracle round trip under the configured timeout. Any failure
// surfaces as an *ai.OracleError so callers can distinguish oracle trouble
// from persistence trouble.
func (s *EvaluationService) score(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.oracle.Score(ctx, prompt)
	if err != nil {
		var oracleErr *ai.OracleError
		if !errors.As(err, &oracleErr) {
			err = &ai.OracleError{Err: err}
		}
		return "", err
	}
	return raw, nil
}

// bidInfo assembles the bid header passed to the oracle prompt
func (s *EvaluationService) bidInfo(ctx context.Context, bid *models.Bid) ai.BidInfo {
	info := ai.BidInfo{
		BidID:       bid.ID,
		BidAmount:   bid.BidAmount,
		Currency:    bid.Currency,
		SubmittedAt: bid.SubmittedAt,
	}
	if s.userStore == nil {
		return info
	}
	bidder, err := s.userStore.GetByID(ctx, bid.BidderID)
	if err != nil {
		s.logger.Warn("failed to load bidder for prompt", "bid_id", bid.ID, "error", err)
		return info
	}
	if bidder.CompanyName != nil && *bidder.CompanyName != "" {
		info.CompanyName = *bidder.CompanyName
	} else {
		info.CompanyName = bidder.FullName
	}
	return info
}

// documentInputs turns stored documents into extractor outputs for the
// prompt, preserving upload order. Text extracted at upload time is reused
// as-is; documents stored without text are re-extracted from object storage
// with bounded concurrency.
func (s *EvaluationService) documentInputs(ctx context.Context, docs []*models.Document) []ai.DocumentInput {
	inputs := make([]ai.DocumentInput, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			text := doc.ExtractedText
			if text == "" && s.storage != nil {
				text = s.reextract(gctx, doc)
			}
			if extractor.IsErrorText(text) {
				s.logger.Warn("document carries an extraction error, passing it through",
					"document_id", doc.ID, "filename", doc.Filename)
			} else if text == "" {
				s.logger.Warn("document yielded no text",
					"document_id", doc.ID, "filename", doc.Filename)
			}
			inputs[i] = ai.DocumentInput{
				DocumentType: string(doc.DocumentType),
				Filename:     doc.Filename,
				Text:         text,
				Metadata:     doc.Metadata,
			}
			return nil
		})
	}
	_ = g.Wait()

	return inputs
}

// reextract pulls the stored payload and runs extraction again
func (s *EvaluationService) reextract(ctx context.Context, doc *models.Document) string {
	body, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		s.logger.Warn("failed to download document for re-extraction",
			"document_id", doc.ID, "error", err)
		return ""
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		s.logger.Warn("failed to read document for re-extraction",
			"document_id", doc.ID, "error", err)
		return ""
	}

	return s.extract(data, filepath.Ext(doc.Filename))
}

// evaluationRecord maps a normalized oracle answer onto the persisted shape
func evaluationRecord(bidID uuid.UUID, n *ai.Evaluation) *models.Evaluation {
	analysis := models.AIAnalysis{
		"technical_evaluation":  n.Technical,
		"financial_evaluation":  n.Financial,
		"compliance_evaluation": n.Compliance,
		"overall_assessment":    n.Overall,
	}
	if n.RawResponse != "" {
		analysis["raw_response"] = n.RawResponse
	}

	overall := n.OverallScore()
	recommendation := strings.ToLower(strings.TrimSpace(n.Overall.Recommendation))

	return &models.Evaluation{
		BidID:           bidID,
		TechnicalScore:  n.Technical.Score,
		FinancialScore:  n.Financial.Score,
		ComplianceScore: n.Compliance.Score,
		OverallScore:    overall,
		Analysis:        analysis,
		IsQualified:     strings.EqualFold(n.Compliance.Status, "pass") && overall >= qualificationThreshold,
		IsShortlisted:   recommendation == "award" || recommendation == "shortlist",
	}
}
