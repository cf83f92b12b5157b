package ai

import (
	"strings"
	"testing"
	"time"

	"tenderpulse-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBidInfo() BidInfo {
	submitted := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return BidInfo{
		BidID:       uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		CompanyName: "Acme Construction Ltd",
		BidAmount:   125000.50,
		Currency:    "USD",
		SubmittedAt: &submitted,
	}
}

func TestBuildEvaluationContextGroupsByType(t *testing.T) {
	docs := []DocumentInput{
		{DocumentType: "technical", Filename: "proposal.pdf", Text: "technical approach"},
		{DocumentType: "financial", Filename: "budget.xlsx", Text: "cost breakdown"},
		{DocumentType: "technical", Filename: "team.docx", Text: "team profiles"},
		{DocumentType: "", Filename: "misc.pdf", Text: "other content"},
	}

	ec := BuildEvaluationContext(testBidInfo(), models.DefaultCriteriaWeights(), docs)

	assert.Equal(t, []string{"technical", "financial", "unknown"}, ec.Categories())
	require.Len(t, ec.Documents["technical"], 2)
	// Upload order is preserved within a group.
	assert.Equal(t, "proposal.pdf", ec.Documents["technical"][0].Filename)
	assert.Equal(t, "team.docx", ec.Documents["technical"][1].Filename)
	assert.Equal(t, "misc.pdf", ec.Documents["unknown"][0].Filename)
}

func TestBuildEvaluationContextCapsSourceText(t *testing.T) {
	long := strings.Repeat("x", maxSourceChars+1000)
	docs := []DocumentInput{
		{DocumentType: "technical", Filename: "big.pdf", Text: long},
	}

	ec := BuildEvaluationContext(testBidInfo(), models.DefaultCriteriaWeights(), docs)

	content := ec.Documents["technical"][0].Content
	assert.Equal(t, maxSourceChars, len([]rune(content)))
}

func TestPromptRendersCriteriaAndBidInfo(t *testing.T) {
	criteria := models.CriteriaWeights{TechnicalWeight: 70, FinancialWeight: 30}
	docs := []DocumentInput{
		{DocumentType: "technical", Filename: "proposal.pdf", Text: "technical approach"},
		{DocumentType: "financial", Filename: "budget.xlsx", Text: "cost breakdown"},
	}

	ec := BuildEvaluationContext(testBidInfo(), criteria, docs)
	prompt := ec.Prompt()

	assert.Contains(t, prompt, `"technical_weight": 70`)
	assert.Contains(t, prompt, `"financial_weight": 30`)
	assert.Contains(t, prompt, "Technical (70%), Financial (30%)")
	assert.Contains(t, prompt, "Bidder: Acme Construction Ltd")
	assert.Contains(t, prompt, "Bid Amount: 125000.50 USD")
	assert.Contains(t, prompt, "### TECHNICAL DOCUMENTS")
	assert.Contains(t, prompt, "### FINANCIAL DOCUMENTS")
	assert.Contains(t, prompt, "**File: proposal.pdf**")
	assert.Contains(t, prompt, "technical approach")
	assert.Contains(t, prompt, "Return ONLY the JSON object")
}

func TestPromptMarksTruncatedExcerpts(t *testing.T) {
	long := strings.Repeat("a", maxExcerptChars+500)
	docs := []DocumentInput{
		{DocumentType: "technical", Filename: "big.pdf", Text: long},
	}

	ec := BuildEvaluationContext(testBidInfo(), models.DefaultCriteriaWeights(), docs)
	prompt := ec.Prompt()

	assert.Contains(t, prompt, strings.Repeat("a", maxExcerptChars)+truncationMarker)
	assert.NotContains(t, prompt, strings.Repeat("a", maxExcerptChars+1))
}

func TestPromptShortExcerptHasNoMarker(t *testing.T) {
	docs := []DocumentInput{
		{DocumentType: "technical", Filename: "short.pdf", Text: "short content"},
	}

	ec := BuildEvaluationContext(testBidInfo(), models.DefaultCriteriaWeights(), docs)
	prompt := ec.Prompt()

	assert.Contains(t, prompt, "short content\n")
	assert.NotContains(t, prompt, "short content"+truncationMarker)
}

func TestPromptIsDeterministic(t *testing.T) {
	docs := []DocumentInput{
		{DocumentType: "technical", Filename: "a.pdf", Text: "alpha"},
		{DocumentType: "financial", Filename: "b.xlsx", Text: "beta"},
		{DocumentType: "technical", Filename: "c.docx", Text: "gamma"},
	}

	ec := BuildEvaluationContext(testBidInfo(), models.DefaultCriteriaWeights(), docs)
	first := ec.Prompt()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ec.Prompt())
	}
}

func TestPromptWithoutSubmissionDate(t *testing.T) {
	info := testBidInfo()
	info.SubmittedAt = nil
	docs := []DocumentInput{
		{DocumentType: "technical", Filename: "a.pdf", Text: "alpha"},
	}

	ec := BuildEvaluationContext(info, models.DefaultCriteriaWeights(), docs)
	assert.Contains(t, ec.Prompt(), "Submission Date: N/A")
}
