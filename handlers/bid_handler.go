package handlers

import (
	"errors"
	"net/http"
	"time"

	"tenderpulse-backend/models"
	"tenderpulse-backend/repository"
	"tenderpulse-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BidHandler handles HTTP requests for bids
type BidHandler struct {
	bidRepo     *repository.BidRepository
	projectRepo *repository.ProjectRepository
	evalService *service.EvaluationService
}

// NewBidHandler creates a new bid handler
func NewBidHandler(bidRepo *repository.BidRepository, projectRepo *repository.ProjectRepository, evalService *service.EvaluationService) *BidHandler {
	return &BidHandler{
		bidRepo:     bidRepo,
		projectRepo: projectRepo,
		evalService: evalService,
	}
}

// CreateBidRequest represents the request body for creating a bid
type CreateBidRequest struct {
	ProjectID   string  `json:"project_id" binding:"required"`
	BidderID    string  `json:"bidder_id" binding:"required"`
	BidAmount   float64 `json:"bid_amount" binding:"required"`
	Currency    string  `json:"currency"`
	CoverLetter *string `json:"cover_letter"`
}

// CreateBid handles POST /api/bids
func (h *BidHandler) CreateBid(c *gin.Context) {
	var req CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PROJECT_ID",
				"message": "Invalid project_id format",
			},
		})
		return
	}

	bidderID, err := uuid.Parse(req.BidderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BIDDER_ID",
				"message": "Invalid bidder_id format",
			},
		})
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROJECT_NOT_FOUND",
				"message": "Project not found",
			},
		})
		return
	}

	if project.Status != models.ProjectStatusActive {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROJECT_NOT_OPEN",
				"message": "Project is not accepting bids",
			},
		})
		return
	}

	if existing, err := h.bidRepo.GetByProjectAndBidder(c.Request.Context(), projectID, bidderID); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_EXISTS",
				"message": "Bidder already has a bid on this project",
			},
		})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	bid := &models.Bid{
		ProjectID:   projectID,
		BidderID:    bidderID,
		Status:      models.BidStatusDraft,
		BidAmount:   req.BidAmount,
		Currency:    currency,
		CoverLetter: req.CoverLetter,
	}

	if err := h.bidRepo.Create(c.Request.Context(), bid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    bid,
	})
}

// GetBid handles GET /api/bids/:id
func (h *BidHandler) GetBid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid bid ID format",
			},
		})
		return
	}

	bid, err := h.bidRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bid,
	})
}

// ListBidderBids handles GET /api/bids?bidder_id=
func (h *BidHandler) ListBidderBids(c *gin.Context) {
	bidderID, err := uuid.Parse(c.Query("bidder_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BIDDER_ID",
				"message": "bidder_id query parameter is required",
			},
		})
		return
	}

	bids, err := h.bidRepo.ListByBidderID(c.Request.Context(), bidderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bids,
	})
}

// SubmitBid handles POST /api/bids/:id/submit
func (h *BidHandler) SubmitBid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid bid ID format",
			},
		})
		return
	}

	bid, err := h.bidRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	if bid.Status != models.BidStatusDraft {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALREADY_SUBMITTED",
				"message": "Bid has already been submitted",
			},
		})
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), bid.ProjectID)
	if err == nil && time.Now().After(project.Deadline) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DEADLINE_PASSED",
				"message": "Submission deadline has passed",
			},
		})
		return
	}

	submittedAt := time.Now().UTC()
	if err := h.bidRepo.MarkSubmitted(c.Request.Context(), id, submittedAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SUBMIT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":           id,
			"status":       models.BidStatusSubmitted,
			"submitted_at": submittedAt,
		},
	})
}

// EvaluateBid handles POST /api/bids/:id/evaluate
func (h *BidHandler) EvaluateBid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid bid ID format",
			},
		})
		return
	}

	eval, err := h.evalService.EvaluateBid(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBidNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Bid not found",
				},
			})
		case errors.Is(err, service.ErrNoDocuments):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_DOCUMENTS",
					"message": "Bid has no documents to evaluate",
				},
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EVALUATION_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eval,
	})
}

// GetBidEvaluation handles GET /api/bids/:id/evaluation. Bidders see only the
// redacted view of their own evaluation; pass view=full for the organization
// view with the complete analysis.
func (h *BidHandler) GetBidEvaluation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid bid ID format",
			},
		})
		return
	}

	eval, err := h.evalService.GetBidEvaluation(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Evaluation not found",
			},
		})
		return
	}

	if c.Query("view") == "full" {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    eval,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eval.BidderView(),
	})
}
