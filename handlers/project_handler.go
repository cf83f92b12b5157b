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

// ProjectHandler handles HTTP requests for tender projects
type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	bidRepo     *repository.BidRepository
	evalService *service.EvaluationService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectRepo *repository.ProjectRepository, bidRepo *repository.BidRepository, evalService *service.EvaluationService) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		bidRepo:     bidRepo,
		evalService: evalService,
	}
}

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	OrganizationID  string                  `json:"organization_id" binding:"required"`
	Title           string                  `json:"title" binding:"required"`
	Description     *string                 `json:"description"`
	TenderReference string                  `json:"tender_reference"`
	Deadline        time.Time               `json:"deadline" binding:"required"`
	Criteria        *models.CriteriaWeights `json:"evaluation_criteria"`
	BudgetRangeMin  *float64                `json:"budget_range_min"`
	BudgetRangeMax  *float64                `json:"budget_range_max"`
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
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

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ORGANIZATION_ID",
				"message": "Invalid organization_id format",
			},
		})
		return
	}

	criteria := models.DefaultCriteriaWeights()
	if req.Criteria != nil {
		criteria = *req.Criteria
	}

	project := &models.Project{
		OrganizationID:  orgID,
		Title:           req.Title,
		Description:     req.Description,
		TenderReference: req.TenderReference,
		Deadline:        req.Deadline,
		Status:          models.ProjectStatusDraft,
		Criteria:        criteria,
		BudgetRangeMin:  req.BudgetRangeMin,
		BudgetRangeMax:  req.BudgetRangeMax,
	}

	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
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
		"data":    project,
	})
}

// GetProject handles GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid project ID format",
			},
		})
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Project not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    project,
	})
}

// UpdateProjectRequest represents the request body for updating a project.
// All fields are optional; absent fields keep their current value.
type UpdateProjectRequest struct {
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	TenderReference *string                 `json:"tender_reference"`
	Deadline        *time.Time              `json:"deadline"`
	Criteria        *models.CriteriaWeights `json:"evaluation_criteria"`
	BudgetRangeMin  *float64                `json:"budget_range_min"`
	BudgetRangeMax  *float64                `json:"budget_range_max"`
}

// UpdateProject handles PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid project ID format",
			},
		})
		return
	}

	var req UpdateProjectRequest
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

	project, err := h.projectRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Project not found",
			},
		})
		return
	}

	if project.Status == models.ProjectStatusClosed || project.Status == models.ProjectStatusAwarded {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROJECT_LOCKED",
				"message": "Closed or awarded projects cannot be updated",
			},
		})
		return
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.TenderReference != nil {
		project.TenderReference = *req.TenderReference
	}
	if req.Deadline != nil {
		project.Deadline = *req.Deadline
	}
	if req.Criteria != nil {
		project.Criteria = *req.Criteria
	}
	if req.BudgetRangeMin != nil {
		project.BudgetRangeMin = req.BudgetRangeMin
	}
	if req.BudgetRangeMax != nil {
		project.BudgetRangeMax = req.BudgetRangeMax
	}

	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    project,
	})
}

// ListProjects handles GET /api/projects?organization_id=&status=&limit=&offset=
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	orgID, err := uuid.Parse(c.Query("organization_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ORGANIZATION_ID",
				"message": "organization_id query parameter is required",
			},
		})
		return
	}

	var status *models.ProjectStatus
	if s := c.Query("status"); s != "" {
		ps := models.ProjectStatus(s)
		status = &ps
	}

	limit := 50
	offset := 0
	if _, ok := c.GetQuery("limit"); ok {
		if v, err := parsePositiveInt(c.Query("limit")); err == nil {
			limit = v
		}
	}
	if _, ok := c.GetQuery("offset"); ok {
		if v, err := parsePositiveInt(c.Query("offset")); err == nil {
			offset = v
		}
	}

	projects, err := h.projectRepo.ListByOrganizationID(c.Request.Context(), orgID, status, limit, offset)
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
		"data":    projects,
	})
}

// PublishProject handles POST /api/projects/:id/publish
func (h *ProjectHandler) PublishProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid project ID format",
			},
		})
		return
	}

	if _, err := h.projectRepo.GetByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Project not found",
			},
		})
		return
	}

	if err := h.projectRepo.UpdateStatus(c.Request.Context(), id, models.ProjectStatusActive); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":     id,
			"status": models.ProjectStatusActive,
		},
	})
}

// EvaluateProject handles POST /api/projects/:id/evaluate. All submitted bids
// are scored with bounded concurrency and then ranked; the call is synchronous
// and may take a while for large projects.
func (h *ProjectHandler) EvaluateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid project ID format",
			},
		})
		return
	}

	result, err := h.evalService.EvaluateProject(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Project not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EVALUATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListProjectEvaluations handles GET /api/projects/:id/evaluations
func (h *ProjectHandler) ListProjectEvaluations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid project ID format",
			},
		})
		return
	}

	evaluations, err := h.evalService.ListProjectEvaluations(c.Request.Context(), id)
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
		"data":    evaluations,
	})
}

// AwardProject handles POST /api/projects/:id/award/:bid_id. The chosen bid
// and the project both move to awarded; every other non-draft bid on the
// project is rejected.
func (h *ProjectHandler) AwardProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid project ID format",
			},
		})
		return
	}

	bidID, err := uuid.Parse(c.Param("bid_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BID_ID",
				"message": "Invalid bid ID format",
			},
		})
		return
	}

	bid, err := h.bidRepo.GetByID(c.Request.Context(), bidID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_NOT_FOUND",
				"message": "Bid not found",
			},
		})
		return
	}

	if bid.ProjectID != projectID {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BID_PROJECT_MISMATCH",
				"message": "Bid does not belong to this project",
			},
		})
		return
	}

	others, err := h.bidRepo.ListByProjectID(c.Request.Context(), projectID, nil)
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

	for _, other := range others {
		if other.ID == bidID || other.Status == models.BidStatusDraft {
			continue
		}
		if err := h.bidRepo.UpdateStatus(c.Request.Context(), other.ID, models.BidStatusRejected); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPDATE_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
	}

	if err := h.bidRepo.UpdateStatus(c.Request.Context(), bidID, models.BidStatusAwarded); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.projectRepo.UpdateStatus(c.Request.Context(), projectID, models.ProjectStatusAwarded); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"project_id":     projectID,
			"awarded_bid_id": bidID,
			"status":         models.ProjectStatusAwarded,
		},
	})
}

// RankProject handles POST /api/projects/:id/rank
func (h *ProjectHandler) RankProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid project ID format",
			},
		})
		return
	}

	ranked, err := h.evalService.RankProjectBids(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RANKING_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ranked,
	})
}
