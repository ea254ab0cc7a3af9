package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/edustack/assess-backend/internal/middleware"
	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/edustack/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler handles test authoring and listing endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateTest godoc
// POST /api/v1/admin/tests
// Normalizes question types and computes status once at creation.
func (h *CatalogHandler) CreateTest(c *gin.Context) {
	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.catalogService.CreateTest(c.Request.Context(), &req)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"detail": err.Error()})
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// GetTest godoc
// GET /api/v1/admin/tests/:test_id
// Full definition including grading material.
func (h *CatalogHandler) GetTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	test, err := h.catalogService.GetByID(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, store.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// TestSummary is a list entry without question content.
type TestSummary struct {
	ID              uuid.UUID             `json:"id"`
	Title           string                `json:"title"`
	DurationMinutes int                   `json:"duration_minutes"`
	Status          model.TestStatus      `json:"status"`
	StartDate       *time.Time            `json:"start_date,omitempty"`
	EndDate         *time.Time            `json:"end_date,omitempty"`
	QuestionCount   int                   `json:"question_count"`
	CreatedAt       time.Time             `json:"created_at"`
	LatestScore     *service.ScoreSummary `json:"latest_score,omitempty"`
}

func summarize(d *service.TestDisplay) TestSummary {
	return TestSummary{
		ID:              d.ID,
		Title:           d.Title,
		DurationMinutes: d.DurationMinutes,
		Status:          d.Status,
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		QuestionCount:   len(d.Questions),
		CreatedAt:       d.CreatedAt,
		LatestScore:     d.LatestScore,
	}
}

// ListTests godoc
// GET /api/v1/student/tests
// The student dashboard list: current test pinned first, remainder in
// display order. Question content (and thus grading material) is omitted.
func (h *CatalogHandler) ListTests(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	list, err := h.catalogService.ListForDisplay(c.Request.Context(), claims.BatchID, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	summaries := make([]TestSummary, 0, len(list.Tests))
	for i := range list.Tests {
		summaries = append(summaries, summarize(&list.Tests[i]))
	}

	var current *TestSummary
	if list.Current != nil {
		s := summarize(list.Current)
		current = &s
	}

	response.Success(c, http.StatusOK, gin.H{
		"current": current,
		"tests":   summaries,
	})
}

// GetTestPaper godoc
// GET /api/v1/student/tests/:test_id/paper
// Student-safe test definition: no correct answers, no hidden test cases.
func (h *CatalogHandler) GetTestPaper(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.catalogService.GetForStudent(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, store.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": paper})
}
