package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/edustack/assess-backend/internal/middleware"
	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyticsHandler serves result and activity reads.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetLatestResult godoc
// GET /api/v1/student/tests/:test_id/result
// Returns the current (most recent) result for the test, or NO_RESULT.
func (h *AnalyticsHandler) GetLatestResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.analyticsService.LatestResult(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNoResult) {
			response.Fail(c, http.StatusNotFound, response.ErrNoResult)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListResults godoc
// GET /api/v1/student/results
func (h *AnalyticsHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.analyticsService.ResultsForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []model.TestResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetActivity godoc
// GET /api/v1/student/activity?days=7
// Submissions-per-day series: exactly `days` entries ending today, zero days
// included.
func (h *AnalyticsHandler) GetActivity(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	activity, err := h.analyticsService.ActivityByDay(c.Request.Context(), claims.UserID, days)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}
