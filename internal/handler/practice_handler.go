package handler

import (
	"net/http"

	"github.com/edustack/assess-backend/internal/middleware"
	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/scoring"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/edustack/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PracticeHandler serves the ungraded coding playground. Evaluation is the
// textual substring heuristic — no execution — and outcomes are recorded in
// the submission ledger only, never in the result log.
type PracticeHandler struct {
	analyticsService *service.AnalyticsService
	log              zerolog.Logger
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(analyticsService *service.AnalyticsService, log zerolog.Logger) *PracticeHandler {
	return &PracticeHandler{
		analyticsService: analyticsService,
		log:              log.With().Str("component", "practice_handler").Logger(),
	}
}

// evaluateRequest is a practice evaluation payload.
type evaluateRequest struct {
	Source    string           `json:"source" binding:"required"`
	TestCases []model.TestCase `json:"test_cases" binding:"required,min=1"`
}

// Evaluate godoc
// POST /api/v1/student/practice/evaluate
func (h *PracticeHandler) Evaluate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req evaluateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	results := scoring.EvaluateTestCases(req.Source, req.TestCases)

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	// Ledger only — practice is ungraded and writes no result row.
	err := h.analyticsService.RecordPracticeSubmission(c.Request.Context(), claims.UserID,
		model.SubmissionTypeProblem, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Practice ledger append failed")
	}

	response.Success(c, http.StatusOK, gin.H{
		"results": results,
		"passed":  passed,
		"total":   len(results),
	})
}
