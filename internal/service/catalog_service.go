package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogService handles test creation and display-ordered listing.
type CatalogService struct {
	catalog store.CatalogStore
	results store.ResultStore
	log     zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalog store.CatalogStore, results store.ResultStore, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		results: results,
		log:     log.With().Str("component", "catalog_service").Logger(),
	}
}

// CreateTest normalizes and validates an authoring payload and persists the
// test. Question-type aliases are resolved here, once; the stored record
// only ever carries the closed type set. Status is computed from the
// schedule at this moment and never re-evaluated.
func (s *CatalogService) CreateTest(ctx context.Context, req *model.CreateTestRequest) (*model.Test, error) {
	questions := make([]model.Question, 0, len(req.Questions))
	for i := range req.Questions {
		qr := &req.Questions[i]

		qtype, err := model.ParseQuestionType(qr.Type)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}

		q := model.Question{
			ID:            uuid.New(),
			Title:         qr.Title,
			Description:   qr.Description,
			Difficulty:    model.Difficulty(qr.Difficulty),
			Points:        qr.Points,
			Type:          qtype,
			Options:       qr.Options,
			CorrectAnswer: qr.CorrectAnswer,
			TestCases:     qr.TestCases,
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	status := model.ComputeStatus(req.StartDate, req.EndDate, time.Now())
	if req.Draft {
		status = model.TestStatusDraft
	}

	test := &model.Test{
		ID:              uuid.New(),
		Title:           req.Title,
		BatchID:         req.BatchID,
		DurationMinutes: req.DurationMinutes,
		Questions:       questions,
		Status:          status,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}

	if err := s.catalog.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Str("status", string(test.Status)).
		Int("questions", len(test.Questions)).
		Msg("Test created")

	return test, nil
}

// GetByID returns the full test definition, correct answers included.
// Admin/engine use only.
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return s.catalog.GetByID(ctx, id)
}

// ScoreSummary is a student's latest recorded score for a test.
type ScoreSummary struct {
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TestDisplay is one dashboard entry: the test plus the caller's latest
// score when they have submitted it.
type TestDisplay struct {
	model.Test
	LatestScore *ScoreSummary `json:"latest_score,omitempty"`
}

// DisplayList is a batch's tests ordered for the student dashboard.
// Current, when present, is the pinned active-or-scheduled test.
type DisplayList struct {
	Current *TestDisplay  `json:"current,omitempty"`
	Tests   []TestDisplay `json:"tests"`
}

// ListForDisplay returns the batch's tests in display order: status rank
// first (active, scheduled, completed, draft), then start date (falling back
// to creation date) descending. If the top-ranked test is active or
// scheduled it is pinned as "current" and excluded from the remainder.
// Completed tests carry the caller's latest score.
func (s *CatalogService) ListForDisplay(ctx context.Context, batchID, userID string) (*DisplayList, error) {
	all, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}

	var tests []model.Test
	for i := range all {
		if all[i].BatchID == batchID {
			tests = append(tests, all[i])
		}
	}

	current, rest := orderForDisplay(tests)

	list := &DisplayList{Tests: make([]TestDisplay, 0, len(rest))}
	if current != nil {
		d := s.displayEntry(ctx, current, userID)
		list.Current = &d
	}
	for i := range rest {
		list.Tests = append(list.Tests, s.displayEntry(ctx, &rest[i], userID))
	}
	return list, nil
}

// displayEntry attaches the caller's latest score to a completed test.
// A missing or unreadable result reads as no score.
func (s *CatalogService) displayEntry(ctx context.Context, t *model.Test, userID string) TestDisplay {
	d := TestDisplay{Test: *t}
	if t.Status != model.TestStatusCompleted {
		return d
	}

	res, err := s.results.LatestForTest(ctx, t.ID, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNoResult) {
			s.log.Warn().Err(err).Str("test_id", t.ID.String()).Msg("Latest result lookup failed")
		}
		return d
	}
	d.LatestScore = &ScoreSummary{
		Score:       res.Score,
		Total:       res.Total,
		SubmittedAt: res.SubmittedAt,
	}
	return d
}

// statusRank orders statuses for display; lower sorts first.
func statusRank(s model.TestStatus) int {
	switch s {
	case model.TestStatusActive:
		return 0
	case model.TestStatusScheduled:
		return 1
	case model.TestStatusCompleted:
		return 2
	case model.TestStatusDraft:
		return 3
	default:
		return 4
	}
}

// sortKeyDate is the recency key: start date when scheduled, else creation.
func sortKeyDate(t *model.Test) time.Time {
	if t.StartDate != nil {
		return *t.StartDate
	}
	return t.CreatedAt
}

// orderForDisplay sorts by (status rank asc, recency desc) and pins the top
// element as "current" when it is active or scheduled.
func orderForDisplay(tests []model.Test) (*model.Test, []model.Test) {
	sorted := make([]model.Test, len(tests))
	copy(sorted, tests)

	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := statusRank(sorted[i].Status), statusRank(sorted[j].Status)
		if ri != rj {
			return ri < rj
		}
		return sortKeyDate(&sorted[i]).After(sortKeyDate(&sorted[j]))
	})

	if len(sorted) == 0 {
		return nil, sorted
	}

	top := sorted[0]
	if top.Status == model.TestStatusActive || top.Status == model.TestStatusScheduled {
		return &top, sorted[1:]
	}
	return nil, sorted
}

// TestForStudent is a test definition with answer keys and hidden test-case
// expectations stripped.
type TestForStudent struct {
	ID              uuid.UUID         `json:"id"`
	Title           string            `json:"title"`
	DurationMinutes int               `json:"duration_minutes"`
	Questions       []QuestionForUser `json:"questions"`
	Status          model.TestStatus  `json:"status"`
}

// QuestionForUser is a question without grading material.
type QuestionForUser struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Difficulty  model.Difficulty   `json:"difficulty"`
	Points      int                `json:"points"`
	Type        model.QuestionType `json:"type"`
	Options     []string           `json:"options,omitempty"`
	TestCases   []model.TestCase   `json:"test_cases,omitempty"`
}

// GetForStudent returns the student-safe view of a test: no correct answers,
// hidden test cases omitted entirely.
func (s *CatalogService) GetForStudent(ctx context.Context, id uuid.UUID) (*TestForStudent, error) {
	test, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questions := make([]QuestionForUser, 0, len(test.Questions))
	for i := range test.Questions {
		q := &test.Questions[i]
		var visible []model.TestCase
		for _, tc := range q.TestCases {
			if !tc.Hidden {
				visible = append(visible, tc)
			}
		}
		questions = append(questions, QuestionForUser{
			ID:          q.ID,
			Title:       q.Title,
			Description: q.Description,
			Difficulty:  q.Difficulty,
			Points:      q.Points,
			Type:        q.Type,
			Options:     q.Options,
			TestCases:   visible,
		})
	}

	return &TestForStudent{
		ID:              test.ID,
		Title:           test.Title,
		DurationMinutes: test.DurationMinutes,
		Questions:       questions,
		Status:          test.Status,
	}, nil
}
