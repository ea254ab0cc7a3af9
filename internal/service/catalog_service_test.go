package service

import (
	"context"
	"testing"
	"time"

	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture() (*CatalogService, *store.MemoryCatalogStore, *store.MemoryResultStore) {
	catalog := store.NewMemoryCatalogStore()
	results := store.NewMemoryResultStore()
	return NewCatalogService(catalog, results, zerolog.Nop()), catalog, results
}

func createReq(title string, questions ...model.AddQuestionRequest) *model.CreateTestRequest {
	return &model.CreateTestRequest{
		Title:           title,
		BatchID:         "batch-1",
		DurationMinutes: 60,
		Questions:       questions,
	}
}

func mcqReq(correct string, options ...string) model.AddQuestionRequest {
	return model.AddQuestionRequest{
		Title:         "pick one",
		Difficulty:    "easy",
		Points:        10,
		Type:          "mcq",
		Options:       options,
		CorrectAnswer: correct,
	}
}

func TestCreateTestNormalizesTypeAliases(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	req := createReq("Aliases",
		model.AddQuestionRequest{Title: "legacy code", Difficulty: "medium", Points: 20, Type: "code"},
		model.AddQuestionRequest{Title: "legacy mc", Difficulty: "easy", Points: 10, Type: "multiple_choice", Options: []string{"a", "b"}, CorrectAnswer: "a"},
	)

	test, err := svc.CreateTest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.QuestionTypeCoding, test.Questions[0].Type)
	assert.Equal(t, model.QuestionTypeMCQ, test.Questions[1].Type)
}

func TestCreateTestRejectsUnknownType(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	req := createReq("Bad",
		model.AddQuestionRequest{Title: "essay?", Difficulty: "easy", Points: 10, Type: "essay"},
	)
	_, err := svc.CreateTest(context.Background(), req)
	assert.Error(t, err)
}

func TestCreateTestRejectsInvalidMCQ(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	// Correct answer outside the option set.
	_, err := svc.CreateTest(ctx, createReq("Bad", mcqReq("z", "a", "b")))
	assert.Error(t, err)

	// Duplicate options.
	_, err = svc.CreateTest(ctx, createReq("Bad", mcqReq("a", "a", "a")))
	assert.Error(t, err)
}

func TestCreateTestStatus(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	future := time.Now().Add(24 * time.Hour)
	req := createReq("Scheduled", mcqReq("a", "a", "b"))
	req.StartDate = &future
	test, err := svc.CreateTest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.TestStatusScheduled, test.Status)

	// Draft overrides the computed schedule status.
	req2 := createReq("Draft", mcqReq("a", "a", "b"))
	req2.Draft = true
	test2, err := svc.CreateTest(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, model.TestStatusDraft, test2.Status)
}

func seedTest(t *testing.T, catalog *store.MemoryCatalogStore, title string, status model.TestStatus, created time.Time) {
	t.Helper()
	require.NoError(t, catalog.Create(context.Background(), &model.Test{
		ID:        uuid.New(),
		Title:     title,
		BatchID:   "batch-1",
		Status:    status,
		CreatedAt: created,
	}))
}

func TestListForDisplayOrderingAndPinning(t *testing.T) {
	svc, catalog, _ := newCatalogFixture()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedTest(t, catalog, "old completed", model.TestStatusCompleted, base)
	seedTest(t, catalog, "draft", model.TestStatusDraft, base.Add(72*time.Hour))
	seedTest(t, catalog, "active", model.TestStatusActive, base.Add(24*time.Hour))
	seedTest(t, catalog, "scheduled", model.TestStatusScheduled, base.Add(48*time.Hour))
	seedTest(t, catalog, "new completed", model.TestStatusCompleted, base.Add(96*time.Hour))

	list, err := svc.ListForDisplay(context.Background(), "batch-1", "user-1")
	require.NoError(t, err)

	// The active test ranks first and is pinned as current.
	require.NotNil(t, list.Current)
	assert.Equal(t, "active", list.Current.Title)

	titles := make([]string, 0, len(list.Tests))
	for i := range list.Tests {
		titles = append(titles, list.Tests[i].Title)
	}
	assert.Equal(t, []string{"scheduled", "new completed", "old completed", "draft"}, titles)
}

func TestListForDisplayNoPinWithoutJoinableTest(t *testing.T) {
	svc, catalog, _ := newCatalogFixture()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedTest(t, catalog, "completed", model.TestStatusCompleted, base)
	seedTest(t, catalog, "draft", model.TestStatusDraft, base)

	list, err := svc.ListForDisplay(context.Background(), "batch-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, list.Current)
	assert.Len(t, list.Tests, 2)
}

func TestListForDisplayFiltersByBatch(t *testing.T) {
	svc, catalog, _ := newCatalogFixture()

	seedTest(t, catalog, "mine", model.TestStatusCompleted, time.Now())
	require.NoError(t, catalog.Create(context.Background(), &model.Test{
		ID: uuid.New(), Title: "other batch", BatchID: "batch-2", Status: model.TestStatusActive,
	}))

	list, err := svc.ListForDisplay(context.Background(), "batch-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, list.Current)
	require.Len(t, list.Tests, 1)
	assert.Equal(t, "mine", list.Tests[0].Title)
}

func TestListForDisplayAnnotatesCompletedTestsWithLatestScore(t *testing.T) {
	svc, catalog, results := newCatalogFixture()
	ctx := context.Background()

	done := &model.Test{ID: uuid.New(), Title: "done", BatchID: "batch-1", Status: model.TestStatusCompleted}
	unattempted := &model.Test{ID: uuid.New(), Title: "skipped", BatchID: "batch-1", Status: model.TestStatusCompleted}
	require.NoError(t, catalog.Create(ctx, done))
	require.NoError(t, catalog.Create(ctx, unattempted))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, score := range []int{40, 70} {
		require.NoError(t, results.Append(ctx, &model.TestResult{
			ID:          uuid.New(),
			TestID:      done.ID,
			UserID:      "user-1",
			Score:       score,
			Total:       100,
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, err := svc.ListForDisplay(ctx, "batch-1", "user-1")
	require.NoError(t, err)
	require.Len(t, list.Tests, 2)

	byTitle := make(map[string]*ScoreSummary)
	for i := range list.Tests {
		byTitle[list.Tests[i].Title] = list.Tests[i].LatestScore
	}

	// The most recent submission, not the best one.
	require.NotNil(t, byTitle["done"])
	assert.Equal(t, 70, byTitle["done"].Score)
	assert.Equal(t, 100, byTitle["done"].Total)
	assert.Nil(t, byTitle["skipped"], "no result means no score annotation")

	// Another student sees no scores at all.
	other, err := svc.ListForDisplay(ctx, "batch-1", "user-2")
	require.NoError(t, err)
	for i := range other.Tests {
		assert.Nil(t, other.Tests[i].LatestScore)
	}
}

func TestGetForStudentStripsGradingMaterial(t *testing.T) {
	svc, catalog, _ := newCatalogFixture()
	ctx := context.Background()

	test := &model.Test{
		ID:      uuid.New(),
		Title:   "Safe view",
		BatchID: "batch-1",
		Status:  model.TestStatusActive,
		Questions: []model.Question{
			{
				ID: uuid.New(), Title: "mc", Type: model.QuestionTypeMCQ, Points: 10,
				Options: []string{"a", "b"}, CorrectAnswer: "b",
			},
			{
				ID: uuid.New(), Title: "code", Type: model.QuestionTypeCoding, Points: 20,
				TestCases: []model.TestCase{
					{Input: "1", ExpectedOutput: "2"},
					{Input: "3", ExpectedOutput: "4", Hidden: true},
				},
			},
		},
	}
	require.NoError(t, catalog.Create(ctx, test))

	view, err := svc.GetForStudent(ctx, test.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, []string{"a", "b"}, view.Questions[0].Options)
	require.Len(t, view.Questions[1].TestCases, 1, "hidden cases are omitted")
	assert.Equal(t, "1", view.Questions[1].TestCases[0].Input)
}
