package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"researchhub/internal/completion"
	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const roadmapReply = `Step 1: Set up the repository
Description: Create the project skeleton.
Guideline: The app builds locally.
Status: pending

Step 2: Build the API
Description: Implement the endpoints.
Guideline: All endpoints answer.
Status: pending`

func newProjectService(llm *fakeCompleter) (*ProjectService, *fakeProjects, *fakeSteps) {
	projects := newFakeProjects()
	steps := newFakeSteps()
	return NewProjectService(projects, steps, llm, newFakeLocker(), zap.NewNop()), projects, steps
}

func seedProject(t *testing.T, projects *fakeProjects, userID int64) *model.Project {
	t.Helper()
	p := &model.Project{UserID: userID, Name: "Habit tracker", Description: "Track habits", Complexity: 4, EstimatedDuration: "10 days"}
	require.NoError(t, projects.Create(context.Background(), p))
	return p
}

func TestGenerateIdea(t *testing.T) {
	llm := &fakeCompleter{reply: "Idea: A habit tracker | Complexity: 7 | Duration: 14 days"}
	svc, _, _ := newProjectService(llm)

	idea, err := svc.GenerateIdea(context.Background(), 1, model.IdeaQuiz{
		ProjectType: "Web", ExperienceLevel: "Beginner", Device: "Laptop",
		Languages: []string{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.GeneratedIdea{Text: "A habit tracker", Complexity: 7, Duration: "14 days"}, *idea)
	assert.Equal(t, []completion.Purpose{completion.PurposeIdea}, llm.calls)
}

func TestGenerateIdeaRequiresQuizFields(t *testing.T) {
	llm := &fakeCompleter{}
	svc, _, _ := newProjectService(llm)

	_, err := svc.GenerateIdea(context.Background(), 1, model.IdeaQuiz{ProjectType: "Web"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, llm.calls)
}

func TestGenerateIdeaPropagatesUpstreamError(t *testing.T) {
	llm := &fakeCompleter{err: apperr.Upstream("completion", errors.New("503"))}
	svc, _, _ := newProjectService(llm)

	_, err := svc.GenerateIdea(context.Background(), 1, model.IdeaQuiz{ProjectType: "Web", ExperienceLevel: "Beginner", Device: "Laptop"})
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.True(t, apperr.Retryable(err))
}

func TestElaborate(t *testing.T) {
	llm := &fakeCompleter{reply: "Overview: Tracks habits.\nFeatures:\n- Streaks\n- Reminders\nChallenges:\n- Sync"}
	svc, _, _ := newProjectService(llm)

	e, err := svc.Elaborate(context.Background(), "A habit tracker")
	require.NoError(t, err)
	assert.Equal(t, "Tracks habits.", e.Overview)
	assert.Contains(t, e.Features, "Streaks")
	assert.Contains(t, e.Challenges, "Sync")
}

func TestCreateValidatesComplexity(t *testing.T) {
	svc, _, _ := newProjectService(&fakeCompleter{})

	err := svc.Create(context.Background(), 1, &model.Project{Name: "X", Complexity: 11})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	p := &model.Project{Name: " X ", Complexity: 3}
	require.NoError(t, svc.Create(context.Background(), 1, p))
	assert.Equal(t, "X", p.Name)
	assert.Equal(t, model.StatusPending, p.Status)
	assert.Equal(t, int64(1), p.UserID)
	assert.NotNil(t, p.Languages)
}

func TestListAddsProgress(t *testing.T) {
	svc, projects, _ := newProjectService(&fakeCompleter{})
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, projects.Create(context.Background(), &model.Project{UserID: 1, Name: "A", EstimatedDuration: "10 days", CreatedAt: created}))
	svc.now = func() time.Time { return created.Add(4 * 24 * time.Hour) }

	list, err := svc.List(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].Progress.DaysSinceCreation)
	require.NotNil(t, list[0].Progress.DaysLeft)
	assert.Equal(t, 6, *list[0].Progress.DaysLeft)
	assert.Equal(t, 40, list[0].Progress.Percent)
}

func TestGetScopesByOwner(t *testing.T) {
	svc, projects, _ := newProjectService(&fakeCompleter{})
	p := seedProject(t, projects, 1)

	_, err := svc.Get(context.Background(), 2, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGenerateRoadmapReplacesSteps(t *testing.T) {
	llm := &fakeCompleter{reply: roadmapReply}
	svc, projects, steps := newProjectService(llm)
	p := seedProject(t, projects, 1)

	first, err := svc.GenerateRoadmap(context.Background(), 1, p.ID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Set up the repository", first[0].StepName)
	assert.Equal(t, 2, first[1].Position)

	_, err = svc.GenerateRoadmap(context.Background(), 1, p.ID)
	require.NoError(t, err)

	stored, err := svc.Roadmap(context.Background(), 1, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, 2, steps.replaces)
	assert.Contains(t, llm.prompts[0], "Habit tracker")
}

func TestGenerateRoadmapEmptyParseKeepsExistingSteps(t *testing.T) {
	llm := &fakeCompleter{reply: roadmapReply}
	svc, projects, steps := newProjectService(llm)
	p := seedProject(t, projects, 1)

	_, err := svc.GenerateRoadmap(context.Background(), 1, p.ID)
	require.NoError(t, err)

	llm.reply = "Sorry, I cannot help with that."
	got, err := svc.GenerateRoadmap(context.Background(), 1, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, steps.replaces)

	stored, err := svc.Roadmap(context.Background(), 1, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestGenerateRoadmapRejectsConcurrentRun(t *testing.T) {
	llm := &fakeCompleter{reply: roadmapReply, block: make(chan struct{})}
	svc, projects, _ := newProjectService(llm)
	p := seedProject(t, projects, 1)

	done := make(chan error, 1)
	go func() {
		_, err := svc.GenerateRoadmap(context.Background(), 1, p.ID)
		done <- err
	}()
	require.Eventually(t, func() bool {
		llm.mu.Lock()
		defer llm.mu.Unlock()
		return len(llm.calls) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := svc.GenerateRoadmap(context.Background(), 1, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	close(llm.block)
	require.NoError(t, <-done)

	// lock released after the first run
	_, err = svc.GenerateRoadmap(context.Background(), 1, p.ID)
	assert.NoError(t, err)
}

func TestGenerateRoadmapUnknownProject(t *testing.T) {
	llm := &fakeCompleter{reply: roadmapReply}
	svc, _, _ := newProjectService(llm)

	_, err := svc.GenerateRoadmap(context.Background(), 1, 99)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, llm.calls)
}

func TestToggleStepTwiceRestoresStatus(t *testing.T) {
	svc, projects, _ := newProjectService(&fakeCompleter{reply: roadmapReply})
	p := seedProject(t, projects, 1)
	steps, err := svc.GenerateRoadmap(context.Background(), 1, p.ID)
	require.NoError(t, err)

	s, err := svc.ToggleStep(context.Background(), 1, p.ID, steps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, s.Status)

	s, err = svc.ToggleStep(context.Background(), 1, p.ID, steps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, s.Status)
}

func TestCompleteAndDelete(t *testing.T) {
	svc, projects, _ := newProjectService(&fakeCompleter{})
	p := seedProject(t, projects, 1)

	done, err := svc.Complete(context.Background(), 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)

	require.NoError(t, svc.Delete(context.Background(), 1, p.ID))
	_, err = svc.Get(context.Background(), 1, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
