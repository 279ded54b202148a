package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// These tests run against a disposable Postgres named by
// RESEARCHHUB_TEST_DATABASE_URL and are skipped otherwise.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("RESEARCHHUB_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RESEARCHHUB_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	return pool
}

type fixture struct {
	users     *UserRepository
	projects  *ProjectRepository
	roadmap   *RoadmapRepository
	papers    *PaperRepository
	contents  *PaperContentRepository
	reminders *ReminderRepository
}

func newFixture(t *testing.T) fixture {
	pool := testPool(t)
	log := zap.NewNop()
	return fixture{
		users:     NewUserRepository(pool, log),
		projects:  NewProjectRepository(pool, log),
		roadmap:   NewRoadmapRepository(pool, log),
		papers:    NewPaperRepository(pool, log),
		contents:  NewPaperContentRepository(pool, log),
		reminders: NewReminderRepository(pool, log),
	}
}

func (f fixture) user(t *testing.T) *model.User {
	u := &model.User{Email: uuid.NewString() + "@example.com", Name: "Ada", PasswordHash: "x"}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return u
}

func (f fixture) project(t *testing.T, userID int64) *model.Project {
	p := &model.Project{UserID: userID, Name: "Blog", Complexity: 3, EstimatedDuration: "7 days", Languages: []string{"Go"}}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func TestDuplicateEmailIsConflict(t *testing.T) {
	f := newFixture(t)
	u := f.user(t)
	err := f.users.CreateUser(context.Background(), &model.User{Email: u.Email, PasswordHash: "y"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRoadmapRoundTripAndToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	p := f.project(t, u.ID)

	in := []model.RoadmapStep{
		{StepName: "Setup", Description: "Init repo", CompletionGuideline: "Use git", Status: "pending", Position: 1},
		{StepName: "Build UI", Description: "Create pages", CompletionGuideline: "Use components", Status: "pending", Position: 2},
	}
	_, err := f.roadmap.ReplaceForProject(ctx, u.ID, p.ID, in)
	require.NoError(t, err)

	got, err := f.roadmap.ListByProject(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range in {
		assert.Equal(t, in[i].StepName, got[i].StepName)
		assert.Equal(t, in[i].Description, got[i].Description)
		assert.Equal(t, in[i].CompletionGuideline, got[i].CompletionGuideline)
		assert.Equal(t, in[i].Status, got[i].Status)
		assert.Equal(t, in[i].Position, got[i].Position)
	}

	once, err := f.roadmap.ToggleStatus(ctx, u.ID, p.ID, got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, once.Status)
	twice, err := f.roadmap.ToggleStatus(ctx, u.ID, p.ID, got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, twice.Status)

	// A second generation replaces instead of duplicating.
	_, err = f.roadmap.ReplaceForProject(ctx, u.ID, p.ID, in[:1])
	require.NoError(t, err)
	got, err = f.roadmap.ListByProject(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOwnerScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, other := f.user(t), f.user(t)
	p := f.project(t, owner.ID)

	_, err := f.projects.Get(ctx, other.ID, p.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.roadmap.ListByProject(ctx, other.ID, p.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.projects.Delete(ctx, other.ID, p.ID)))
}

func TestProjectDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	p := f.project(t, u.ID)

	_, err := f.roadmap.ReplaceForProject(ctx, u.ID, p.ID, []model.RoadmapStep{{StepName: "a", Description: "b", CompletionGuideline: "c", Status: "pending", Position: 1}})
	require.NoError(t, err)
	require.NoError(t, f.reminders.Create(ctx, &model.Reminder{UserID: u.ID, ProjectID: &p.ID, ReminderDate: time.Now().Add(time.Hour), Message: "m"}))

	require.NoError(t, f.projects.Delete(ctx, u.ID, p.ID))

	rems, err := f.reminders.ListByParent(ctx, u.ID, &p.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, rems)
	_, err = f.projects.Get(ctx, u.ID, p.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPaperContentPositionsPerType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	paper := &model.ResearchPaper{UserID: u.ID, PaperType: "survey", Domain: "biology", Topic: "CRISPR"}
	require.NoError(t, f.papers.Create(ctx, paper))

	for _, st := range []model.SectionType{model.SectionHeading, model.SectionContent, model.SectionHeading} {
		c := &model.PaperContent{PaperID: paper.ID, SectionType: st, Content: "x"}
		require.NoError(t, f.contents.Append(ctx, u.ID, c))
	}

	contents, err := f.contents.ListByPaper(ctx, u.ID, paper.ID)
	require.NoError(t, err)
	require.Len(t, contents, 3)
	assert.Equal(t, model.SectionHeading, contents[0].SectionType)
	assert.Equal(t, []int{1, 2, 1}, []int{contents[0].Position, contents[1].Position, contents[2].Position})

	require.NoError(t, f.papers.Delete(ctx, u.ID, paper.ID))
	_, err = f.papers.Get(ctx, u.ID, paper.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestClaimDueAndReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t)
	p := f.project(t, u.ID)

	due := time.Now().Add(-time.Minute).UTC().Truncate(time.Microsecond)
	rem := &model.Reminder{UserID: u.ID, ProjectID: &p.ID, ReminderDate: due, Message: "standup",
		IsRecurring: true, RecurrenceInterval: model.RecurrenceDaily}
	require.NoError(t, f.reminders.Create(ctx, rem))

	claimed, err := f.reminders.ClaimDue(ctx, time.Now(), time.Hour, 100)
	require.NoError(t, err)
	var found bool
	for _, d := range claimed {
		if d.ID == rem.ID {
			found = true
			assert.Equal(t, u.Email, d.Email)
		}
	}
	require.True(t, found)

	again, err := f.reminders.ClaimDue(ctx, time.Now(), time.Hour, 100)
	require.NoError(t, err)
	for _, d := range again {
		assert.NotEqual(t, rem.ID, d.ID)
	}

	next, _ := model.RecurrenceDaily.Next(due)
	moved, err := f.reminders.Reschedule(ctx, rem.ID, due, next)
	require.NoError(t, err)
	assert.True(t, moved)
	moved, err = f.reminders.Reschedule(ctx, rem.ID, due, next)
	require.NoError(t, err)
	assert.False(t, moved)
}
