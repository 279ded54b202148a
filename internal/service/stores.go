package service

import (
	"context"
	"time"

	"researchhub/internal/model"
)

// The repository package satisfies these with its pgx-backed types.

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

type ProjectStore interface {
	Create(ctx context.Context, p *model.Project) error
	ListByOwner(ctx context.Context, userID int64, limit int) ([]model.Project, error)
	Get(ctx context.Context, userID, id int64) (*model.Project, error)
	Update(ctx context.Context, userID, id int64, u model.ProjectUpdate) (*model.Project, error)
	MarkCompleted(ctx context.Context, userID, id int64) (*model.Project, error)
	Delete(ctx context.Context, userID, id int64) error
}

type RoadmapStore interface {
	ReplaceForProject(ctx context.Context, userID, projectID int64, steps []model.RoadmapStep) ([]model.RoadmapStep, error)
	ListByProject(ctx context.Context, userID, projectID int64) ([]model.RoadmapStep, error)
	ToggleStatus(ctx context.Context, userID, projectID, stepID int64) (*model.RoadmapStep, error)
}

type PaperStore interface {
	Create(ctx context.Context, p *model.ResearchPaper) error
	ListByOwner(ctx context.Context, userID int64, limit int) ([]model.ResearchPaper, error)
	Get(ctx context.Context, userID, id int64) (*model.ResearchPaper, error)
	Update(ctx context.Context, userID, id int64, u model.PaperUpdate) (*model.ResearchPaper, error)
	Delete(ctx context.Context, userID, id int64) error
}

type PaperContentStore interface {
	ListByPaper(ctx context.Context, userID, paperID int64) ([]model.PaperContent, error)
	Append(ctx context.Context, userID int64, c *model.PaperContent) error
	UpdateContent(ctx context.Context, userID, paperID, contentID int64, content string) (*model.PaperContent, error)
}

type ReminderStore interface {
	Create(ctx context.Context, r *model.Reminder) error
	ListByParent(ctx context.Context, userID int64, projectID, paperID *int64) ([]model.Reminder, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Locker serialises generation per resource. Acquire returns "" when the
// lock is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context, scope string, id int64) (string, error)
	Release(ctx context.Context, scope string, id int64, token string)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
