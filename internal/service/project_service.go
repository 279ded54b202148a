package service

import (
	"context"
	"strings"
	"time"

	"researchhub/internal/completion"
	"researchhub/internal/model"
	"researchhub/internal/parser"
	"researchhub/internal/prompt"
	"researchhub/pkg/apperr"
	"researchhub/pkg/metrics"

	"go.uber.org/zap"
)

const roadmapLockScope = "roadmap"

type ProjectService struct {
	projects ProjectStore
	steps    RoadmapStore
	llm      completion.Completer
	locker   Locker
	logger   *zap.Logger
	now      func() time.Time
}

func NewProjectService(projects ProjectStore, steps RoadmapStore, llm completion.Completer, locker Locker, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		steps:    steps,
		llm:      llm,
		locker:   locker,
		logger:   logger.Named("project"),
		now:      time.Now,
	}
}

// GenerateIdea asks the model for one project idea matching the quiz.
func (s *ProjectService) GenerateIdea(ctx context.Context, userID int64, quiz model.IdeaQuiz) (*model.GeneratedIdea, error) {
	if strings.TrimSpace(quiz.ProjectType) == "" || strings.TrimSpace(quiz.ExperienceLevel) == "" || strings.TrimSpace(quiz.Device) == "" {
		return nil, apperr.Validation("project type, experience level and device are required")
	}

	text, err := s.llm.Complete(ctx, completion.PurposeIdea, prompt.Idea(quiz))
	if err != nil {
		return nil, err
	}
	idea := parser.ParseIdea(text)
	metrics.IncrementGeneration("idea")

	s.logger.Info("Idea generated",
		zap.Int64("user_id", userID),
		zap.Int("complexity", idea.Complexity),
		zap.Bool("after_rejection", quiz.RejectionReason != ""),
	)
	return &idea, nil
}

func (s *ProjectService) Elaborate(ctx context.Context, ideaText string) (*model.Elaboration, error) {
	if strings.TrimSpace(ideaText) == "" {
		return nil, apperr.Validation("idea text is required")
	}
	text, err := s.llm.Complete(ctx, completion.PurposeElaboration, prompt.Elaboration(ideaText))
	if err != nil {
		return nil, err
	}
	e := parser.ParseElaboration(text)
	metrics.IncrementGeneration("elaboration")
	return &e, nil
}

// Create saves an accepted idea as a pending project.
func (s *ProjectService) Create(ctx context.Context, userID int64, p *model.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperr.Validation("project name is required")
	}
	if p.Complexity < 1 || p.Complexity > 10 {
		return apperr.Validation("complexity must be between 1 and 10")
	}
	p.UserID = userID
	p.Status = model.StatusPending
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info("Project created", zap.Int64("user_id", userID), zap.Int64("project_id", p.ID))
	return nil
}

func (s *ProjectService) List(ctx context.Context, userID int64, limit int) ([]model.ProjectWithProgress, error) {
	projects, err := s.projects.ListByOwner(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.ProjectWithProgress, 0, len(projects))
	for i := range projects {
		out = append(out, model.ProjectWithProgress{
			Project:  projects[i],
			Progress: projects[i].Progress(now),
		})
	}
	return out, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, id int64) (*model.ProjectWithProgress, error) {
	p, err := s.projects.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &model.ProjectWithProgress{Project: *p, Progress: p.Progress(s.now())}, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id int64, u model.ProjectUpdate) (*model.Project, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, apperr.Validation("project name cannot be empty")
	}
	return s.projects.Update(ctx, userID, id, u)
}

func (s *ProjectService) Complete(ctx context.Context, userID, id int64) (*model.Project, error) {
	p, err := s.projects.MarkCompleted(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Project completed", zap.Int64("user_id", userID), zap.Int64("project_id", id))
	return p, nil
}

// Delete removes the project along with its roadmap steps and reminders.
func (s *ProjectService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.projects.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("Project deleted", zap.Int64("user_id", userID), zap.Int64("project_id", id))
	return nil
}

// GenerateRoadmap builds a fresh roadmap for the project and replaces the
// stored steps with it. Only one generation per project runs at a time; a
// concurrent request gets a conflict. When the model's answer yields no
// steps, the stored roadmap is left as it was and an empty list is returned.
func (s *ProjectService) GenerateRoadmap(ctx context.Context, userID, projectID int64) ([]model.RoadmapStep, error) {
	p, err := s.projects.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	token, err := s.locker.Acquire(ctx, roadmapLockScope, projectID)
	if err != nil {
		return nil, apperr.Internal("acquire roadmap lock", err)
	}
	if token == "" {
		return nil, apperr.Conflict("roadmap generation already in progress")
	}
	defer s.locker.Release(context.WithoutCancel(ctx), roadmapLockScope, projectID, token)

	text, err := s.llm.Complete(ctx, completion.PurposeRoadmap, prompt.Roadmap(*p))
	if err != nil {
		return nil, err
	}

	steps := parser.ParseRoadmap(text)
	if len(steps) == 0 {
		s.logger.Warn("Roadmap response yielded no steps",
			zap.Int64("project_id", projectID),
			zap.Int("response_len", len(text)),
		)
		return steps, nil
	}

	saved, err := s.steps.ReplaceForProject(ctx, userID, projectID, steps)
	if err != nil {
		return nil, err
	}
	metrics.IncrementGeneration("roadmap")
	s.logger.Info("Roadmap generated",
		zap.Int64("project_id", projectID),
		zap.Int("steps", len(saved)),
	)
	return saved, nil
}

func (s *ProjectService) Roadmap(ctx context.Context, userID, projectID int64) ([]model.RoadmapStep, error) {
	return s.steps.ListByProject(ctx, userID, projectID)
}

func (s *ProjectService) ToggleStep(ctx context.Context, userID, projectID, stepID int64) (*model.RoadmapStep, error) {
	return s.steps.ToggleStatus(ctx, userID, projectID, stepID)
}
