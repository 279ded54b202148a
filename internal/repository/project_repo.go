package repository

import (
	"context"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `id, user_id, name, description, status, complexity, estimated_duration,
        features, challenges, project_type, experience_level, languages, device, created_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status, &p.Complexity, &p.EstimatedDuration,
		&p.Features, &p.Challenges, &p.ProjectType, &p.ExperienceLevel, &p.Languages, &p.Device, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	query := `
        INSERT INTO projects (user_id, name, description, status, complexity, estimated_duration,
            features, challenges, project_type, experience_level, languages, device, created_at)
        VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7, $8, $9, $10, $11, NOW())
        RETURNING id, status, created_at
    `
	if p.Languages == nil {
		p.Languages = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		p.UserID, p.Name, p.Description, p.Complexity, p.EstimatedDuration,
		p.Features, p.Challenges, p.ProjectType, p.ExperienceLevel, p.Languages, p.Device,
	).Scan(&p.ID, &p.Status, &p.CreatedAt)
	if err != nil {
		return mapErr(err, "project")
	}
	r.logger.Debug("Project created", zap.Int64("project_id", p.ID), zap.Int64("user_id", p.UserID))
	return nil
}

// ListByOwner returns the user's projects, newest first. limit <= 0 means all.
func (r *ProjectRepository) ListByOwner(ctx context.Context, userID int64, limit int) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + `
        FROM projects
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT NULLIF($2, 0)
    `
	rows, err := r.db.Query(ctx, query, userID, max(limit, 0))
	if err != nil {
		return nil, mapErr(err, "project")
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, mapErr(err, "project")
		}
		projects = append(projects, *p)
	}
	return projects, mapErr(rows.Err(), "project")
}

func (r *ProjectRepository) Get(ctx context.Context, userID, id int64) (*model.Project, error) {
	query := `SELECT ` + projectColumns + `
        FROM projects
        WHERE id = $1 AND user_id = $2
    `
	p, err := scanProject(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapErr(err, "project")
	}
	return p, nil
}

// Update applies the non-nil fields of u.
func (r *ProjectRepository) Update(ctx context.Context, userID, id int64, u model.ProjectUpdate) (*model.Project, error) {
	query := `
        UPDATE projects SET
            name = COALESCE($3, name),
            description = COALESCE($4, description),
            estimated_duration = COALESCE($5, estimated_duration),
            features = COALESCE($6, features),
            challenges = COALESCE($7, challenges)
        WHERE id = $1 AND user_id = $2
        RETURNING ` + projectColumns
	p, err := scanProject(r.db.QueryRow(ctx, query, id, userID,
		u.Name, u.Description, u.EstimatedDuration, u.Features, u.Challenges))
	if err != nil {
		return nil, mapErr(err, "project")
	}
	return p, nil
}

// MarkCompleted moves a project to completed. Completed projects never go back.
func (r *ProjectRepository) MarkCompleted(ctx context.Context, userID, id int64) (*model.Project, error) {
	query := `
        UPDATE projects SET status = 'completed'
        WHERE id = $1 AND user_id = $2
        RETURNING ` + projectColumns
	p, err := scanProject(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapErr(err, "project")
	}
	r.logger.Info("Project completed", zap.Int64("project_id", id), zap.Int64("user_id", userID))
	return p, nil
}

// Delete removes the project together with its roadmap steps and reminders.
func (r *ProjectRepository) Delete(ctx context.Context, userID, id int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var owned bool
		err := tx.QueryRow(ctx,
			`SELECT true FROM projects WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID,
		).Scan(&owned)
		if err != nil {
			return err
		}

		steps, err := tx.Exec(ctx, `DELETE FROM roadmap_steps WHERE project_id = $1`, id)
		if err != nil {
			return err
		}
		reminders, err := tx.Exec(ctx, `DELETE FROM reminders WHERE project_id = $1`, id)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("project")
		}

		r.logger.Info("Project deleted",
			zap.Int64("project_id", id),
			zap.Int64("user_id", userID),
			zap.Int64("roadmap_steps", steps.RowsAffected()),
			zap.Int64("reminders", reminders.RowsAffected()),
		)
		return nil
	})
	return mapErr(err, "project")
}
