package repository

import (
	"context"

	"researchhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type RoadmapRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRoadmapRepository(db *pgxpool.Pool, logger *zap.Logger) *RoadmapRepository {
	return &RoadmapRepository{db: db, logger: logger}
}

var roadmapCopyColumns = []string{"project_id", "step_name", "description", "completion_guideline", "status", "position"}

// ReplaceForProject swaps the project's steps for the given set in one
// transaction; readers see either the old roadmap or the new one.
func (r *RoadmapRepository) ReplaceForProject(ctx context.Context, userID, projectID int64, steps []model.RoadmapStep) ([]model.RoadmapStep, error) {
	var saved []model.RoadmapStep
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var owned bool
		err := tx.QueryRow(ctx,
			`SELECT true FROM projects WHERE id = $1 AND user_id = $2 FOR UPDATE`, projectID, userID,
		).Scan(&owned)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM roadmap_steps WHERE project_id = $1`, projectID); err != nil {
			return err
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"roadmap_steps"},
			roadmapCopyColumns,
			pgx.CopyFromSlice(len(steps), func(i int) ([]any, error) {
				s := steps[i]
				return []any{projectID, s.StepName, s.Description, s.CompletionGuideline, s.Status, s.Position}, nil
			}),
		)
		if err != nil {
			return err
		}

		saved, err = listSteps(ctx, tx, projectID)
		if err != nil {
			return err
		}
		r.logger.Info("Roadmap replaced",
			zap.Int64("project_id", projectID),
			zap.Int64("steps", n),
		)
		return nil
	})
	if err != nil {
		return nil, mapErr(err, "project")
	}
	return saved, nil
}

// ListByProject returns steps ordered by position, then insertion order.
func (r *RoadmapRepository) ListByProject(ctx context.Context, userID, projectID int64) ([]model.RoadmapStep, error) {
	var owned bool
	err := r.db.QueryRow(ctx,
		`SELECT true FROM projects WHERE id = $1 AND user_id = $2`, projectID, userID,
	).Scan(&owned)
	if err != nil {
		return nil, mapErr(err, "project")
	}
	steps, err := listSteps(ctx, r.db, projectID)
	return steps, mapErr(err, "roadmap step")
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listSteps(ctx context.Context, q querier, projectID int64) ([]model.RoadmapStep, error) {
	query := `
        SELECT id, project_id, step_name, description, completion_guideline, status, position
        FROM roadmap_steps
        WHERE project_id = $1
        ORDER BY position, id
    `
	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RoadmapStep, error) {
		var s model.RoadmapStep
		err := row.Scan(&s.ID, &s.ProjectID, &s.StepName, &s.Description, &s.CompletionGuideline, &s.Status, &s.Position)
		return s, err
	})
}

// ToggleStatus flips a step between pending and completed.
func (r *RoadmapRepository) ToggleStatus(ctx context.Context, userID, projectID, stepID int64) (*model.RoadmapStep, error) {
	query := `
        UPDATE roadmap_steps s
        SET status = CASE WHEN s.status = 'completed' THEN 'pending' ELSE 'completed' END
        FROM projects p
        WHERE s.id = $1 AND s.project_id = $2 AND p.id = s.project_id AND p.user_id = $3
        RETURNING s.id, s.project_id, s.step_name, s.description, s.completion_guideline, s.status, s.position
    `
	var s model.RoadmapStep
	err := r.db.QueryRow(ctx, query, stepID, projectID, userID).Scan(
		&s.ID, &s.ProjectID, &s.StepName, &s.Description, &s.CompletionGuideline, &s.Status, &s.Position,
	)
	if err != nil {
		return nil, mapErr(err, "roadmap step")
	}
	return &s, nil
}
