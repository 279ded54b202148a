package repository

import (
	"context"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PaperRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPaperRepository(db *pgxpool.Pool, logger *zap.Logger) *PaperRepository {
	return &PaperRepository{db: db, logger: logger}
}

const paperColumns = `id, user_id, paper_type, domain, topic, status, created_at`

func scanPaper(row pgx.Row) (*model.ResearchPaper, error) {
	var p model.ResearchPaper
	if err := row.Scan(&p.ID, &p.UserID, &p.PaperType, &p.Domain, &p.Topic, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaperRepository) Create(ctx context.Context, p *model.ResearchPaper) error {
	query := `
        INSERT INTO research_papers (user_id, paper_type, domain, topic, status, created_at)
        VALUES ($1, $2, $3, $4, 'draft', NOW())
        RETURNING id, status, created_at
    `
	err := r.db.QueryRow(ctx, query, p.UserID, p.PaperType, p.Domain, p.Topic).Scan(&p.ID, &p.Status, &p.CreatedAt)
	if err != nil {
		return mapErr(err, "paper")
	}
	r.logger.Debug("Paper created", zap.Int64("paper_id", p.ID), zap.Int64("user_id", p.UserID))
	return nil
}

// ListByOwner returns the user's papers, newest first. limit <= 0 means all.
func (r *PaperRepository) ListByOwner(ctx context.Context, userID int64, limit int) ([]model.ResearchPaper, error) {
	query := `SELECT ` + paperColumns + `
        FROM research_papers
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT NULLIF($2, 0)
    `
	rows, err := r.db.Query(ctx, query, userID, max(limit, 0))
	if err != nil {
		return nil, mapErr(err, "paper")
	}
	papers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ResearchPaper, error) {
		p, err := scanPaper(row)
		if err != nil {
			return model.ResearchPaper{}, err
		}
		return *p, nil
	})
	return papers, mapErr(err, "paper")
}

func (r *PaperRepository) Get(ctx context.Context, userID, id int64) (*model.ResearchPaper, error) {
	query := `SELECT ` + paperColumns + ` FROM research_papers WHERE id = $1 AND user_id = $2`
	p, err := scanPaper(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapErr(err, "paper")
	}
	return p, nil
}

func (r *PaperRepository) Update(ctx context.Context, userID, id int64, u model.PaperUpdate) (*model.ResearchPaper, error) {
	query := `
        UPDATE research_papers SET
            paper_type = COALESCE($3, paper_type),
            domain = COALESCE($4, domain),
            topic = COALESCE($5, topic),
            status = COALESCE($6, status)
        WHERE id = $1 AND user_id = $2
        RETURNING ` + paperColumns
	p, err := scanPaper(r.db.QueryRow(ctx, query, id, userID, u.PaperType, u.Domain, u.Topic, u.Status))
	if err != nil {
		return nil, mapErr(err, "paper")
	}
	return p, nil
}

// Delete removes the paper together with its contents and reminders.
func (r *PaperRepository) Delete(ctx context.Context, userID, id int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var owned bool
		err := tx.QueryRow(ctx,
			`SELECT true FROM research_papers WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID,
		).Scan(&owned)
		if err != nil {
			return err
		}

		contents, err := tx.Exec(ctx, `DELETE FROM paper_contents WHERE paper_id = $1`, id)
		if err != nil {
			return err
		}
		reminders, err := tx.Exec(ctx, `DELETE FROM reminders WHERE paper_id = $1`, id)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM research_papers WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("paper")
		}

		r.logger.Info("Paper deleted",
			zap.Int64("paper_id", id),
			zap.Int64("user_id", userID),
			zap.Int64("contents", contents.RowsAffected()),
			zap.Int64("reminders", reminders.RowsAffected()),
		)
		return nil
	})
	return mapErr(err, "paper")
}
