package repository

import (
	"context"

	"researchhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PaperContentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPaperContentRepository(db *pgxpool.Pool, logger *zap.Logger) *PaperContentRepository {
	return &PaperContentRepository{db: db, logger: logger}
}

func scanContent(row pgx.CollectableRow) (model.PaperContent, error) {
	var c model.PaperContent
	err := row.Scan(&c.ID, &c.PaperID, &c.SectionType, &c.Content, &c.Position)
	return c, err
}

// ListByPaper returns the paper's sections ordered by type and position.
func (r *PaperContentRepository) ListByPaper(ctx context.Context, userID, paperID int64) ([]model.PaperContent, error) {
	query := `
        SELECT c.id, c.paper_id, c.section_type, c.content, c.position
        FROM paper_contents c
        JOIN research_papers p ON p.id = c.paper_id
        WHERE c.paper_id = $1 AND p.user_id = $2
        ORDER BY array_position(ARRAY['abstract', 'introduction', 'section_heading',
            'section_content', 'conclusion', 'references'], c.section_type), c.position, c.id
    `
	rows, err := r.db.Query(ctx, query, paperID, userID)
	if err != nil {
		return nil, mapErr(err, "paper content")
	}
	contents, err := pgx.CollectRows(rows, scanContent)
	return contents, mapErr(err, "paper content")
}

// Append inserts a section at the next position of its type. The paper row
// is locked so concurrent appends get distinct positions.
func (r *PaperContentRepository) Append(ctx context.Context, userID int64, c *model.PaperContent) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var owned bool
		err := tx.QueryRow(ctx,
			`SELECT true FROM research_papers WHERE id = $1 AND user_id = $2 FOR UPDATE`, c.PaperID, userID,
		).Scan(&owned)
		if err != nil {
			return err
		}

		query := `
            INSERT INTO paper_contents (paper_id, section_type, content, position)
            SELECT $1, $2, $3, COUNT(*) + 1
            FROM paper_contents
            WHERE paper_id = $1 AND section_type = $2
            RETURNING id, position
        `
		return tx.QueryRow(ctx, query, c.PaperID, c.SectionType, c.Content).Scan(&c.ID, &c.Position)
	})
	if err != nil {
		return mapErr(err, "paper")
	}
	r.logger.Debug("Paper content appended",
		zap.Int64("paper_id", c.PaperID),
		zap.String("section_type", string(c.SectionType)),
		zap.Int("position", c.Position),
	)
	return nil
}

// UpdateContent rewrites the text of one section.
func (r *PaperContentRepository) UpdateContent(ctx context.Context, userID, paperID, contentID int64, content string) (*model.PaperContent, error) {
	query := `
        UPDATE paper_contents c SET content = $4
        FROM research_papers p
        WHERE c.id = $1 AND c.paper_id = $2 AND p.id = c.paper_id AND p.user_id = $3
        RETURNING c.id, c.paper_id, c.section_type, c.content, c.position
    `
	var c model.PaperContent
	err := r.db.QueryRow(ctx, query, contentID, paperID, userID, content).Scan(
		&c.ID, &c.PaperID, &c.SectionType, &c.Content, &c.Position,
	)
	if err != nil {
		return nil, mapErr(err, "paper content")
	}
	return &c, nil
}
