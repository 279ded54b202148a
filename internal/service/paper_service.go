package service

import (
	"context"
	"strings"

	"researchhub/internal/completion"
	"researchhub/internal/model"
	"researchhub/internal/parser"
	"researchhub/internal/prompt"
	"researchhub/pkg/apperr"
	"researchhub/pkg/metrics"

	"go.uber.org/zap"
)

type PaperService struct {
	papers   PaperStore
	contents PaperContentStore
	llm      completion.Completer
	logger   *zap.Logger
}

func NewPaperService(papers PaperStore, contents PaperContentStore, llm completion.Completer, logger *zap.Logger) *PaperService {
	return &PaperService{
		papers:   papers,
		contents: contents,
		llm:      llm,
		logger:   logger.Named("paper"),
	}
}

type CreatePaperInput struct {
	PaperType    string `json:"paper_type"`
	Domain       string `json:"domain"`
	CustomDomain string `json:"custom_domain"`
	Topic        string `json:"topic"`
}

func (s *PaperService) Create(ctx context.Context, userID int64, in CreatePaperInput) (*model.ResearchPaper, error) {
	domain := strings.TrimSpace(in.Domain)
	if domain == "" {
		domain = strings.TrimSpace(in.CustomDomain)
	}
	p := &model.ResearchPaper{
		UserID:    userID,
		PaperType: strings.TrimSpace(in.PaperType),
		Domain:    domain,
		Topic:     strings.TrimSpace(in.Topic),
		Status:    model.PaperStatusDraft,
	}
	if p.PaperType == "" || p.Domain == "" || p.Topic == "" {
		return nil, apperr.Validation("paper type, domain and topic are required")
	}
	if err := s.papers.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Paper created", zap.Int64("user_id", userID), zap.Int64("paper_id", p.ID))
	return p, nil
}

func (s *PaperService) List(ctx context.Context, userID int64, limit int) ([]model.ResearchPaper, error) {
	return s.papers.ListByOwner(ctx, userID, limit)
}

func (s *PaperService) Get(ctx context.Context, userID, id int64) (*model.PaperWithContents, error) {
	p, err := s.papers.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	contents, err := s.contents.ListByPaper(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &model.PaperWithContents{ResearchPaper: *p, Contents: contents}, nil
}

func (s *PaperService) Update(ctx context.Context, userID, id int64, u model.PaperUpdate) (*model.ResearchPaper, error) {
	if u.Status != nil && *u.Status != model.PaperStatusDraft && *u.Status != model.PaperStatusPublished {
		return nil, apperr.Validation("status must be %q or %q", model.PaperStatusDraft, model.PaperStatusPublished)
	}
	for _, f := range []*string{u.PaperType, u.Domain, u.Topic} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return nil, apperr.Validation("paper fields cannot be empty")
		}
	}
	return s.papers.Update(ctx, userID, id, u)
}

// Delete removes the paper along with its contents and reminders.
func (s *PaperService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.papers.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("Paper deleted", zap.Int64("user_id", userID), zap.Int64("paper_id", id))
	return nil
}

// GenerateSection drafts one section. The draft is returned for review and
// is not stored until SaveSection.
func (s *PaperService) GenerateSection(ctx context.Context, userID, paperID int64, section model.SectionType) (string, error) {
	if !section.Valid() {
		return "", apperr.Validation("unknown section type %q", section)
	}
	p, err := s.papers.Get(ctx, userID, paperID)
	if err != nil {
		return "", err
	}
	text, err := s.llm.Complete(ctx, completion.PurposeSection, prompt.PaperSection(*p, section))
	if err != nil {
		return "", err
	}
	metrics.IncrementGeneration("section")
	return parser.ParseDocument(text), nil
}

type SaveSectionInput struct {
	ContentID   int64             `json:"content_id"`
	SectionType model.SectionType `json:"section_type"`
	Content     string            `json:"content"`
}

// SaveSection updates an existing content row when ContentID is set, and
// otherwise appends a new row at the end of its section type.
func (s *PaperService) SaveSection(ctx context.Context, userID, paperID int64, in SaveSectionInput) (*model.PaperContent, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("content is required")
	}
	if in.ContentID > 0 {
		return s.contents.UpdateContent(ctx, userID, paperID, in.ContentID, in.Content)
	}
	if !in.SectionType.Valid() {
		return nil, apperr.Validation("unknown section type %q", in.SectionType)
	}

	c := &model.PaperContent{
		PaperID:     paperID,
		SectionType: in.SectionType,
		Content:     in.Content,
	}
	if err := s.contents.Append(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Format rewrites the whole paper in the requested citation style.
func (s *PaperService) Format(ctx context.Context, userID, paperID int64, style string) (string, error) {
	style = strings.TrimSpace(style)
	if style == "" {
		return "", apperr.Validation("format style is required")
	}
	paper, err := s.Get(ctx, userID, paperID)
	if err != nil {
		return "", err
	}
	text, err := s.llm.Complete(ctx, completion.PurposeFormat, prompt.FormatPaper(paper.ResearchPaper, paper.Contents, style))
	if err != nil {
		return "", err
	}
	metrics.IncrementGeneration("format")
	return parser.ParseDocument(text), nil
}
