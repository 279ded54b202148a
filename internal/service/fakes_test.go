package service

import (
	"context"
	"io"
	"sync"
	"time"

	"researchhub/internal/completion"
	"researchhub/internal/mail"
	"researchhub/internal/model"
	"researchhub/pkg/apperr"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   []completion.Purpose
	prompts []string
	block   chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, purpose completion.Purpose, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, purpose)
	f.prompts = append(f.prompts, prompt)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[int64]bool
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[int64]bool{}} }

func (l *fakeLocker) Acquire(_ context.Context, _ string, id int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[id] {
		return "", nil
	}
	l.held[id] = true
	return "token", nil
}

func (l *fakeLocker) Release(_ context.Context, _ string, id int64, _ string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}

type fakeProjects struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Project
}

func newFakeProjects() *fakeProjects { return &fakeProjects{rows: map[int64]model.Project{}} }

func (f *fakeProjects) Create(_ context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeProjects) ListByOwner(_ context.Context, userID int64, _ int) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Project
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.rows[id]; ok && p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Get(_ context.Context, userID, id int64) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.UserID != userID {
		return nil, apperr.NotFound("project")
	}
	return &p, nil
}

func (f *fakeProjects) Update(ctx context.Context, userID, id int64, u model.ProjectUpdate) (*model.Project, error) {
	p, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	f.mu.Lock()
	f.rows[id] = *p
	f.mu.Unlock()
	return p, nil
}

func (f *fakeProjects) MarkCompleted(ctx context.Context, userID, id int64) (*model.Project, error) {
	p, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p.Status = model.StatusCompleted
	f.mu.Lock()
	f.rows[id] = *p
	f.mu.Unlock()
	return p, nil
}

func (f *fakeProjects) Delete(ctx context.Context, userID, id int64) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.rows, id)
	f.mu.Unlock()
	return nil
}

type fakeSteps struct {
	mu       sync.Mutex
	byProj   map[int64][]model.RoadmapStep
	replaces int
}

func newFakeSteps() *fakeSteps { return &fakeSteps{byProj: map[int64][]model.RoadmapStep{}} }

func (f *fakeSteps) ReplaceForProject(_ context.Context, _, projectID int64, steps []model.RoadmapStep) ([]model.RoadmapStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces++
	out := make([]model.RoadmapStep, len(steps))
	for i, s := range steps {
		s.ID = int64(i + 1)
		s.ProjectID = projectID
		out[i] = s
	}
	f.byProj[projectID] = out
	return out, nil
}

func (f *fakeSteps) ListByProject(_ context.Context, _, projectID int64) ([]model.RoadmapStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.RoadmapStep{}, f.byProj[projectID]...), nil
}

func (f *fakeSteps) ToggleStatus(_ context.Context, _, projectID, stepID int64) (*model.RoadmapStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.byProj[projectID] {
		s := &f.byProj[projectID][i]
		if s.ID == stepID {
			s.Status = model.ToggledStatus(s.Status)
			out := *s
			return &out, nil
		}
	}
	return nil, apperr.NotFound("roadmap step")
}

type fakePapers struct {
	rows map[int64]model.ResearchPaper
}

func (f *fakePapers) Create(_ context.Context, p *model.ResearchPaper) error {
	if f.rows == nil {
		f.rows = map[int64]model.ResearchPaper{}
	}
	p.ID = int64(len(f.rows) + 1)
	f.rows[p.ID] = *p
	return nil
}

func (f *fakePapers) ListByOwner(_ context.Context, userID int64, _ int) ([]model.ResearchPaper, error) {
	var out []model.ResearchPaper
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePapers) Get(_ context.Context, userID, id int64) (*model.ResearchPaper, error) {
	p, ok := f.rows[id]
	if !ok || p.UserID != userID {
		return nil, apperr.NotFound("paper")
	}
	return &p, nil
}

func (f *fakePapers) Update(ctx context.Context, userID, id int64, u model.PaperUpdate) (*model.ResearchPaper, error) {
	p, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	f.rows[id] = *p
	return p, nil
}

func (f *fakePapers) Delete(ctx context.Context, userID, id int64) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

type fakeContents struct {
	rows    []model.PaperContent
	updated map[int64]string
}

func (f *fakeContents) ListByPaper(_ context.Context, _, paperID int64) ([]model.PaperContent, error) {
	var out []model.PaperContent
	for _, c := range f.rows {
		if c.PaperID == paperID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContents) Append(_ context.Context, _ int64, c *model.PaperContent) error {
	pos := 1
	for _, r := range f.rows {
		if r.PaperID == c.PaperID && r.SectionType == c.SectionType {
			pos++
		}
	}
	c.ID = int64(len(f.rows) + 1)
	c.Position = pos
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeContents) UpdateContent(_ context.Context, _, paperID, contentID int64, content string) (*model.PaperContent, error) {
	for i := range f.rows {
		if f.rows[i].ID == contentID && f.rows[i].PaperID == paperID {
			f.rows[i].Content = content
			out := f.rows[i]
			return &out, nil
		}
	}
	return nil, apperr.NotFound("paper content")
}

type fakeReminders struct {
	created []model.Reminder
}

func (f *fakeReminders) Create(_ context.Context, r *model.Reminder) error {
	r.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *r)
	return nil
}

func (f *fakeReminders) ListByParent(_ context.Context, userID int64, projectID, paperID *int64) ([]model.Reminder, error) {
	var out []model.Reminder
	for _, r := range f.created {
		if r.UserID != userID {
			continue
		}
		if projectID != nil && (r.ProjectID == nil || *r.ProjectID != *projectID) {
			continue
		}
		if paperID != nil && (r.PaperID == nil || *r.PaperID != *paperID) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReminders) Delete(_ context.Context, _, id int64) error {
	for i, r := range f.created {
		if r.ID == id {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("reminder")
}

type fakeUsers struct {
	byEmail map[string]model.User
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	if f.byEmail == nil {
		f.byEmail = map[string]model.User{}
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return apperr.Conflict("user already exists")
	}
	u.ID = int64(len(f.byEmail) + 1)
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return &u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

type fakeRevoker struct {
	revoked map[string]time.Time
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[jti] = until
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeScholar struct {
	query string
}

func (f *fakeScholar) Search(_ context.Context, q string) ([]model.ScholarResult, error) {
	f.query = q
	return []model.ScholarResult{{Title: "A paper", Year: "2021"}}, nil
}

type fakeMailer struct {
	sent []mail.Message
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeStore struct {
	keys map[string]string
}

func (f *fakeStore) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if f.keys == nil {
		f.keys = map[string]string{}
	}
	if _, ok := f.keys[key]; ok {
		return "", apperr.Conflict("file already exists")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.keys[key] = string(b)
	return "mem://" + key, nil
}
