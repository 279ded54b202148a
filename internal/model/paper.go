package model

import "time"

const (
	PaperStatusDraft     = "draft"
	PaperStatusPublished = "published"
)

type ResearchPaper struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PaperType string    `json:"paper_type"`
	Domain    string    `json:"domain"`
	Topic     string    `json:"topic"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PaperUpdate struct {
	PaperType *string `json:"paper_type"`
	Domain    *string `json:"domain"`
	Topic     *string `json:"topic"`
	Status    *string `json:"status"`
}

type SectionType string

const (
	SectionAbstract     SectionType = "abstract"
	SectionIntroduction SectionType = "introduction"
	SectionHeading      SectionType = "section_heading"
	SectionContent      SectionType = "section_content"
	SectionConclusion   SectionType = "conclusion"
	SectionReferences   SectionType = "references"
)

var SectionTypes = []SectionType{
	SectionAbstract,
	SectionIntroduction,
	SectionHeading,
	SectionContent,
	SectionConclusion,
	SectionReferences,
}

func (s SectionType) Valid() bool {
	for _, t := range SectionTypes {
		if s == t {
			return true
		}
	}
	return false
}

type PaperContent struct {
	ID          int64       `json:"id"`
	PaperID     int64       `json:"paper_id"`
	SectionType SectionType `json:"section_type"`
	Content     string      `json:"content"`
	Position    int         `json:"position"`
}

// PaperWithContents is the detail view of a paper.
type PaperWithContents struct {
	ResearchPaper
	Contents []PaperContent `json:"contents"`
}
