package model

// GeneratedIdea is the transient result of an idea round-trip; it is only
// persisted once accepted as a Project.
type GeneratedIdea struct {
	Text       string `json:"text"`
	Complexity int    `json:"complexity"`
	Duration   string `json:"duration"`
}

type Elaboration struct {
	Overview   string `json:"overview"`
	Features   string `json:"features"`
	Challenges string `json:"challenges"`
}

type ScholarResult struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publication string   `json:"publication"`
	Year        string   `json:"year"`
	Link        string   `json:"link"`
}

// IdeaQuiz is the questionnaire behind one idea round-trip. PreviousIdea and
// RejectionReason are set when the user rejected the last suggestion.
type IdeaQuiz struct {
	ProjectType     string   `json:"project_type" binding:"required"`
	CustomSubfield  string   `json:"custom_subfield"`
	ExperienceLevel string   `json:"experience_level" binding:"required"`
	Languages       []string `json:"languages"`
	CustomLanguage  string   `json:"custom_language"`
	Device          string   `json:"device" binding:"required"`
	PreviousIdea    string   `json:"previous_idea"`
	RejectionReason string   `json:"rejection_reason"`
}
