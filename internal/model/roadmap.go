package model

type RoadmapStep struct {
	ID                  int64  `json:"id"`
	ProjectID           int64  `json:"project_id"`
	StepName            string `json:"step_name"`
	Description         string `json:"description"`
	CompletionGuideline string `json:"completion_guideline"`
	Status              string `json:"status"`
	Position            int    `json:"position"`
}

// ToggledStatus returns the opposite of a step status.
func ToggledStatus(status string) string {
	if status == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}
