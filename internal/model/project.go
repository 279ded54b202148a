package model

import (
	"strconv"
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type Project struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Status            string    `json:"status"`
	Complexity        int       `json:"complexity"`
	EstimatedDuration string    `json:"estimated_duration"`
	Features          string    `json:"features"`
	Challenges        string    `json:"challenges"`
	ProjectType       string    `json:"project_type"`
	ExperienceLevel   string    `json:"experience_level"`
	Languages         []string  `json:"languages"`
	Device            string    `json:"device"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProjectUpdate carries the editable fields; nil means unchanged.
type ProjectUpdate struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	EstimatedDuration *string `json:"estimated_duration"`
	Features          *string `json:"features"`
	Challenges        *string `json:"challenges"`
}

type ProjectProgress struct {
	DaysSinceCreation int  `json:"days_since_creation"`
	DaysLeft          *int `json:"days_left"`
	Percent           int  `json:"percent"`
}

// EstimatedDays returns the leading integer of EstimatedDuration, or 0.
func (p *Project) EstimatedDays() int {
	fields := strings.Fields(p.EstimatedDuration)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Progress derives the dashboard progress figures as of now.
func (p *Project) Progress(now time.Time) ProjectProgress {
	elapsed := int(now.Sub(p.CreatedAt).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}
	out := ProjectProgress{DaysSinceCreation: elapsed}

	est := p.EstimatedDays()
	if est > 0 {
		left := est - elapsed
		if left < 0 {
			left = 0
		}
		out.DaysLeft = &left
	}

	switch {
	case p.Status == StatusCompleted:
		out.Percent = 100
	case est > 0:
		out.Percent = min(90, elapsed*100/est)
	default:
		out.Percent = 50
	}
	return out
}

// ProjectWithProgress is the listing shape.
type ProjectWithProgress struct {
	Project
	Progress ProjectProgress `json:"progress"`
}
