// Package parser turns completion text into typed records. Parsing never
// fails: fields that do not match the grammar fall back to fixed defaults and
// the fallback is counted in metrics.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"researchhub/internal/model"
	"researchhub/pkg/metrics"
)

const (
	DefaultComplexity  = 5
	DefaultDuration    = "Unknown"
	DefaultStepName    = "Unnamed Step"
	DefaultDescription = "No description provided"
	DefaultGuideline   = "No guideline provided"

	ideaSeparator = " | "
)

const (
	grammarIdea        = "idea"
	grammarRoadmap     = "roadmap"
	grammarElaboration = "elaboration"
)

var leadingInt = regexp.MustCompile(`^\s*([+-]?\d+)`)

// ParseIdea parses "Idea: <text> | Complexity: <n> | Duration: <text>".
func ParseIdea(text string) model.GeneratedIdea {
	parts := strings.Split(text, ideaSeparator)

	idea := model.GeneratedIdea{
		Text:       strings.TrimSpace(strings.Replace(parts[0], "Idea:", "", 1)),
		Complexity: DefaultComplexity,
		Duration:   DefaultDuration,
	}

	var complexity string
	if len(parts) > 1 {
		complexity = strings.TrimSpace(strings.Replace(parts[1], "Complexity:", "", 1))
	}
	if n, ok := parseComplexity(complexity); ok {
		idea.Complexity = n
	} else {
		metrics.IncrementParseFallback(grammarIdea, "complexity")
	}

	if len(parts) > 2 {
		if d := strings.TrimSpace(strings.Replace(parts[2], "Duration:", "", 1)); d != "" {
			idea.Duration = d
		}
	}
	if idea.Duration == DefaultDuration {
		metrics.IncrementParseFallback(grammarIdea, "duration")
	}
	if !strings.Contains(idea.Duration, "days") {
		idea.Duration += " days"
	}
	return idea
}

func parseComplexity(s string) (int, bool) {
	m := leadingInt.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 10 {
		return 0, false
	}
	return n, true
}

var (
	blockSeparator = regexp.MustCompile(`\n[ \t]*\n`)
	stepHeader     = regexp.MustCompile(`^Step\s+([^\s:]+)\s*:?\s*(.*)$`)
)

// stepFields is the field-line grammar of a roadmap block, one regexp per
// labelled line. The first match for a field wins.
var stepFields = []struct {
	name     string
	re       *regexp.Regexp
	fallback string
	assign   func(*model.RoadmapStep, string)
}{
	{
		name:     "description",
		re:       regexp.MustCompile(`(?i)^description\s*:\s*(.*)$`),
		fallback: DefaultDescription,
		assign:   func(s *model.RoadmapStep, v string) { s.Description = v },
	},
	{
		name:     "guideline",
		re:       regexp.MustCompile(`(?i)^(?:completion\s+)?guideline\s*:\s*(.*)$`),
		fallback: DefaultGuideline,
		assign:   func(s *model.RoadmapStep, v string) { s.CompletionGuideline = v },
	},
	{
		name:     "status",
		re:       regexp.MustCompile(`(?i)^status\s*:\s*(.*)$`),
		fallback: model.StatusPending,
		assign:   func(s *model.RoadmapStep, v string) { s.Status = normalizeStatus(v) },
	},
}

// ParseRoadmap splits text into blank-line separated blocks and keeps the
// blocks whose header is "Step <n>: <name>" with n a positive integer.
// Positions are kept as written; duplicates and gaps are not corrected.
func ParseRoadmap(text string) []model.RoadmapStep {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	steps := make([]model.RoadmapStep, 0)

	for _, raw := range blockSeparator.Split(text, -1) {
		block := strings.Split(strings.TrimSpace(raw), "\n")
		header := strings.TrimSpace(block[0])
		if !strings.HasPrefix(header, "Step") {
			continue
		}
		m := stepHeader.FindStringSubmatch(header)
		if m == nil {
			metrics.IncrementParseFallback(grammarRoadmap, "header")
			continue
		}
		pos, err := strconv.Atoi(m[1])
		if err != nil || pos <= 0 {
			metrics.IncrementParseFallback(grammarRoadmap, "position")
			continue
		}

		step := model.RoadmapStep{Position: pos, StepName: strings.TrimSpace(m[2])}
		if step.StepName == "" {
			step.StepName = DefaultStepName
			metrics.IncrementParseFallback(grammarRoadmap, "step_name")
		}

		for _, f := range stepFields {
			value, found := matchField(block[1:], f.re)
			if !found || value == "" {
				value = f.fallback
				metrics.IncrementParseFallback(grammarRoadmap, f.name)
			}
			f.assign(&step, value)
		}
		steps = append(steps, step)
	}
	return steps
}

func matchField(lines []string, re *regexp.Regexp) (string, bool) {
	for _, line := range lines {
		if m := re.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func normalizeStatus(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), model.StatusCompleted) {
		return model.StatusCompleted
	}
	return model.StatusPending
}

var (
	overviewSpan   = regexp.MustCompile(`(?s)Overview:(.*?)Features:`)
	featuresSpan   = regexp.MustCompile(`(?s)Features:(.*?)Challenges:`)
	challengesSpan = regexp.MustCompile(`(?s)Challenges:(.*)$`)
)

// ParseElaboration extracts the Overview, Features and Challenges sections.
// Features and challenges keep only "-" list items, one per line.
func ParseElaboration(text string) model.Elaboration {
	var out model.Elaboration
	if m := overviewSpan.FindStringSubmatch(text); m != nil {
		out.Overview = strings.TrimSpace(m[1])
	}
	if m := featuresSpan.FindStringSubmatch(text); m != nil {
		out.Features = listItems(m[1])
	}
	if m := challengesSpan.FindStringSubmatch(text); m != nil {
		out.Challenges = listItems(m[1])
	}

	if out.Overview == "" {
		metrics.IncrementParseFallback(grammarElaboration, "overview")
	}
	if out.Features == "" {
		metrics.IncrementParseFallback(grammarElaboration, "features")
	}
	if out.Challenges == "" {
		metrics.IncrementParseFallback(grammarElaboration, "challenges")
	}
	return out
}

func listItems(section string) string {
	var items []string
	for _, line := range strings.Split(strings.TrimSpace(section), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		items = append(items, strings.TrimSpace(line[1:]))
	}
	return strings.Join(items, "\n")
}

// ParseDocument returns the completion as the final artifact.
func ParseDocument(text string) string {
	return strings.TrimSpace(text)
}
