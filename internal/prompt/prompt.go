// Package prompt renders the instructions sent to the completion service.
// Each builder states the output grammar the parser package expects; short
// user-supplied fields are flattened by Sanitize so they cannot introduce
// grammar lines of their own.
package prompt

import (
	"fmt"
	"strings"

	"researchhub/internal/model"
)

// Sanitize collapses line breaks and whitespace runs into single spaces.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

const fence = `"""`

// block quotes a multi-line body between fences. Fence sequences inside the
// body are neutralised so the body cannot close the quote early.
func block(body string) string {
	body = strings.ReplaceAll(body, fence, `"" "`)
	return fence + "\n" + strings.TrimSpace(body) + "\n" + fence
}

func lines(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func Idea(q model.IdeaQuiz) string {
	projectType := Sanitize(q.ProjectType)
	if sub := Sanitize(q.CustomSubfield); sub != "" {
		projectType += " (" + sub + ")"
	}

	langs := make([]string, 0, len(q.Languages)+1)
	for _, l := range q.Languages {
		if l = Sanitize(l); l != "" {
			langs = append(langs, l)
		}
	}
	if custom := Sanitize(q.CustomLanguage); custom != "" {
		langs = append(langs, custom)
	}

	var feedback string
	if prev, reason := Sanitize(q.PreviousIdea), Sanitize(q.RejectionReason); prev != "" && reason != "" {
		feedback = fmt.Sprintf("The user rejected the previous idea %q because %q. "+
			"Do not suggest anything resembling it, and adjust for the reason given "+
			"(for example a more complex idea if it was too simple, a shorter one if it was too long).", prev, reason)
	}

	return lines(
		"Generate exactly 1 project idea based on the following user inputs:",
		"- Project Type: "+projectType,
		"- Experience Level: "+Sanitize(q.ExperienceLevel),
		"- Languages: "+strings.Join(langs, ", "),
		"- Device: "+Sanitize(q.Device),
		feedback,
		"Provide:",
		"- A concise sentence describing a unique project matching the inputs.",
		"- Complexity: a whole number from 1 to 10 reflecting the difficulty.",
		"- Duration: an estimate in days (for example \"5 days\").",
		`Answer with a single line, strictly: "Idea: <description> | Complexity: <n> | Duration: <n> days".`,
	)
}

func Elaboration(ideaText string) string {
	return lines(
		fmt.Sprintf("Given the project idea %q, write:", Sanitize(ideaText)),
		"- Overview: one paragraph of 150-200 words describing the project.",
		"- Features: 3-5 key features, one per line, each starting with \"-\".",
		"- Challenges: 2-4 potential challenges, one per line, each starting with \"-\".",
		"Format strictly as:",
		"Overview: <paragraph>",
		"Features:",
		"- <feature>",
		"Challenges:",
		"- <challenge>",
	)
}

func Roadmap(p model.Project) string {
	return lines(
		fmt.Sprintf("Create a step-by-step roadmap for the project %q.", Sanitize(p.Name)),
		"Project description: "+Sanitize(p.Description),
		"Key features: "+Sanitize(p.Features),
		"Known challenges: "+Sanitize(p.Challenges),
		fmt.Sprintf("Complexity: %d/10. Estimated duration: %s.", p.Complexity, Sanitize(p.EstimatedDuration)),
		"Developer experience level: "+Sanitize(p.ExperienceLevel),
		"Languages: "+Sanitize(strings.Join(p.Languages, ", ")),
		"Produce between 4 and 8 steps in the order they should be done.",
		"Separate steps with one blank line. Format every step strictly as:",
		"Step <n>: <short step name>",
		"Description: <one or two sentences>",
		"Guideline: <how to know the step is complete>",
		"Status: pending",
	)
}

var sectionTargets = map[model.SectionType]string{
	model.SectionAbstract:     "150-200 word abstract",
	model.SectionIntroduction: "300-400 word introduction",
	model.SectionHeading:      "short heading (5-10 words)",
	model.SectionContent:      "200-300 word section content",
	model.SectionConclusion:   "150-200 word conclusion",
	model.SectionReferences:   "100-150 word references list",
}

func PaperSection(p model.ResearchPaper, section model.SectionType) string {
	target, ok := sectionTargets[section]
	if !ok {
		target = sectionTargets[model.SectionContent]
	}
	return lines(
		fmt.Sprintf("Generate content for a research paper section of type %q on the topic %q.", section, Sanitize(p.Topic)),
		"- Paper Type: "+Sanitize(p.PaperType),
		"- Domain: "+Sanitize(p.Domain),
		"- Status: "+p.Status,
		fmt.Sprintf("Provide a concise and professional %s.", target),
		"Answer in plain text only.",
	)
}

var sectionLabels = []struct {
	section model.SectionType
	label   string
	empty   string
}{
	{model.SectionAbstract, "Abstract", "No abstract"},
	{model.SectionIntroduction, "Introduction", "No introduction"},
	{model.SectionHeading, "Section Headings", "No sections"},
	{model.SectionContent, "Section Contents", "No section content"},
	{model.SectionConclusion, "Conclusion", "No conclusion"},
	{model.SectionReferences, "References", "No references"},
}

// FormatPaper asks for the whole paper in the given citation style. Contents
// are grouped by section type in position order.
func FormatPaper(p model.ResearchPaper, contents []model.PaperContent, style string) string {
	grouped := make(map[model.SectionType][]string)
	for _, c := range contents {
		if text := strings.TrimSpace(c.Content); text != "" {
			grouped[c.SectionType] = append(grouped[c.SectionType], text)
		}
	}

	parts := []string{
		fmt.Sprintf("Generate a formatted research paper on the topic %q.", Sanitize(p.Topic)),
		"- Paper Type: " + Sanitize(p.PaperType),
		"- Domain: " + Sanitize(p.Domain),
		"- Status: " + p.Status,
	}
	for _, s := range sectionLabels {
		body := s.empty
		if texts := grouped[s.section]; len(texts) > 0 {
			body = block(strings.Join(texts, "\n"))
		}
		parts = append(parts, "- "+s.label+": "+body)
	}
	parts = append(parts,
		fmt.Sprintf("Format the paper in %s style. Return the full formatted document as plain text, "+
			"including all sections, headings and citations in that style.", Sanitize(style)),
	)
	return lines(parts...)
}

func ConvertDocument(text, format string) string {
	return lines(
		fmt.Sprintf("Convert the following research paper content into %s format:", Sanitize(format)),
		block(text),
	)
}

func PlagiarismCheck(text string) string {
	return lines(
		"Check whether the following text appears to be original or potentially plagiarized:",
		block(text),
		"Give a short verdict followed by a brief explanation.",
	)
}
