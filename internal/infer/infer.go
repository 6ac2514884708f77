// Package infer derives a StructuredCV from recovered plain text.
//
// Every field is filled by an ordered list of independent rules over the
// non-blank lines of the text; the first rule that matches wins.
package infer

import (
	"fmt"
	"strings"

	"cv-backend/internal/cv"
	"cv-backend/internal/shared/telemetry"
)

// Inferencer runs the field rules. The zero value is ready to use.
type Inferencer struct{}

// New returns an Inferencer.
func New() *Inferencer { return &Inferencer{} }

// Infer never fails. A panic inside a rule is logged and yields Fallback().
func (in *Inferencer) Infer(text string) (out cv.StructuredCV) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("infer.panic", map[string]any{"panic": fmt.Sprint(r)})
			out = Fallback()
		}
	}()

	lines := splitLines(text)
	out = cv.New()
	out.PersonalInfo = cv.PersonalInfo{
		Name:     firstMatch(lines, nameRules...),
		Email:    firstMatch(lines, emailRule),
		Phone:    firstMatch(lines, phoneRules...),
		Location: firstMatch(lines, locationRules...),
		LinkedIn: firstMatch(lines, linkedInRule),
	}
	out.Education = inferEducation(lines)
	out.Experience = inferExperience(lines)
	out.Skills = cv.Skills{
		Technical: inferTechnicalSkills(lines),
		Soft:      inferSoftSkills(lines),
		Languages: inferSpokenLanguages(lines),
	}
	out.Projects = inferProjects(lines)
	out.Summary = summarize(out)
	return out
}

// Fallback is returned when inference cannot complete. Its markers point the
// reader back to the recovered text.
func Fallback() cv.StructuredCV {
	out := cv.New()
	out.PersonalInfo.Name = "Unable to extract - check original text"
	out.Summary = "Automatic field extraction failed. Please check the original text."
	return out
}

func summarize(s cv.StructuredCV) string {
	edu, exp, skills, projects := s.Counts()
	return fmt.Sprintf("Native extraction found %d education entries, %d experience entries, "+
		"%d skills and %d projects. Results are heuristic; please check the original text for accuracy.",
		edu, exp, skills, projects)
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
