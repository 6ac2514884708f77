package infer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"cv-backend/internal/cv"
)

const (
	educationBlockLines  = 7
	experienceBlockLines = 7
	skillsBlockLines     = 5
	projectBlockLines    = 5

	minSkillLen = 3
	maxSkillLen = 50

	placeholderTitle   = "Position extracted from CV"
	placeholderCompany = "Company extracted from CV"
	placeholderProject = "Project extracted from CV"
)

var (
	// Triggers match anywhere in a line.
	educationTriggerRe  = regexp.MustCompile(`(?i)(?:education|degree|universit|college|bachelor|master|ph\.?d)`)
	experienceTriggerRe = regexp.MustCompile(`(?i)(?:experience|work|job|employment)`)
	skillsTriggerRe     = regexp.MustCompile(`(?i)(?:skills|programming|languages|technologies)`)
	projectTriggerRe    = regexp.MustCompile(`(?i)(?:project|portfolio)`)

	educationStopRe  = regexp.MustCompile(`(?i)\b(?:experience|skills)\b`)
	experienceStopRe = regexp.MustCompile(`(?i)\b(?:education|skills)\b`)
	skillsStopRe     = regexp.MustCompile(`(?i)\b(?:education|experience|projects?)\b`)
	projectStopRe    = regexp.MustCompile(`(?i)\b(?:education|experience|skills)\b`)

	degreeRe      = regexp.MustCompile(`(?i:bachelor|master)(?:'?s)?(?:\s+(?:of|in)\s+[A-Z][A-Za-z]*(?:\s+(?:(?:of|and|in)\s+)?[A-Z][A-Za-z]*)*)?`)
	shortDegreeRe = regexp.MustCompile(`(?i)\b(?:ph\.?\s?d|doctorate|mba|bsc|msc|beng|meng|diploma)\b`)
	yearRe        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	gpaLabelRe    = regexp.MustCompile(`(?i)\b(?:c?gpa|grade)\s*[:\-]?\s*(\d\.\d{1,2})`)
	gpaRatioRe    = regexp.MustCompile(`\b([0-4]\.\d{1,2})\s*/\s*4(?:\.0+)?\b`)
	institutionRe = regexp.MustCompile(`(?i)\b(?:universit(?:y|ies)|college|institute|school|academy|polytechnic)\b`)
	durationRe    = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*(?:-|–|to)\s*((?:19|20)\d{2}|present|current|now)\b`)
	listSplitRe   = regexp.MustCompile(`[,;]`)
)

var softSkillVocabulary = []string{
	"Communication", "Leadership", "Teamwork", "Problem Solving", "Time Management",
	"Adaptability", "Creativity", "Critical Thinking", "Collaboration", "Attention to Detail",
}

var spokenLanguageVocabulary = []string{
	"English", "Spanish", "French", "German", "Mandarin", "Chinese", "Arabic", "Hindi",
	"Portuguese", "Italian", "Japanese", "Korean", "Russian", "Dutch", "Indonesian", "Turkish",
	"Urdu", "Bengali", "Swahili", "Persian",
}

var spokenLanguageContextRe = regexp.MustCompile(`(?i)\b(?:languages?|fluent|native|bilingual)\b`)

var spokenLanguagePatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(spokenLanguageVocabulary))
	for i, lang := range spokenLanguageVocabulary {
		out[i] = regexp.MustCompile(`\b` + lang + `\b`)
	}
	return out
}()

// block returns the lines following start, up to limit, ending before the
// first line that matches stop.
func block(lines []string, start, limit int, stop *regexp.Regexp) []string {
	end := start + 1
	for end < len(lines) && end-start <= limit {
		if stop != nil && stop.MatchString(lines[end]) {
			break
		}
		end++
	}
	return lines[start+1 : end]
}

// labelRemainder is the content of a trigger line after its heading.
func labelRemainder(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	if len(strings.Fields(line)) <= 3 {
		return ""
	}
	return line
}

func firstTrigger(lines []string, trigger *regexp.Regexp) int {
	for i, l := range lines {
		if trigger.MatchString(l) {
			return i
		}
	}
	return -1
}

func inferEducation(lines []string) []cv.Education {
	out := []cv.Education{}
	consumed := make(map[int]bool)

	if start := firstTrigger(lines, educationTriggerRe); start >= 0 {
		following := block(lines, start, educationBlockLines, educationStopRe)
		for i := start; i <= start+len(following); i++ {
			consumed[i] = true
		}
		blob := append([]string{lines[start]}, following...)
		entry := cv.Education{
			Degree:      findDegree(strings.Join(blob, "\n")),
			Year:        findYear(blob),
			GPA:         findGPA(strings.Join(blob, "\n")),
			Institution: findInstitution(lines[start], following),
		}
		out = append(out, entry)
	}

	// Single-line entries outside the primary block.
	for i, l := range lines {
		if consumed[i] || !educationTriggerRe.MatchString(l) {
			continue
		}
		entry := cv.Education{
			Degree:      findDegree(l),
			Year:        findYear([]string{l}),
			GPA:         findGPA(l),
			Institution: findInstitution(l, nil),
		}
		if entry.Degree == "" && entry.Institution == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func findDegree(s string) string {
	if m := degreeRe.FindString(s); m != "" {
		return strings.TrimSpace(m)
	}
	return shortDegreeRe.FindString(s)
}

// findYear takes the last year on the first line that has one, so a range
// such as "2016 - 2020" resolves to the completion year.
func findYear(blob []string) string {
	for _, l := range blob {
		if years := yearRe.FindAllString(l, -1); len(years) > 0 {
			return years[len(years)-1]
		}
	}
	return ""
}

func findGPA(s string) string {
	if m := gpaLabelRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := gpaRatioRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// findInstitution prefers a following line naming a school, then the first
// following line that is not the degree itself, then a comma segment of the
// trigger line.
func findInstitution(trigger string, following []string) string {
	for _, l := range following {
		if institutionRe.MatchString(l) {
			return firstSegment(l)
		}
	}
	for _, l := range following {
		if findDegree(l) == "" && !yearOnly(l) {
			return firstSegment(l)
		}
	}
	for _, seg := range strings.Split(labelRemainder(trigger), ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" || findDegree(seg) != "" || yearOnly(seg) || findGPA(seg) != "" {
			continue
		}
		return seg
	}
	return ""
}

func firstSegment(l string) string {
	return strings.TrimSpace(strings.Split(l, ",")[0])
}

func yearOnly(s string) bool {
	return strings.TrimSpace(yearRe.ReplaceAllString(durationRe.ReplaceAllString(s, ""), "")) == ""
}

func inferExperience(lines []string) []cv.Experience {
	start := firstTrigger(lines, experienceTriggerRe)
	if start < 0 {
		return []cv.Experience{}
	}
	parts := []string{}
	if rest := labelRemainder(lines[start]); rest != "" {
		parts = append(parts, rest)
	}
	parts = append(parts, block(lines, start, experienceBlockLines, experienceStopRe)...)
	if len(parts) == 0 {
		return []cv.Experience{}
	}
	joined := strings.Join(parts, " ")
	return []cv.Experience{{
		Title:            placeholderTitle,
		Company:          placeholderCompany,
		Duration:         findDuration(joined),
		Responsibilities: []string{joined},
	}}
}

func findDuration(s string) string {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	end := m[2]
	if !yearRe.MatchString(end) {
		end = "Present"
	}
	return m[1] + " - " + end
}

func inferTechnicalSkills(lines []string) []string {
	out := []string{}
	start := firstTrigger(lines, skillsTriggerRe)
	if start < 0 {
		return out
	}
	source := []string{labelRemainder(lines[start])}
	source = append(source, block(lines, start, skillsBlockLines, skillsStopRe)...)
	for _, l := range source {
		for _, tok := range listSplitRe.Split(l, -1) {
			tok = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tok), "-•*·"))
			if n := utf8.RuneCountInString(tok); n < minSkillLen || n > maxSkillLen {
				continue
			}
			out = append(out, tok)
			if len(out) == cv.MaxTechnicalSkills {
				return out
			}
		}
	}
	return out
}

func inferSoftSkills(lines []string) []string {
	text := strings.ToLower(strings.Join(lines, "\n"))
	out := []string{}
	for _, skill := range softSkillVocabulary {
		if strings.Contains(text, strings.ToLower(skill)) {
			out = append(out, skill)
		}
	}
	return out
}

// inferSpokenLanguages looks only at lines that talk about languages, and the
// few lines under a bare "Languages" heading.
func inferSpokenLanguages(lines []string) []string {
	var scope []string
	for i, l := range lines {
		if !spokenLanguageContextRe.MatchString(l) {
			continue
		}
		scope = append(scope, l)
		if labelRemainder(l) == "" {
			scope = append(scope, block(lines, i, 3, skillsStopRe)...)
		}
	}
	out := []string{}
	seen := make(map[string]bool)
	for _, l := range scope {
		for i, lang := range spokenLanguageVocabulary {
			if !seen[lang] && spokenLanguagePatterns[i].MatchString(l) {
				seen[lang] = true
				out = append(out, lang)
			}
		}
	}
	return out
}

func inferProjects(lines []string) []cv.Project {
	start := firstTrigger(lines, projectTriggerRe)
	if start < 0 {
		return []cv.Project{}
	}
	parts := []string{}
	if rest := labelRemainder(lines[start]); rest != "" {
		parts = append(parts, rest)
	}
	parts = append(parts, block(lines, start, projectBlockLines, projectStopRe)...)
	if len(parts) == 0 {
		return []cv.Project{}
	}
	return []cv.Project{{
		Name:         placeholderProject,
		Description:  strings.Join(parts, " "),
		Technologies: []string{},
	}}
}
