package infer

import (
	"regexp"
	"strings"
)

// rule inspects the lines of a CV and reports a field value when it applies.
type rule func(lines []string) (string, bool)

// firstMatch returns the value of the first rule that applies, or "".
func firstMatch(lines []string, rules ...rule) string {
	for _, r := range rules {
		if v, ok := r(lines); ok {
			return v
		}
	}
	return ""
}

const titleWord = `[A-Z][a-z]+(?:[-'][A-Z]?[a-z]+)*`

var (
	nameLabelRe     = regexp.MustCompile(`(?i)\bname\s*:\s*(.+)$`)
	fullNameRe      = regexp.MustCompile(`^` + titleWord + `(?:\s+` + titleWord + `){1,3}$`)
	embeddedNameRe  = regexp.MustCompile(`\b` + titleWord + `(?:\s+` + titleWord + `){1,3}\b`)
	documentNameRe  = regexp.MustCompile(`\bDocument\s+(` + titleWord + `(?:\s+` + titleWord + `){1,3})\b`)
	courtesyRe      = regexp.MustCompile(`^(?i:mr|mrs|ms|miss|dr|prof)\.?\s+`)
	cvSuffixRe      = regexp.MustCompile(`(?i)\s*[-|,:]?\s*\b(?:cv|resume|résumé|curriculum vitae)$`)
	contactWordRe   = regexp.MustCompile(`(?i)email|phone|address`)
	sectionWordRe   = regexp.MustCompile(`(?i)\b(?:experience|education|skills|projects?|summary|profile|objective|contact|references|languages|employment|curriculum)\b`)
	emailRe         = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	whatsAppRe      = regexp.MustCompile(`wa\.me/\+?(\d{6,15})`)
	longDigitsRe    = regexp.MustCompile(`\d{10,}`)
	phoneShapeRe    = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
	phoneLabelRe    = regexp.MustCompile(`(?i)\b(?:phone|mobile|tel|cell)\b[^\d+]*(\+?\d[\d\s\-().]{5,}\d)`)
	locationLabelRe = regexp.MustCompile(`(?i)\blocation\b\s*[:\-]?\s*(.*)$`)
	fieldLabelRe    = regexp.MustCompile(`^([A-Za-z][A-Za-z ]{0,24}):\s*`)
	notPlaceLabelRe = regexp.MustCompile(`(?i)\b(?:name|e-?mail|phone|mobile|tel|cell|gpa|grade|website|linkedin|github)\b`)
	linkedInRe      = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9\-_%]+/?`)
)

const maxLocationLen = 60

var nameRules = []rule{nameFromLabel, nameFromFirstLine, nameFromLeadingLines, nameFromDocumentArtifact}

var phoneRules = []rule{phoneFromWhatsApp, phoneFromShape, phoneFromLabel}

var locationRules = []rule{locationFromLabel, locationFromCommaLine}

func nameFromLabel(lines []string) (string, bool) {
	for _, l := range lines {
		if !strings.Contains(strings.ToLower(l), "name:") {
			continue
		}
		if m := nameLabelRe.FindStringSubmatch(l); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func stripNameDecorations(l string) string {
	l = courtesyRe.ReplaceAllString(strings.TrimSpace(l), "")
	return strings.TrimSpace(cvSuffixRe.ReplaceAllString(l, ""))
}

func nameFromFirstLine(lines []string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	candidate := stripNameDecorations(lines[0])
	if fullNameRe.MatchString(candidate) && !sectionWordRe.MatchString(candidate) {
		return candidate, true
	}
	return "", false
}

func nameFromLeadingLines(lines []string) (string, bool) {
	for i := 0; i < len(lines) && i < 3; i++ {
		if contactWordRe.MatchString(lines[i]) {
			continue
		}
		candidate := stripNameDecorations(lines[i])
		if m := embeddedNameRe.FindString(candidate); m != "" && !sectionWordRe.MatchString(m) {
			return m, true
		}
	}
	return "", false
}

// nameFromDocumentArtifact handles PDF recoveries where the title metadata
// ("Document Jane Doe") is the only trace of the name.
func nameFromDocumentArtifact(lines []string) (string, bool) {
	for _, l := range lines {
		if m := documentNameRe.FindStringSubmatch(l); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func emailRule(lines []string) (string, bool) {
	for _, l := range lines {
		if !strings.Contains(l, "@") {
			continue
		}
		l = strings.ReplaceAll(l, "mailto:", "")
		if m := emailRe.FindString(l); m != "" {
			return m, true
		}
	}
	return "", false
}

func phoneFromWhatsApp(lines []string) (string, bool) {
	for _, l := range lines {
		if m := whatsAppRe.FindStringSubmatch(l); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func phoneFromShape(lines []string) (string, bool) {
	for _, l := range lines {
		if !strings.Contains(l, "+") && !longDigitsRe.MatchString(l) {
			continue
		}
		if m := phoneShapeRe.FindString(l); m != "" {
			return cleanPhone(m), true
		}
	}
	return "", false
}

func phoneFromLabel(lines []string) (string, bool) {
	for _, l := range lines {
		if m := phoneLabelRe.FindStringSubmatch(l); m != nil {
			return cleanPhone(m[1]), true
		}
	}
	return "", false
}

// cleanPhone stores numbers without the international "+" marker.
func cleanPhone(p string) string {
	return strings.TrimPrefix(strings.TrimSpace(p), "+")
}

func locationFromLabel(lines []string) (string, bool) {
	for _, l := range lines {
		if !strings.Contains(l, "Location") {
			continue
		}
		if m := locationLabelRe.FindStringSubmatch(l); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// locationFromCommaLine takes the first short line holding a comma. A leading
// "Address:" style label is dropped; section and contact labels disqualify
// the line.
func locationFromCommaLine(lines []string) (string, bool) {
	for _, l := range lines {
		if m := fieldLabelRe.FindStringSubmatch(l); m != nil {
			if sectionWordRe.MatchString(m[1]) || notPlaceLabelRe.MatchString(m[1]) {
				continue
			}
			l = strings.TrimSpace(l[len(m[0]):])
		}
		if l == "" || len(l) > maxLocationLen || !strings.Contains(l, ",") {
			continue
		}
		if strings.Contains(l, "@") || strings.Contains(strings.ToLower(l), "http") {
			continue
		}
		if yearRe.MatchString(l) || phoneShapeRe.MatchString(l) || sectionWordRe.MatchString(l) {
			continue
		}
		return l, true
	}
	return "", false
}

func linkedInRule(lines []string) (string, bool) {
	for _, l := range lines {
		if m := linkedInRe.FindString(l); m != "" {
			return m, true
		}
	}
	return "", false
}
