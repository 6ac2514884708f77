package infer

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-backend/internal/cv"
)

func TestEmptyInputIsWellFormed(t *testing.T) {
	for _, in := range []string{"", "   \n\n\t", "\x00\x01"} {
		out := New().Infer(in)
		data, err := json.Marshal(out)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "null")
		assert.NotEmpty(t, out.Summary)
	}
}

func TestNameRules(t *testing.T) {
	cases := []struct {
		name, text, want string
	}{
		{"first line", "John Smith\nSoftware developer with ten years in fintech", "John Smith"},
		{"label", "Curriculum overview\nFull Name: Bob Stone\nbob@stone.dev", "Bob Stone"},
		{"courtesy and suffix", "Dr. Maria Lopez - Resume\nmaria@lopez.es", "Maria Lopez"},
		{"leading lines skip cv heading", "Curriculum Vitae\nJane Ann Doe\nemail: jane@doe.io", "Jane Ann Doe"},
		{"leading lines skip contact", "email: Sam Hill at sam@hill.com\nanother line\nPeter Parker", "Peter Parker"},
		{"document artifact", "page 1 of 2\nid 44921\nsummary of profile\nDocument Carlos Mendez", "Carlos Mendez"},
		{"section heading is not a name", "Work Experience\nbuilt things", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, New().Infer(tc.text).PersonalInfo.Name)
		})
	}
}

func TestEmailStripsMailto(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", New().Infer("contact: jane.doe@example.com").PersonalInfo.Email)
	assert.Equal(t, "jane.doe@example.com", New().Infer("contact: mailto:jane.doe@example.com").PersonalInfo.Email)
}

func TestPhoneRules(t *testing.T) {
	cases := []struct {
		name, text, want string
	}{
		{"whatsapp link", "chat: https://wa.me/15551234567", "15551234567"},
		{"whatsapp wins over plus", "+44 20 7946 0958\nwa.me/15551234567", "15551234567"},
		{"plus prefix stripped", "Phone: +14155550123", "14155550123"},
		{"long digits", "call 5551234567 anytime", "5551234567"},
		{"label", "Mobile: 555-123-4567", "555-123-4567"},
		{"none", "no numbers here", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, New().Infer(tc.text).PersonalInfo.Phone)
		})
	}
}

func TestLocationAndLinkedIn(t *testing.T) {
	out := New().Infer("John Smith\nLocation: Austin, TX\nhttps://www.linkedin.com/in/john-smith-42")
	assert.Equal(t, "Austin, TX", out.PersonalInfo.Location)
	assert.Equal(t, "https://www.linkedin.com/in/john-smith-42", out.PersonalInfo.LinkedIn)

	out = New().Infer("John Smith\nBerlin, Germany\njohn@smith.de")
	assert.Equal(t, "Berlin, Germany", out.PersonalInfo.Location)
}

func TestLocationFromLabelledCommaLine(t *testing.T) {
	cases := []struct {
		name, text, want string
	}{
		{"address label", "John Smith\nAddress: Lahore, Pakistan", "Lahore, Pakistan"},
		{"street number kept", "John Smith\nAddress: 12 Mall Road, Lahore", "12 Mall Road, Lahore"},
		{"skills label", "John Smith\nSkills: Go, Docker", ""},
		{"job line with years", "John Smith\nSoftware Engineer, 2015 - 2020", ""},
		{"email line", "John Smith\nContact: john@smith.dev, Lahore", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, New().Infer(tc.text).PersonalInfo.Location)
		})
	}
}

func TestEducationPrimaryAndSecondaryPasses(t *testing.T) {
	text := strings.Join([]string{
		"EDUCATION",
		"Stanford University",
		"Master of Science in Computer Science, 2013 - 2015, GPA: 3.85",
		"EXPERIENCE",
		"Software Engineer, 2015 - 2020",
		"Certificates",
		"PhD candidate, Oxford, 2022",
	}, "\n")
	edu := New().Infer(text).Education

	require.Len(t, edu, 2)
	assert.Equal(t, cv.Education{
		Degree:      "Master of Science in Computer Science",
		Institution: "Stanford University",
		Year:        "2015",
		GPA:         "3.85",
	}, edu[0])
	assert.Equal(t, "PhD", edu[1].Degree)
	assert.Equal(t, "Oxford", edu[1].Institution)
	assert.Equal(t, "2022", edu[1].Year)
}

func TestSectionKeywordsMatchInsideWords(t *testing.T) {
	edu := New().Infer("John Smith\nBachelors in Computer Science, 2019").Education
	require.Len(t, edu, 1)
	assert.Equal(t, "Bachelors in Computer Science", edu[0].Degree)
	assert.Equal(t, "2019", edu[0].Year)

	edu = New().Infer("John Smith\nEducational Background\nBSc Computer Science\nNUST, 2018").Education
	require.Len(t, edu, 1)
	assert.Equal(t, "BSc", edu[0].Degree)
	assert.Equal(t, "2018", edu[0].Year)
	assert.Equal(t, "NUST", edu[0].Institution)

	exp := New().Infer("John Smith\nWorked as a developer at Acme").Experience
	require.Len(t, exp, 1)
	assert.Equal(t, []string{"Worked as a developer at Acme"}, exp[0].Responsibilities)
}

func TestExperienceBlock(t *testing.T) {
	text := strings.Join([]string{
		"Work Experience",
		"Backend Engineer, Acme Corp, 2018 - Present",
		"Built payment APIs",
		"Led migration to Kubernetes",
		"Skills: Docker, Kubernetes",
	}, "\n")
	exp := New().Infer(text).Experience

	require.Len(t, exp, 1)
	assert.Equal(t, "Position extracted from CV", exp[0].Title)
	assert.Equal(t, "Company extracted from CV", exp[0].Company)
	assert.Equal(t, "2018 - Present", exp[0].Duration)
	assert.Equal(t, []string{"Backend Engineer, Acme Corp, 2018 - Present Built payment APIs Led migration to Kubernetes"}, exp[0].Responsibilities)
}

func TestSkillsAreFilteredAndCapped(t *testing.T) {
	tokens := make([]string, 30)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("Skill%02d", i)
	}
	text := "Skills: Go; " + strings.Join(tokens, ", ") + "\n" + strings.Repeat("x", 60)
	tech := New().Infer(text).Skills.Technical

	assert.Len(t, tech, cv.MaxTechnicalSkills)
	assert.Equal(t, "Skill00", tech[0])
	assert.NotContains(t, tech, "Go")
}

func TestSoftSkillsAndSpokenLanguages(t *testing.T) {
	text := "Strong communication and leadership, enjoys teamwork\nLanguages\nEnglish (native), Spanish (fluent)\nProjects: none"
	skills := New().Infer(text).Skills

	assert.Equal(t, []string{"Communication", "Leadership", "Teamwork"}, skills.Soft)
	assert.Equal(t, []string{"English", "Spanish"}, skills.Languages)
}

func TestProjectBlock(t *testing.T) {
	text := "Projects\nInventory tracker built with Go and Postgres\nChat app using websockets"
	projects := New().Infer(text).Projects

	require.Len(t, projects, 1)
	assert.Equal(t, "Project extracted from CV", projects[0].Name)
	assert.Equal(t, "Inventory tracker built with Go and Postgres Chat app using websockets", projects[0].Description)
	assert.NotNil(t, projects[0].Technologies)
}

func TestAliceWongScenario(t *testing.T) {
	text := "Name: Alice Wong\nEmail: alice@site.com\nPhone: +14155550123\nEducation: Bachelor of Science, MIT, 2020"
	out := New().Infer(text)

	assert.Equal(t, "Alice Wong", out.PersonalInfo.Name)
	assert.Equal(t, "alice@site.com", out.PersonalInfo.Email)
	assert.Equal(t, "14155550123", out.PersonalInfo.Phone)
	require.Len(t, out.Education, 1)
	assert.Contains(t, strings.ToLower(out.Education[0].Degree), "bachelor")
	assert.Equal(t, "2020", out.Education[0].Year)
	assert.Equal(t, "MIT", out.Education[0].Institution)
	assert.Contains(t, out.Summary, "1 education entries")
}

func TestFallbackIsWellFormed(t *testing.T) {
	out := Fallback()
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
	assert.Contains(t, out.PersonalInfo.Name, "check original text")
	assert.Contains(t, out.Summary, "check the original text")
}

func TestFirstMatchStopsAtFirstRule(t *testing.T) {
	calls := 0
	hit := func([]string) (string, bool) { calls++; return "a", true }
	miss := func([]string) (string, bool) { calls++; return "", false }

	assert.Equal(t, "a", firstMatch(nil, miss, hit, hit))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "", firstMatch(nil, miss))
}
