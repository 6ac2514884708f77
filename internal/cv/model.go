package cv

// MaxTechnicalSkills caps the technical skill list of a StructuredCV.
const MaxTechnicalSkills = 15

// PersonalInfo holds the contact details found in a CV.
type PersonalInfo struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	LinkedIn string `json:"linkedin" yaml:"linkedin"`
}

// Education is a single education entry in discovery order.
type Education struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Year        string `json:"year" yaml:"year"`
	GPA         string `json:"gpa" yaml:"gpa"`
}

// Experience is a single work experience entry.
type Experience struct {
	Title            string   `json:"title" yaml:"title"`
	Company          string   `json:"company" yaml:"company"`
	Duration         string   `json:"duration" yaml:"duration"`
	Responsibilities []string `json:"responsibilities" yaml:"responsibilities"`
}

// Skills groups flat skill lists.
type Skills struct {
	Technical []string `json:"technical" yaml:"technical"`
	Soft      []string `json:"soft" yaml:"soft"`
	Languages []string `json:"languages" yaml:"languages"`
}

// Project is a single project entry.
type Project struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
}

// StructuredCV is the structured record inferred from CV text.
// Every field defaults to an empty string or empty slice, never nil.
type StructuredCV struct {
	PersonalInfo PersonalInfo `json:"personalInfo" yaml:"personalInfo"`
	Education    []Education  `json:"education" yaml:"education"`
	Experience   []Experience `json:"experience" yaml:"experience"`
	Skills       Skills       `json:"skills" yaml:"skills"`
	Projects     []Project    `json:"projects" yaml:"projects"`
	Summary      string       `json:"summary" yaml:"summary"`
}

// New returns an empty, well-formed StructuredCV.
func New() StructuredCV {
	return StructuredCV{
		Education:  []Education{},
		Experience: []Experience{},
		Skills: Skills{
			Technical: []string{},
			Soft:      []string{},
			Languages: []string{},
		},
		Projects: []Project{},
	}
}

// Normalize replaces nil slices with empty ones and enforces list caps.
// It is applied to records decoded from external sources.
func (s *StructuredCV) Normalize() {
	if s.Education == nil {
		s.Education = []Education{}
	}
	if s.Experience == nil {
		s.Experience = []Experience{}
	}
	for i := range s.Experience {
		if s.Experience[i].Responsibilities == nil {
			s.Experience[i].Responsibilities = []string{}
		}
	}
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	for i := range s.Projects {
		if s.Projects[i].Technologies == nil {
			s.Projects[i].Technologies = []string{}
		}
	}
	s.Skills.Technical = nonNil(s.Skills.Technical)
	s.Skills.Soft = nonNil(s.Skills.Soft)
	s.Skills.Languages = nonNil(s.Skills.Languages)
	if len(s.Skills.Technical) > MaxTechnicalSkills {
		s.Skills.Technical = s.Skills.Technical[:MaxTechnicalSkills]
	}
}

// Counts returns the number of education, experience, skill and project entries.
func (s StructuredCV) Counts() (education, experience, skills, projects int) {
	skills = len(s.Skills.Technical) + len(s.Skills.Soft) + len(s.Skills.Languages)
	return len(s.Education), len(s.Experience), skills, len(s.Projects)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
