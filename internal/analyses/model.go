package analyses

import (
	"time"

	"cv-backend/internal/cv"
)

// Analysis methods reported to callers.
const (
	MethodOpenAI         = "openai"
	MethodNative         = "native"
	MethodNativeFallback = "native_fallback"
)

// AI availability reported in openAIStatus.
const (
	AIStatusNotConfigured    = "not_configured"
	AIStatusInvalidKeyFormat = "invalid_key_format"
	AIStatusConfigured       = "configured"
	AIStatusSuccess          = "success"
	aiStatusFailedPrefix     = "failed: "
)

// Upload is one CV submitted for analysis.
type Upload struct {
	UserID    string
	FileName  string
	MediaType string
	Data      []byte
}

// Contact holds the normalized contact fields stored alongside a record.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Record is a persisted analysis row.
type Record struct {
	ID             string
	UserID         string
	FileName       string
	FilePath       string
	MimeType       string
	SizeBytes      int64
	Contact        Contact
	OriginalText   string
	StructuredData cv.StructuredCV
	AnalysisMethod string
	OpenAIStatus   string
	CreatedAt      time.Time
}

// Result is what Analyze returns to the HTTP layer.
type Result struct {
	RecordID       string
	OriginalText   string
	StructuredData cv.StructuredCV
	AnalysisMethod string
	FileName       string
	FilePath       string
	OpenAIStatus   string
	// Warning is set when a best-effort side effect failed.
	Warning string
	Saved   bool
}
