package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"cv-backend/internal/cv"
	"cv-backend/internal/documents"
	"cv-backend/internal/extract"
	"cv-backend/internal/infer"
	"cv-backend/internal/llm"
	"cv-backend/internal/shared/metrics"
	"cv-backend/internal/shared/telemetry"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 5 << 20
	// minAIText is the recovered text an AI prompt needs.
	minAIText = 50

	warnNotSaved  = "Analysis completed but could not be saved."
	warnFileStore = "Uploaded file could not be stored."
)

// Service runs uploads through the native or AI-assisted pipeline and records the result.
type Service struct {
	Repo       Repo
	Documents  *documents.Service
	Extractor  *extract.Extractor
	Inferencer *infer.Inferencer
	// LLM is nil when no provider is usable. AIStatus then explains why.
	LLM       llm.Client
	AIStatus  string
	AITimeout time.Duration
	Now       func() time.Time
}

// Analyze validates the upload, extracts a StructuredCV and records it.
// Only ErrInvalidInput is returned; side-effect failures surface in Result.Warning.
func (s *Service) Analyze(ctx context.Context, up Upload) (Result, error) {
	start := time.Now()
	if err := validateUpload(up); err != nil {
		return Result{}, err
	}
	doc := extract.NewDocument(up.Data, up.MediaType, up.FileName)
	if !extract.IsSupported(doc.MediaType) {
		return Result{}, fmt.Errorf("%w: file type %q is not allowed", ErrInvalidInput, doc.MediaType)
	}

	logFields := map[string]any{
		"request_id": requestIDFromContext(ctx),
		"user_id":    up.UserID,
		"file_name":  up.FileName,
		"mime_type":  doc.MediaType,
		"size_bytes": doc.Size,
	}
	var warnings []string

	filePath := ""
	if stored, err := s.Documents.SaveUpload(ctx, up.UserID, up.FileName, up.Data); err != nil {
		if !errors.Is(err, documents.ErrNoStore) {
			metrics.IncStorageFailed()
			telemetry.Warn("analysis.storage_failed", withField(logFields, "err", err))
			warnings = append(warnings, warnFileStore)
		}
	} else {
		filePath = stored.StorageKey
	}

	text, structured, method, aiStatus := s.run(ctx, doc, logFields)
	contact := NormalizeContact(&structured)

	if filePath != "" {
		if _, err := s.Documents.SaveExtracted(ctx, filePath, text); err != nil {
			metrics.IncStorageFailed()
			telemetry.Warn("analysis.extracted_copy_failed", withField(logFields, "err", err))
		}
	}

	res := Result{
		OriginalText:   text,
		StructuredData: structured,
		AnalysisMethod: method,
		FileName:       up.FileName,
		FilePath:       filePath,
		OpenAIStatus:   aiStatus,
	}

	if s.Repo != nil {
		rec := Record{
			ID:             uuid.NewString(),
			UserID:         up.UserID,
			FileName:       up.FileName,
			FilePath:       filePath,
			MimeType:       doc.MediaType,
			SizeBytes:      doc.Size,
			Contact:        contact,
			OriginalText:   text,
			StructuredData: structured,
			AnalysisMethod: method,
			OpenAIStatus:   aiStatus,
			CreatedAt:      s.now(),
		}
		if err := s.Repo.Create(ctx, rec); err != nil {
			metrics.IncPersistFailed()
			telemetry.Error("analysis.persist_failed", withField(logFields, "err", err))
			warnings = append(warnings, warnNotSaved)
		} else {
			res.RecordID = rec.ID
			res.Saved = true
		}
	}
	res.Warning = strings.Join(warnings, " ")

	metrics.IncAnalysis(method)
	metrics.ObserveAnalysisDurationMs(metrics.SinceMillis(start))
	done := withField(logFields, "analysis_method", method)
	done["record_id"] = res.RecordID
	done["openai_status"] = aiStatus
	done["duration_ms"] = metrics.SinceMillis(start)
	telemetry.Info("analysis.complete", done)
	return res, nil
}

// run picks the analysis method. An AI failure of any kind re-runs the native pipeline.
func (s *Service) run(ctx context.Context, doc extract.Document, logFields map[string]any) (string, cv.StructuredCV, string, string) {
	if s.LLM == nil {
		text, structured := s.native(doc)
		status := s.AIStatus
		if status == "" {
			status = AIStatusNotConfigured
		}
		return text, structured, MethodNative, status
	}

	text, structured, err := s.analyzeWithAI(ctx, doc)
	if err == nil {
		return text, structured, s.LLM.Name(), AIStatusSuccess
	}

	metrics.IncAIFallback()
	safe := llm.SanitizeError(err)
	fields := withField(logFields, "provider", s.LLM.Name())
	fields["err"] = err
	fields["reason"] = safe
	telemetry.Warn("analysis.ai_fallback", fields)

	text, structured = s.native(doc)
	return text, structured, MethodNativeFallback, aiStatusFailedPrefix + safe
}

func (s *Service) analyzeWithAI(ctx context.Context, doc extract.Document) (string, cv.StructuredCV, error) {
	text := strings.TrimSpace(extract.QuickText(doc))
	if n := utf8.RuneCountInString(text); n < minAIText {
		return "", cv.StructuredCV{}, fmt.Errorf("%w: %d characters recovered", ErrInsufficientText, n)
	}
	if s.AITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AITimeout)
		defer cancel()
	}
	structured, err := s.LLM.ExtractCV(ctx, text)
	if err != nil {
		return "", cv.StructuredCV{}, err
	}
	structured.Normalize()
	return text, structured, nil
}

func (s *Service) native(doc extract.Document) (string, cv.StructuredCV) {
	ex := s.Extractor
	if ex == nil {
		ex = extract.New()
	}
	in := s.Inferencer
	if in == nil {
		in = infer.New()
	}
	res := ex.Extract(doc)
	if res.Degraded {
		metrics.IncPlaceholder()
	}
	return res.Text, in.Infer(res.Text)
}

// Get returns a record. A non-empty userID must own the record.
func (s *Service) Get(ctx context.Context, userID, id string) (Record, error) {
	if s.Repo == nil {
		return Record{}, ErrNotFound
	}
	rec, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if userID != "" && rec.UserID != userID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// List returns a user's records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if s.Repo == nil {
		return []Record{}, nil
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// NormalizeContact strips "mailto:" from the email and a leading "+" from the
// phone in place, and splits the name into first and last on the first space.
func NormalizeContact(s *cv.StructuredCV) Contact {
	info := &s.PersonalInfo
	info.Email = strings.TrimSpace(info.Email)
	if len(info.Email) >= 7 && strings.EqualFold(info.Email[:7], "mailto:") {
		info.Email = strings.TrimSpace(info.Email[7:])
	}
	info.Phone = strings.TrimPrefix(strings.TrimSpace(info.Phone), "+")

	contact := Contact{Email: info.Email, Phone: info.Phone}
	name := strings.TrimSpace(info.Name)
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		contact.FirstName = name[:i]
		contact.LastName = strings.TrimSpace(name[i+1:])
	} else {
		contact.FirstName = name
	}
	return contact
}

func validateUpload(up Upload) error {
	switch {
	case len(up.Data) == 0:
		return fmt.Errorf("%w: file is required", ErrInvalidInput)
	case strings.TrimSpace(up.UserID) == "":
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	case strings.TrimSpace(up.FileName) == "":
		return fmt.Errorf("%w: file name is required", ErrInvalidInput)
	case len(up.Data) > MaxUploadBytes:
		return fmt.Errorf("%w: file exceeds the 5 MiB limit", ErrInvalidInput)
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func withField(base map[string]any, key string, val any) map[string]any {
	out := make(map[string]any, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[key] = val
	return out
}
