package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cv-backend/internal/shared/server/middleware"
	"cv-backend/internal/shared/server/respond"
)

// multipartOverhead leaves room for form boundaries and the userId field.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches CV routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cv/analyze", h.analyze)
	rg.GET("/cv/analyses", h.list)
	rg.GET("/cv/analyses/:id", h.get)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file exceeds the 5 MiB limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is required", nil)
		return
	}

	userID := strings.TrimSpace(c.PostForm("userId"))
	if userID == "" {
		userID = middleware.UserIDFromContext(c)
	}
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "userId is required", nil)
		return
	}
	middleware.SetUserID(c, userID)

	if fileHeader.Size > MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file exceeds the 5 MiB limit", []map[string]any{
			{"field": "file", "issue": "too_large", "maxBytes": MaxUploadBytes},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.Analyze(ctx, Upload{
		UserID:    userID,
		FileName:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to analyze CV", nil)
		}
		return
	}

	c.Set("recordId", res.RecordID)
	c.Set("analysisMethod", res.AnalysisMethod)

	resp := gin.H{
		"success": true,
		"extractedData": gin.H{
			"originalText":   res.OriginalText,
			"structuredData": res.StructuredData,
		},
		"fileName":       res.FileName,
		"filePath":       res.FilePath,
		"analysisMethod": res.AnalysisMethod,
		"openAIStatus":   res.OpenAIStatus,
	}
	if res.RecordID != "" {
		resp["recordId"] = res.RecordID
	}
	if res.Warning != "" {
		resp["warning"] = res.Warning
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "analysis id is required", nil)
		return
	}

	rec, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch analysis", nil)
		}
		return
	}
	c.Set("recordId", rec.ID)

	resp := summaryResponse(rec)
	resp["originalText"] = rec.OriginalText
	resp["structuredData"] = rec.StructuredData
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "userId is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to list analyses", nil)
		}
		return
	}

	resp := make([]gin.H, 0, len(records))
	for _, rec := range records {
		resp = append(resp, summaryResponse(rec))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func summaryResponse(rec Record) gin.H {
	return gin.H{
		"id":             rec.ID,
		"userId":         rec.UserID,
		"fileName":       rec.FileName,
		"filePath":       rec.FilePath,
		"mimeType":       rec.MimeType,
		"sizeBytes":      rec.SizeBytes,
		"firstName":      rec.Contact.FirstName,
		"lastName":       rec.Contact.LastName,
		"email":          rec.Contact.Email,
		"phone":          rec.Contact.Phone,
		"analysisMethod": rec.AnalysisMethod,
		"openAIStatus":   rec.OpenAIStatus,
		"summary":        rec.StructuredData.Summary,
		"createdAt":      rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}
