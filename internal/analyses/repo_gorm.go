package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormRepo implements Repo on MySQL through GORM.
type GormRepo struct {
	DB *gorm.DB
}

type cvAnalysisRow struct {
	ID             string    `gorm:"column:id;primaryKey;size:36"`
	UserID         string    `gorm:"column:user_id;size:191;index:idx_cv_analyses_user_created,priority:1"`
	FileName       string    `gorm:"column:file_name;size:255"`
	FilePath       string    `gorm:"column:file_path;size:512"`
	MimeType       string    `gorm:"column:mime_type;size:128"`
	SizeBytes      int64     `gorm:"column:size_bytes"`
	FirstName      string    `gorm:"column:first_name;size:128"`
	LastName       string    `gorm:"column:last_name;size:128"`
	Email          string    `gorm:"column:email;size:255"`
	Phone          string    `gorm:"column:phone;size:64"`
	OriginalText   string    `gorm:"column:original_text;type:longtext"`
	StructuredData string    `gorm:"column:structured_data;type:json"`
	AnalysisMethod string    `gorm:"column:analysis_method;size:32"`
	OpenAIStatus   string    `gorm:"column:openai_status;size:255"`
	CreatedAt      time.Time `gorm:"column:created_at;index:idx_cv_analyses_user_created,priority:2,sort:desc"`
}

func (cvAnalysisRow) TableName() string { return "cv_analyses" }

// AutoMigrate creates or updates the cv_analyses table.
func (r *GormRepo) AutoMigrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&cvAnalysisRow{})
}

// Create inserts a new record.
func (r *GormRepo) Create(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec.StructuredData)
	if err != nil {
		return fmt.Errorf("marshal structured data: %w", err)
	}
	row := cvAnalysisRow{
		ID:             rec.ID,
		UserID:         rec.UserID,
		FileName:       rec.FileName,
		FilePath:       rec.FilePath,
		MimeType:       rec.MimeType,
		SizeBytes:      rec.SizeBytes,
		FirstName:      rec.Contact.FirstName,
		LastName:       rec.Contact.LastName,
		Email:          rec.Contact.Email,
		Phone:          rec.Contact.Phone,
		OriginalText:   rec.OriginalText,
		StructuredData: string(payload),
		AnalysisMethod: rec.AnalysisMethod,
		OpenAIStatus:   rec.OpenAIStatus,
		CreatedAt:      rec.CreatedAt,
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

// GetByID returns a record by ID.
func (r *GormRepo) GetByID(ctx context.Context, id string) (Record, error) {
	var row cvAnalysisRow
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return row.toRecord(), nil
}

// ListByUser returns records for a user, newest first.
func (r *GormRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var rows []cvAnalysisRow
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRecord())
	}
	return out, nil
}

func (row cvAnalysisRow) toRecord() Record {
	return Record{
		ID:        row.ID,
		UserID:    row.UserID,
		FileName:  row.FileName,
		FilePath:  row.FilePath,
		MimeType:  row.MimeType,
		SizeBytes: row.SizeBytes,
		Contact: Contact{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
			Phone:     row.Phone,
		},
		OriginalText:   row.OriginalText,
		StructuredData: decodeStructured([]byte(row.StructuredData)),
		AnalysisMethod: row.AnalysisMethod,
		OpenAIStatus:   row.OpenAIStatus,
		CreatedAt:      row.CreatedAt,
	}
}
