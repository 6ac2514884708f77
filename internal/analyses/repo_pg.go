package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cv-backend/internal/cv"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const pgColumns = `id, user_id, file_name, file_path, mime_type, size_bytes,
       first_name, last_name, email, phone, original_text, structured_data,
       analysis_method, openai_status, created_at`

// Create inserts a new record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO cv_analyses (` + pgColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	payload, err := json.Marshal(rec.StructuredData)
	if err != nil {
		return fmt.Errorf("marshal structured data: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.FileName,
		rec.FilePath,
		rec.MimeType,
		rec.SizeBytes,
		rec.Contact.FirstName,
		rec.Contact.LastName,
		rec.Contact.Email,
		rec.Contact.Phone,
		rec.OriginalText,
		payload,
		rec.AnalysisMethod,
		rec.OpenAIStatus,
		rec.CreatedAt,
	)
	return err
}

// GetByID returns a record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	query := `SELECT ` + pgColumns + ` FROM cv_analyses WHERE id = $1 LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByUser returns records for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + pgColumns + ` FROM cv_analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var payload []byte
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.FileName,
		&rec.FilePath,
		&rec.MimeType,
		&rec.SizeBytes,
		&rec.Contact.FirstName,
		&rec.Contact.LastName,
		&rec.Contact.Email,
		&rec.Contact.Phone,
		&rec.OriginalText,
		&payload,
		&rec.AnalysisMethod,
		&rec.OpenAIStatus,
		&rec.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.StructuredData = decodeStructured(payload)
	return rec, nil
}

// decodeStructured tolerates corrupt rows by returning an empty record.
func decodeStructured(payload []byte) cv.StructuredCV {
	out := cv.New()
	if len(payload) == 0 {
		return out
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return cv.New()
	}
	out.Normalize()
	return out
}
