package documents

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"cv-backend/internal/shared/storage/object"
)

// Service writes uploaded CVs and their recovered text to object storage.
type Service struct {
	Store object.ObjectStore
}

// SaveUpload stores the raw upload under the user's namespace.
func (s *Service) SaveUpload(ctx context.Context, userID, fileName string, data []byte) (Stored, error) {
	if s == nil || s.Store == nil {
		return Stored{}, ErrNoStore
	}
	key, size, sniffed, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Stored{}, fmt.Errorf("save upload: %w", err)
	}
	return Stored{StorageKey: key, SizeBytes: size, SniffedType: sniffed}, nil
}

// SaveExtracted stores the recovered text next to the upload and returns its key.
func (s *Service) SaveExtracted(ctx context.Context, storageKey, text string) (string, error) {
	if s == nil || s.Store == nil {
		return "", ErrNoStore
	}
	key := object.ExtractedKey(storageKey)
	if _, err := s.Store.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("save extracted text: %w", err)
	}
	return key, nil
}
