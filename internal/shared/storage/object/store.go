package object

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"cv-backend/internal/shared/util"
)

// ObjectStore saves and retrieves uploaded CVs and their extracted text copies.
type ObjectStore interface {
	// Save stores r under the user's namespace and returns the generated key,
	// the number of bytes written and the sniffed content type.
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	// SaveWithKey stores r at a caller-chosen key.
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// NewKey builds "<owner prefix>/<uuid>_<sanitized name>".
func NewKey(userID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.OwnerPrefix(userID), uuid.NewString()+"_"+name), nil
}

// ExtractedKey returns the key of the recovered-text copy stored next to an upload.
func ExtractedKey(storageKey string) string {
	return storageKey + ".extracted.txt"
}
