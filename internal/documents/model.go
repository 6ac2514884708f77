package documents

import "errors"

// ErrNoStore is returned when no object store is wired.
var ErrNoStore = errors.New("object store not configured")

// Stored describes an upload written to durable storage.
type Stored struct {
	StorageKey string
	SizeBytes  int64
	// SniffedType is the content type detected from the stored bytes.
	SniffedType string
}
