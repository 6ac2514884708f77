package documents

import (
	"context"
	"errors"
	"io"
	"testing"

	"cv-backend/internal/shared/storage/object/local"
)

func TestSaveUploadAndExtracted(t *testing.T) {
	svc := &Service{Store: local.New(t.TempDir())}
	ctx := context.Background()

	stored, err := svc.SaveUpload(ctx, "user-1", "cv.txt", []byte("Alice Wong"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if stored.SizeBytes != 10 || stored.StorageKey == "" {
		t.Fatalf("unexpected stored %+v", stored)
	}

	key, err := svc.SaveExtracted(ctx, stored.StorageKey, "recovered text")
	if err != nil {
		t.Fatalf("SaveExtracted: %v", err)
	}
	if key != stored.StorageKey+".extracted.txt" {
		t.Fatalf("unexpected extracted key %q", key)
	}
	rc, err := svc.Store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open extracted: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "recovered text" {
		t.Fatalf("unexpected extracted contents %q", data)
	}
}

func TestMissingStore(t *testing.T) {
	var svc *Service
	if _, err := svc.SaveUpload(context.Background(), "u", "cv.txt", nil); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	if _, err := (&Service{}).SaveExtracted(context.Background(), "k", "t"); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}
