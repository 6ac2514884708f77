package local

import (
	"context"
	"io"
	"strings"
	"testing"

	"cv-backend/internal/shared/storage/object"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "user-1", "Alice CV.txt", strings.NewReader("Alice Wong\nalice@example.com\n"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != 29 {
		t.Fatalf("expected 29 bytes, got %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected sniffed type %q", mimeType)
	}
	if !strings.HasSuffix(key, "_Alice CV.txt") {
		t.Fatalf("unexpected key %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "Alice Wong\nalice@example.com\n" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestSaveWithKeyWritesExtractedCopy(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key := object.ExtractedKey("abc/123_cv.pdf")
	n, err := store.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader("recovered"))
	if err != nil {
		t.Fatalf("save with key: %v", err)
	}
	if n != int64(len("recovered")) {
		t.Fatalf("unexpected size %d", n)
	}
	rc, err := store.Open(ctx, "abc/123_cv.pdf.extracted.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rc.Close()
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Open(ctx, "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := store.SaveWithKey(ctx, "/abs/key", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected absolute key to be rejected")
	}
	if _, _, _, err := store.Save(ctx, "u", "../cv.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal file name to be rejected")
	}
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := store.Save(ctx, "u", "cv.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected cancelled context error")
	}
}
