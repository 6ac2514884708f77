package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/cv.pdf", want: "user/cv.pdf"},
		{name: "simple prefix", prefix: "cvs", key: "user/cv.pdf", want: "cvs/user/cv.pdf"},
		{name: "prefix trailing slash", prefix: "cvs/", key: "user/cv.pdf", want: "cvs/user/cv.pdf"},
		{name: "prefix and key slashes", prefix: "/cvs/", key: "/user/cv.pdf", want: "cvs/user/cv.pdf"},
		{name: "nested prefix", prefix: "cvs/raw", key: "user/cv.pdf", want: "cvs/raw/user/cv.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestSaveUploadsWithPrefixAndSSE(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "bucket", "/cvs/", "")

	key, size, mimeType, err := store.Save(context.Background(), "user-1", "cv.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("%PDF-1.4 body")) || mimeType != "application/pdf" {
		t.Fatalf("unexpected size/type %d %q", size, mimeType)
	}
	if len(fake.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(fake.puts))
	}
	put := fake.puts[0]
	if aws.ToString(put.Key) != "cvs/"+key {
		t.Fatalf("unexpected object key %q for %q", aws.ToString(put.Key), key)
	}
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 SSE, got %q", put.ServerSideEncryption)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestSaveWithKeyUsesKMSWhenConfigured(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "bucket", "", "kms-key")

	if _, err := store.SaveWithKey(context.Background(), "k.extracted.txt", "text/plain", strings.NewReader("x")); err != nil {
		t.Fatalf("save with key: %v", err)
	}
	put := fake.puts[0]
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected KMS encryption, got %+v", put)
	}
}

func TestSaveWrapsPutError(t *testing.T) {
	fake := &fakeS3{putErr: errors.New("access denied")}
	store := NewWithClient(fake, "bucket", "", "")

	_, _, _, err := store.Save(context.Background(), "u", "cv.txt", strings.NewReader("hello"))
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("expected wrapped put error, got %v", err)
	}
}
