package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fanvest/gateway/internal/core/domain"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		filename string
		bucket   string
	}{
		{"avatar.jpg", BucketImages},
		{"AVATAR.PNG", BucketImages},
		{"video.mov", BucketVideos},
		{"clip.mp4", BucketVideos},
		{"track.mp3", BucketAudios},
		{"report.pdf", BucketDocuments},
		{"sheet.xlsx", BucketDocuments},
		{"unknown.xyz", BucketFiles},
		{"archive.tar.gz", BucketFiles},
	}

	for _, tc := range cases {
		bucket, err := Resolve(tc.filename)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tc.filename, err)
		}
		if bucket != tc.bucket {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.filename, bucket, tc.bucket)
		}
	}
}

func TestResolve_NoExtension(t *testing.T) {
	if _, err := Resolve("noext"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := Resolve(""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestDestinationDir(t *testing.T) {
	cases := []struct {
		mime   string
		bucket string
	}{
		{"image/png", BucketImages},
		{"image/jpeg; charset=binary", BucketImages},
		{"video/mp4", BucketVideos},
		{"audio/mpeg", BucketAudios},
		{"application/pdf", BucketDocuments},
		{"text/csv", BucketDocuments},
		{"application/octet-stream", BucketFiles},
		{"", BucketFiles},
	}

	for _, tc := range cases {
		if got := DestinationDir(tc.mime); got != tc.bucket {
			t.Fatalf("DestinationDir(%q) = %q, want %q", tc.mime, got, tc.bucket)
		}
	}
}

func TestEnsureDir_ConcurrentFirstWriters(t *testing.T) {
	root := t.TempDir()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := EnsureDir(root, BucketImages); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent EnsureDir failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(root, BucketImages))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected bucket directory to exist: %v", err)
	}
}
