// Package storage maps uploaded assets to category subdirectories under the
// uploads root: images/ videos/ audios/ documents/ files/.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fanvest/gateway/internal/core/domain"
)

// Category buckets under the uploads root.
const (
	BucketImages    = "images"
	BucketVideos    = "videos"
	BucketAudios    = "audios"
	BucketDocuments = "documents"
	BucketFiles     = "files"
)

// extBuckets maps lower-cased filename extensions (without the dot) to
// storage buckets. Anything absent falls through to BucketFiles.
var extBuckets = map[string]string{
	"jpg":  BucketImages,
	"jpeg": BucketImages,
	"png":  BucketImages,
	"gif":  BucketImages,
	"webp": BucketImages,
	"svg":  BucketImages,

	"mp4":  BucketVideos,
	"mov":  BucketVideos,
	"avi":  BucketVideos,
	"mkv":  BucketVideos,
	"webm": BucketVideos,

	"mp3":  BucketAudios,
	"wav":  BucketAudios,
	"ogg":  BucketAudios,
	"m4a":  BucketAudios,
	"flac": BucketAudios,

	"pdf":  BucketDocuments,
	"doc":  BucketDocuments,
	"docx": BucketDocuments,
	"xls":  BucketDocuments,
	"xlsx": BucketDocuments,
	"ppt":  BucketDocuments,
	"pptx": BucketDocuments,
	"txt":  BucketDocuments,
	"csv":  BucketDocuments,
}

// Resolve maps a requested filename to its storage bucket by extension.
// A filename without an extension is a client error; an extension outside
// the fixed table is not — it buckets to "files" and the caller decides
// whether the file actually exists.
func Resolve(filename string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "", domain.ErrInvalidInput
	}
	if bucket, ok := extBuckets[strings.ToLower(ext)]; ok {
		return bucket, nil
	}
	return BucketFiles, nil
}

// DestinationDir resolves an upload's bucket from its declared mime type.
// Used at write time, where the content type is authoritative and the
// filename is not.
func DestinationDir(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case strings.HasPrefix(mt, "image/"):
		return BucketImages
	case strings.HasPrefix(mt, "video/"):
		return BucketVideos
	case strings.HasPrefix(mt, "audio/"):
		return BucketAudios
	}

	switch mt {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/plain",
		"text/csv":
		return BucketDocuments
	}
	return BucketFiles
}

// EnsureDir creates the bucket directory under root if it does not exist.
// MkdirAll is idempotent, so two requests racing to create the same missing
// directory both succeed.
func EnsureDir(root, bucket string) (string, error) {
	dir := filepath.Join(root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
