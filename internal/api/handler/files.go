package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/api/envelope"
	"github.com/fanvest/gateway/internal/api/metrics"
	"github.com/fanvest/gateway/internal/core/domain"
	"github.com/fanvest/gateway/internal/infrastructure/config"
	"github.com/fanvest/gateway/internal/infrastructure/storage"
)

// FileHandler serves uploaded assets from the local uploads directory and
// accepts trusted uploads into it. Asset requests never touch a backend.
type FileHandler struct {
	root   string
	limits map[string]int64
	log    zerolog.Logger
}

func NewFileHandler(cfg config.UploadsConfig, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		root:   cfg.Root,
		limits: cfg.Limits(),
		log:    log.With().Str("component", "files").Logger(),
	}
}

// Serve handles GET /file/:filename. The filename's extension picks the
// storage bucket; only the final disk-existence check produces NotFound.
func (h *FileHandler) Serve(c echo.Context) error {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == string(filepath.Separator) {
		return domain.ErrInvalidInput
	}

	bucket, err := storage.Resolve(name)
	if err != nil {
		return err
	}

	path := filepath.Join(h.root, bucket, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return domain.ErrNotFound
	}

	metrics.FilesServedTotal.WithLabelValues(bucket).Inc()
	return c.File(path)
}

// Upload handles POST /file (API-key gated). The destination bucket comes
// from the part's declared content type, not its filename; the per-bucket
// size limit is enforced while streaming to disk.
func (h *FileHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ErrInvalidInput
	}

	bucket := storage.DestinationDir(fh.Header.Get("Content-Type"))
	limit := h.limits[bucket]
	if limit > 0 && fh.Size > limit {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the size limit for "+bucket)
	}

	dir, err := storage.EnsureDir(h.root, bucket)
	if err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	stored := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(dir, stored)

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	reader := io.Reader(src)
	if limit > 0 {
		// Multipart part sizes are untrusted; cap the copy itself.
		reader = io.LimitReader(src, limit+1)
	}
	n, err := io.Copy(dst, reader)
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	if limit > 0 && n > limit {
		_ = os.Remove(path)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the size limit for "+bucket)
	}

	h.log.Info().Str("bucket", bucket).Str("filename", stored).Int64("size", n).Msg("file stored")

	return envelope.JSON(c, http.StatusCreated, map[string]any{
		"filename": stored,
		"bucket":   bucket,
		"size":     n,
	}, "File stored successfully.")
}
