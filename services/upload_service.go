package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/pkg/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadSize is the largest accepted image, 10 MiB.
const MaxUploadSize int64 = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// FileUpload describes an uploaded file independently of the transport.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadResult is where a stored file can be fetched from.
type UploadResult struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// IUploadService stores uploaded images.
type IUploadService interface {
	Store(ctx context.Context, f FileUpload) (*UploadResult, error)
}

// UploadService writes images into dir and serves them under urlPrefix.
type UploadService struct {
	dir       string
	urlPrefix string
}

func NewUploadService(dir, urlPrefix string) IUploadService {
	return &UploadService{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Store validates f and writes it under a random name that keeps the
// original extension.
func (s *UploadService) Store(ctx context.Context, f FileUpload) (*UploadResult, error) {
	if f.Open == nil {
		return nil, ErrNoFile
	}
	if !allowedImageTypes[normalizeContentType(f.ContentType)] {
		return nil, ErrInvalidType
	}
	if f.Size > MaxUploadSize {
		return nil, ErrTooLarge
	}

	rc, err := f.Open()
	if err != nil {
		return nil, apperrors.Internal("file upload failed", err)
	}
	defer rc.Close()

	// The declared size comes from the client; the limit is enforced on the
	// bytes actually read.
	data, err := io.ReadAll(io.LimitReader(rc, MaxUploadSize+1))
	if err != nil {
		return nil, apperrors.Internal("file upload failed", err)
	}
	if int64(len(data)) > MaxUploadSize {
		return nil, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Internal("file upload failed", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperrors.Internal("file upload failed", fmt.Errorf("create upload dir: %w", err))
	}

	fileName := uuid.NewString() + "." + extensionOf(f.Name)
	if err := os.WriteFile(filepath.Join(s.dir, fileName), data, 0o644); err != nil {
		return nil, apperrors.Internal("file upload failed", fmt.Errorf("write upload: %w", err))
	}

	configslog.Log.Info("File uploaded",
		zap.String("file", fileName),
		zap.String("original", f.Name),
		zap.Int("bytes", len(data)),
	)
	return &UploadResult{URL: s.urlPrefix + "/" + fileName, FileName: fileName}, nil
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// extensionOf returns the lowercase extension of name when it is an image
// extension, and "jpg" otherwise.
func extensionOf(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !imageExtensions[ext] {
		return "jpg"
	}
	return ext
}

var _ IUploadService = (*UploadService)(nil)
