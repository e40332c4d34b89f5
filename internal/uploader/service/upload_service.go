package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anthanhphan/go-image-upload/internal/uploader/config"
	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
	"github.com/anthanhphan/go-image-upload/internal/uploader/port"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/spaolacci/murmur3"
)

//go:generate mockgen -destination=mocks/dependencies_mock.go -package=mocks -source=upload_service.go

// StampGenerator defines stored-name stamp capability.
type StampGenerator interface {
	Next() int64
}

// UploadServiceImpl validates single-file uploads and hands them to a Store.
type UploadServiceImpl struct {
	store        port.Store
	stamps       StampGenerator
	maxFileSize  int64
	mimePrefixes []string
}

// Ensure UploadServiceImpl implements port.UploadService.
var _ port.UploadService = (*UploadServiceImpl)(nil)

// NewUploadService builds the upload use case from the upload config section.
func NewUploadService(cfg config.UploadConfig, store port.Store, stamps StampGenerator) *UploadServiceImpl {
	prefixes := make([]string, 0, len(cfg.AllowedMimePrefixes))
	for _, p := range cfg.AllowedMimePrefixes {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return &UploadServiceImpl{
		store:        store,
		stamps:       stamps,
		maxFileSize:  cfg.MaxFileSize,
		mimePrefixes: prefixes,
	}
}

// Accept runs the upload workflow: name check, MIME check, stamping, bounded streaming to the store.
func (s *UploadServiceImpl) Accept(ctx context.Context, file port.IncomingFile) (*domain.UploadedFile, error) {
	originalName := domain.SanitizeFileName(file.FileName)
	if originalName == "" || file.Reader == nil {
		return nil, domain.ErrNoFile
	}

	if !s.isAllowedMimeType(file.MimeType) {
		logger.Warnw("Upload rejected", "file_name", originalName, "mime_type", file.MimeType, "reason", "mime")
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, file.MimeType)
	}

	storedName := domain.StoredFileName(s.stamps.Next(), originalName)
	hasher := murmur3.New128()
	reader := io.TeeReader(newLimitedReader(file.Reader, s.maxFileSize), hasher)

	loc, err := s.store.Store(ctx, storedName, reader)
	if err != nil {
		if errors.Is(err, domain.ErrPayloadTooLarge) {
			logger.Warnw("Upload rejected", "file_name", originalName, "limit_bytes", s.maxFileSize, "reason", "size")
			return nil, fmt.Errorf("%w: limit is %d bytes", domain.ErrPayloadTooLarge, s.maxFileSize)
		}
		logger.Errorw("Upload store failed", "stored_name", storedName, "error", err.Error())
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	record := &domain.UploadedFile{
		OriginalName: originalName,
		MimeType:     file.MimeType,
		Size:         loc.Size,
		StoredName:   loc.Name,
		Path:         loc.Path,
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	}

	logger.Infow("Upload stored",
		"stored_name", record.StoredName,
		"path", record.Path,
		"size_bytes", record.Size,
		"checksum", record.Checksum)
	return record, nil
}

// isAllowedMimeType applies the declared MIME type predicate.
// The match is case-sensitive, so "IMAGE/PNG" is refused.
func (s *UploadServiceImpl) isAllowedMimeType(mimeType string) bool {
	for _, prefix := range s.mimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// limitedReader fails with ErrPayloadTooLarge once more than n bytes were read.
type limitedReader struct {
	r io.Reader
	n int64
}

func newLimitedReader(r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		return r
	}
	return &limitedReader{r: r, n: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.n < 0 {
		return 0, domain.ErrPayloadTooLarge
	}
	// One extra byte is enough to detect overflow.
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return n, domain.ErrPayloadTooLarge
	}
	return n, err
}
