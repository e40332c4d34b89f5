package port

import (
	"context"
	"io"

	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
)

// IncomingFile describes a file part as declared by the client.
type IncomingFile struct {
	FileName string
	MimeType string
	Reader   io.Reader
}

// UploadService defines the business logic for accepting uploads.
type UploadService interface {
	// Accept validates the incoming file and stores it.
	// Rejections are reported as domain errors and leave no file behind.
	Accept(ctx context.Context, file IncomingFile) (*domain.UploadedFile, error)
}
