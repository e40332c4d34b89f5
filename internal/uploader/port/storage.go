package port

import (
	"context"
	"io"

	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
)

//go:generate mockgen -destination=../service/mocks/store_mock.go -package=mocks -source=storage.go

// Store persists an upload stream under a given name.
type Store interface {
	// Store consumes reader fully and commits it under name.
	// If reading fails, nothing may remain visible under name.
	Store(ctx context.Context, name string, reader io.Reader) (domain.StoredLocation, error)
}
