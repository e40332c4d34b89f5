package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
	"github.com/anthanhphan/go-image-upload/internal/uploader/port"
	"github.com/anthanhphan/gosdk/logger"
)

const tempPattern = ".upload-*.part"

// DiskAdapter writes uploads into a single local directory.
// Bytes go to a hidden temp file and are renamed into place only after the
// stream ended cleanly, so a failed upload never leaves a file under its name.
type DiskAdapter struct {
	dir string
}

var _ port.Store = (*DiskAdapter)(nil)

// NewDiskAdapter creates dir if absent.
func NewDiskAdapter(dir string) (*DiskAdapter, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskAdapter{dir: dir}, nil
}

// Dir returns the upload directory.
func (d *DiskAdapter) Dir() string {
	return d.dir
}

func (d *DiskAdapter) Store(ctx context.Context, name string, reader io.Reader) (domain.StoredLocation, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredLocation{}, err
	}

	tmp, err := os.CreateTemp(d.dir, tempPattern)
	if err != nil {
		return domain.StoredLocation{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, reader)
	if err != nil {
		_ = tmp.Close()
		return domain.StoredLocation{}, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.StoredLocation{}, fmt.Errorf("failed to close upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.StoredLocation{}, err
	}

	// Last writer wins on a name clash, as with a plain create.
	finalPath := filepath.Join(d.dir, name)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return domain.StoredLocation{}, fmt.Errorf("failed to commit upload: %w", err)
	}
	committed = true

	logger.Debugw("Upload written to disk", "path", finalPath, "size_bytes", written)
	return domain.StoredLocation{Name: name, Path: finalPath, Size: written}, nil
}
