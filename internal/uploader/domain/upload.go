package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrNoFile               = errors.New("no file uploaded")
	ErrNotMultipart         = errors.New("request is not multipart/form-data")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrStorage              = errors.New("storage failure")
)

// StoredLocation is where a backend placed an accepted upload.
type StoredLocation struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// UploadedFile is the per-request record of an accepted upload.
// OriginalName and MimeType come from the client and are not trusted.
type UploadedFile struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	StoredName   string `json:"stored_name"`
	Path         string `json:"path"`
	Checksum     string `json:"checksum"`
}

// StoredFileName builds "<stamp>-<original>". Callers pass an already
// sanitized name; original is used verbatim.
func StoredFileName(stamp int64, original string) string {
	return fmt.Sprintf("%d-%s", stamp, original)
}

// SanitizeFileName strips any directory component a client may have sent.
// Surrounding spaces are kept. It returns "" when nothing usable remains.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	switch base {
	case ".", "/", "..":
		return ""
	}
	return base
}
