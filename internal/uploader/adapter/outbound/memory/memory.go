package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
	"github.com/anthanhphan/go-image-upload/internal/uploader/port"
)

// MemoryAdapter keeps uploads in a map. Contents vanish with the process.
type MemoryAdapter struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ port.Store = (*MemoryAdapter)(nil)

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{files: make(map[string][]byte)}
}

func (m *MemoryAdapter) Store(ctx context.Context, name string, reader io.Reader) (domain.StoredLocation, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return domain.StoredLocation{}, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.StoredLocation{}, err
	}

	m.mu.Lock()
	m.files[name] = buf.Bytes()
	m.mu.Unlock()

	return domain.StoredLocation{Name: name, Path: "memory://" + name, Size: int64(buf.Len())}, nil
}

// Get returns a copy of a stored upload.
func (m *MemoryAdapter) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Names lists stored uploads in lexical order.
func (m *MemoryAdapter) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
