package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter_StoreAndGet(t *testing.T) {
	m := NewMemoryAdapter()

	loc, err := m.Store(context.Background(), "1-a.png", strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), loc.Size)
	assert.Equal(t, "memory://1-a.png", loc.Path)

	data, ok := m.Get("1-a.png")
	require.True(t, ok)
	assert.Equal(t, "abc", string(data))

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMemoryAdapter_FailedReadStoresNothing(t *testing.T) {
	m := NewMemoryAdapter()
	boom := errors.New("boom")

	_, err := m.Store(context.Background(), "1-a.png", iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.Names())
}

func TestMemoryAdapter_Names(t *testing.T) {
	m := NewMemoryAdapter()
	_, _ = m.Store(context.Background(), "2-b.png", strings.NewReader("b"))
	_, _ = m.Store(context.Background(), "1-a.png", strings.NewReader("a"))

	assert.Equal(t, []string{"1-a.png", "2-b.png"}, m.Names())
}
