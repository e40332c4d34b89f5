package http_handler

import (
	"io"
	"strings"
	"testing"

	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyLimitReader(t *testing.T) {
	r := newBodyLimitReader(strings.NewReader("hello"), 5)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.False(t, r.exceeded)

	r = newBodyLimitReader(strings.NewReader("hello, world"), 5)
	_, err = io.ReadAll(r)
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
	assert.True(t, r.exceeded)

	n, err := r.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
}
