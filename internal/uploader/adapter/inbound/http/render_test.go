package http_handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormRenderer_Render(t *testing.T) {
	r := NewFormRenderer("avatar")

	page, err := r.Render("")
	require.NoError(t, err)
	assert.NotContains(t, string(page), `class="message"`)

	page, err = r.Render("File uploaded successfully: 1-cat.png")
	require.NoError(t, err)
	assert.Contains(t, string(page), `<p class="message">File uploaded successfully: 1-cat.png</p>`)
}

func TestFormRenderer_EscapesMessage(t *testing.T) {
	page, err := NewFormRenderer("avatar").Render(`<script>alert(1)</script>`)
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>")
}
