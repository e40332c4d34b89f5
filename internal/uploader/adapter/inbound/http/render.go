package http_handler

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed views/index.html
var views embed.FS

var pageTemplate = template.Must(template.ParseFS(views, "views/index.html"))

const uploadPath = "/imageUpload"

// PageData feeds the upload form. An empty Message renders no status line.
type PageData struct {
	Message   string
	Action    string
	FieldName string
}

// FormRenderer produces the upload page.
type FormRenderer struct {
	fieldName string
}

func NewFormRenderer(fieldName string) *FormRenderer {
	return &FormRenderer{fieldName: fieldName}
}

// Render returns the HTML page with an optional status message.
func (r *FormRenderer) Render(message string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, PageData{
		Message:   message,
		Action:    uploadPath,
		FieldName: r.fieldName,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
