package http_handler

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
	"github.com/anthanhphan/go-image-upload/internal/uploader/port"
	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
)

const (
	localUploadedFile = "uploaded_file"
	localUploadError  = "upload_error"
)

// uploadMiddleware streams the single file field to the upload service and
// leaves either the record or the rejection cause in request locals.
// Rejections never abort the request.
func (s *Server) uploadMiddleware(c *fiber.Ctx) error {
	record, err := s.receiveFile(c)
	if err != nil {
		sdklogger.Warnw("Upload not accepted", "error", err.Error())
		c.Locals(localUploadError, err)
	} else {
		c.Locals(localUploadedFile, record)
	}
	return c.Next()
}

func (s *Server) receiveFile(c *fiber.Ctx) (*domain.UploadedFile, error) {
	mediaType, params, err := mime.ParseMediaType(c.Get(fiber.HeaderContentType))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotMultipart, err)
	}
	if mediaType != fiber.MIMEMultipartForm {
		return nil, domain.ErrNotMultipart
	}
	boundary, ok := params["boundary"]
	if !ok {
		return nil, fmt.Errorf("%w: missing boundary", domain.ErrNotMultipart)
	}

	bodyLimit := int64(s.cfg.BodyLimit())
	if cl := c.Request().Header.ContentLength(); cl > 0 && int64(cl) > bodyLimit {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds %d", domain.ErrPayloadTooLarge, cl, bodyLimit)
	}

	// Use raw request body stream
	bodyStream := c.Context().RequestBodyStream()
	if bodyStream == nil {
		bodyStream = bytes.NewReader(c.Body())
	}
	body := newBodyLimitReader(bodyStream, bodyLimit)
	mr := multipart.NewReader(body, boundary)

	record, err := s.scanParts(c, mr)
	if body.exceeded {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrPayloadTooLarge, bodyLimit)
	}
	return record, err
}

// scanParts hands the first file under the configured field to the service.
func (s *Server) scanParts(c *fiber.Ctx, mr *multipart.Reader) (*domain.UploadedFile, error) {
	fieldName := s.cfg.Upload.FieldName
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, domain.ErrNoFile
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read multipart: %v", domain.ErrNoFile, err)
		}

		if part.FormName() != fieldName || part.FileName() == "" {
			// Text fields and files under other names are not uploads.
			_ = part.Close()
			continue
		}

		record, err := s.service.Accept(c.UserContext(), port.IncomingFile{
			FileName: part.FileName(),
			MimeType: part.Header.Get(fiber.HeaderContentType),
			Reader:   part,
		})
		_ = part.Close()
		return record, err
	}
}

// bodyLimitReader caps the whole request body, chunked bodies included.
type bodyLimitReader struct {
	r        io.Reader
	n        int64
	exceeded bool
}

func newBodyLimitReader(r io.Reader, limit int64) *bodyLimitReader {
	return &bodyLimitReader{r: r, n: limit}
}

func (b *bodyLimitReader) Read(p []byte) (int, error) {
	if b.exceeded {
		return 0, domain.ErrPayloadTooLarge
	}
	if int64(len(p)) > b.n+1 {
		p = p[:b.n+1]
	}
	n, err := b.r.Read(p)
	b.n -= int64(n)
	if b.n < 0 {
		b.exceeded = true
		return 0, domain.ErrPayloadTooLarge
	}
	return n, err
}
