package http_handler

import (
	"context"
	"errors"

	"github.com/anthanhphan/go-image-upload/internal/uploader/config"
	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
	"github.com/anthanhphan/go-image-upload/internal/uploader/port"
	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	MessageNoFile  = "No file uploaded"
	MessageSuccess = "File uploaded successfully: "

	messageUnsupported = "Only image files are allowed!"
	messageTooLarge    = "File too large"
	messageFailed      = "Upload failed"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	service  port.UploadService
	renderer *FormRenderer
}

func NewServer(cfg *config.Config, service port.UploadService) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		renderer: NewFormRenderer(cfg.Upload.FieldName),
	}

	s.app = fiber.New(fiber.Config{
		BodyLimit:             cfg.BodyLimit(),
		StreamRequestBody:     true,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	// Middleware
	s.app.Use(recover.New())
	s.app.Use(fiberlogger.New())

	// Routes
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.handleForm)
	s.app.Post(uploadPath, s.uploadMiddleware, s.handleUpload)
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleForm(c *fiber.Ctx) error {
	return s.render(c, "")
}

// handleUpload reports the outcome left behind by uploadMiddleware.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	record, _ := c.Locals(localUploadedFile).(*domain.UploadedFile)
	if record == nil {
		uploadErr, _ := c.Locals(localUploadError).(error)
		return s.render(c, s.failureMessage(uploadErr))
	}

	return s.render(c, MessageSuccess+record.StoredName)
}

// failureMessage collapses every rejection cause into one message unless
// detailed errors are enabled.
func (s *Server) failureMessage(err error) string {
	if !s.cfg.Upload.DetailedErrors || err == nil {
		return MessageNoFile
	}

	switch {
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return messageUnsupported
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return messageTooLarge
	case errors.Is(err, domain.ErrStorage):
		return messageFailed
	default:
		return MessageNoFile
	}
}

func (s *Server) render(c *fiber.Ctx, message string) error {
	page, err := s.renderer.Render(message)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(fiber.StatusOK).Send(page)
}

// handleError logs failures that escaped the handlers before fiber's default reply.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	sdklogger.Errorw("Request failed", "path", c.Path(), "error", err.Error())
	return fiber.DefaultErrorHandler(c, err)
}
