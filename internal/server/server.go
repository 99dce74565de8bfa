// Package server exposes certificate generation over HTTP with fiber.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alnah/go-certpress"
)

// Routes.
const (
	RouteGenerate = "/generate-certificates"
	RouteStatus   = "/status"
	RouteDelete   = "/delete-files"
	RouteHealth   = "/health"
)

// Multipart field names for the two spreadsheets.
const (
	FieldRoster  = "ms6File"
	FieldResults = "bmsFile"
)

// Plain-text response bodies.
const (
	MsgNoFilePart     = "No file part"
	MsgGenerateFailed = "Error generating certificates"
	MsgDeleted        = "Files deleted successfully"
	MsgDeleteFailed   = "Error deleting files"
)

// DownloadName is the attachment name of the generated PDF.
const DownloadName = "certificates.pdf"

const defaultBodyLimit = 32 << 20

// Generator is the job runner behind the routes.
type Generator interface {
	Generate(ctx context.Context, in certpress.Input) (*certpress.Result, error)
	Reset() error
	State() *certpress.JobState
}

var _ Generator = (*certpress.Generator)(nil)

// Config controls the fiber app.
type Config struct {
	CORSOrigins string      // comma-separated, "*" or empty allows all
	BodyLimit   int         // bytes, 0 = 32MB
	Logger      *log.Logger // application log, nil discards
	AccessLog   io.Writer   // request log, nil discards
}

// Server serves one Generator. Generation and deletion are serialized:
// a request arriving while either runs gets 409.
type Server struct {
	app    *fiber.App
	gen    Generator
	logger *log.Logger
	jobs   sync.Mutex
}

// New builds the fiber app and registers the routes.
func New(gen Generator, cfg Config) *Server {
	s := &Server{gen: gen, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}

	limit := cfg.BodyLimit
	if limit <= 0 {
		limit = defaultBodyLimit
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "certpress",
		BodyLimit:             limit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	access := cfg.AccessLog
	if access == nil {
		access = io.Discard
	}
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{Output: access}))
	s.app.Use(cors.New(cors.Config{AllowOrigins: corsOrigins(cfg.CORSOrigins)}))

	s.app.Post(RouteGenerate, s.handleGenerate)
	s.app.Get(RouteStatus, s.handleStatus)
	s.app.Post(RouteDelete, s.handleDelete)
	s.app.Get(RouteHealth, handleHealth)

	return s
}

// App returns the underlying fiber app, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Printf("Listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler answers with plain text and the fiber status code.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := fiber.ErrInternalServerError.Message

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).SendString(msg)
}

func corsOrigins(origins string) string {
	var parts []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			parts = append(parts, o)
		}
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, ",")
}
