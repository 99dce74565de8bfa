package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/alnah/go-certpress"
)

// statusResponse is the GET /status body.
type statusResponse struct {
	Message   string    `json:"message"`
	Phase     string    `json:"phase"`
	RunID     string    `json:"run_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// handleGenerate runs a job from the two uploaded spreadsheets and returns
// the PDF as an attachment. The job runs on a fresh context so a client
// that disconnects does not abort it.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	roster, err := formUpload(c, FieldRoster)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(MsgNoFilePart)
	}
	results, err := formUpload(c, FieldResults)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(MsgNoFilePart)
	}

	if !s.jobs.TryLock() {
		return conflict(c)
	}
	defer s.jobs.Unlock()

	res, err := s.gen.Generate(context.Background(), certpress.Input{Roster: roster, Results: results})
	if err != nil {
		if errors.Is(err, certpress.ErrMissingInput) {
			return c.Status(fiber.StatusBadRequest).SendString(MsgNoFilePart)
		}
		s.logger.Printf("generate: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString(MsgGenerateFailed)
	}

	pdf, err := os.ReadFile(res.PDFPath) // #nosec G304 -- path produced by the generator
	if err != nil {
		s.logger.Printf("generate: reading %s: %v", res.PDFPath, err)
		return c.Status(fiber.StatusInternalServerError).SendString(MsgGenerateFailed)
	}

	c.Attachment(DownloadName)
	return c.Status(fiber.StatusOK).Send(pdf)
}

// handleStatus reports the latest job phase.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	snap := s.gen.State().Snapshot()
	return c.JSON(statusResponse{
		Message:   snap.Phase.Message(),
		Phase:     string(snap.Phase),
		RunID:     snap.RunID,
		UpdatedAt: snap.UpdatedAt,
	})
}

// handleDelete clears the workspace unless a job is running.
func (s *Server) handleDelete(c *fiber.Ctx) error {
	if !s.jobs.TryLock() {
		return conflict(c)
	}
	defer s.jobs.Unlock()

	if err := s.gen.Reset(); err != nil {
		s.logger.Printf("delete: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString(MsgDeleteFailed)
	}
	return c.SendString(MsgDeleted)
}

// conflict answers a request that would race the running job.
func conflict(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).SendString(certpress.ErrJobRunning.Error())
}

func handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// formUpload reads one multipart file field into memory.
func formUpload(c *fiber.Ctx, field string) (*certpress.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", field, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	return &certpress.Upload{Name: fh.Filename, Data: data}, nil
}
