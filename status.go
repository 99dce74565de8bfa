package certpress

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Phase is the stage a generation job is in.
type Phase string

// Phases in the order a successful job passes through them.
const (
	PhaseIdle                   Phase = "idle"
	PhaseGeneratingCertificates Phase = "generating_certificates"
	PhaseGeneratingDocument     Phase = "generating_document"
	PhaseGeneratingPDF          Phase = "generating_pdf"
	PhaseCompleted              Phase = "completed"
	PhaseFailed                 Phase = "failed"
)

// Message is the human-readable text shown to status pollers.
func (p Phase) Message() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseGeneratingCertificates:
		return "Generating certificates..."
	case PhaseGeneratingDocument:
		return "Generating document..."
	case PhaseGeneratingPDF:
		return "Generating PDF file..."
	case PhaseCompleted:
		return "Completed"
	case PhaseFailed:
		return "Error generating certificates"
	default:
		return string(p)
	}
}

// Status is an immutable snapshot of the latest job state.
type Status struct {
	Phase     Phase
	RunID     string // empty until the first job starts
	UpdatedAt time.Time
}

// JobState holds the latest Status. Writers replace the whole snapshot, so
// readers never see a phase from one run paired with another run's ID.
// Safe for concurrent use.
type JobState struct {
	cur atomic.Pointer[Status]
	now func() time.Time
}

// NewJobState returns a state in PhaseIdle.
func NewJobState() *JobState {
	s := &JobState{now: time.Now}
	s.cur.Store(&Status{Phase: PhaseIdle, UpdatedAt: s.now()})
	return s
}

// Begin starts a new run: it assigns a fresh run ID, moves to
// PhaseGeneratingCertificates and returns the ID.
func (s *JobState) Begin() string {
	id := uuid.NewString()
	s.cur.Store(&Status{Phase: PhaseGeneratingCertificates, RunID: id, UpdatedAt: s.now()})
	return id
}

// Set moves the current run to phase.
func (s *JobState) Set(phase Phase) {
	prev := s.cur.Load()
	s.cur.Store(&Status{Phase: phase, RunID: prev.RunID, UpdatedAt: s.now()})
}

// Snapshot returns the latest Status.
func (s *JobState) Snapshot() Status {
	return *s.cur.Load()
}

// Phase returns the latest phase.
func (s *JobState) Phase() Phase {
	return s.cur.Load().Phase
}
