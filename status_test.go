package certpress

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPhase_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhaseGeneratingCertificates, "Generating certificates..."},
		{PhaseGeneratingDocument, "Generating document..."},
		{PhaseGeneratingPDF, "Generating PDF file..."},
		{PhaseCompleted, "Completed"},
		{PhaseFailed, "Error generating certificates"},
		{Phase("custom"), "custom"},
	}

	for _, tt := range tests {
		if got := tt.phase.Message(); got != tt.want {
			t.Errorf("%s.Message() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestJobState - Lifecycle
// ---------------------------------------------------------------------------

func TestJobState_Lifecycle(t *testing.T) {
	t.Parallel()

	s := NewJobState()
	if s.Phase() != PhaseIdle || s.Snapshot().RunID != "" {
		t.Fatalf("new state = %+v, want idle without run", s.Snapshot())
	}

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { tick = tick.Add(time.Second); return tick }

	id := s.Begin()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Begin() = %q, not a UUID: %v", id, err)
	}
	if s.Phase() != PhaseGeneratingCertificates {
		t.Errorf("Phase() after Begin = %s", s.Phase())
	}

	before := s.Snapshot().UpdatedAt
	s.Set(PhaseGeneratingDocument)
	snap := s.Snapshot()
	if snap.Phase != PhaseGeneratingDocument || snap.RunID != id {
		t.Errorf("Snapshot() = %+v, want document phase of run %s", snap, id)
	}
	if !snap.UpdatedAt.After(before) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", before, snap.UpdatedAt)
	}

	next := s.Begin()
	if next == id {
		t.Error("Begin() reused the previous run ID")
	}
}

func TestJobState_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	s := NewJobState()
	phases := []Phase{PhaseGeneratingDocument, PhaseGeneratingPDF, PhaseCompleted, PhaseFailed}
	valid := map[Phase]bool{PhaseIdle: true, PhaseGeneratingCertificates: true}
	for _, p := range phases {
		valid[p] = true
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Begin()
			for _, p := range phases {
				s.Set(p)
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if snap := s.Snapshot(); !valid[snap.Phase] {
					t.Errorf("observed invalid phase %q", snap.Phase)
					return
				}
			}
		}()
	}
	wg.Wait()
}
