package state

import (
	"errors"
	"testing"
	"time"

	recordx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/record"
)

func TestNewSessionStartsOpenWithEmptyRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)
	s := NewSession(recordx.OrderSchema(), now)

	if s.ID != "20261017_090503" {
		t.Fatalf("ID = %q, want %q", s.ID, "20261017_090503")
	}
	if s.Status != StatusOpen {
		t.Fatalf("Status = %s, want open", s.Status)
	}
	if s.Finalized() {
		t.Fatal("new session must not be finalized")
	}
	if len(s.Record.Missing()) != 5 {
		t.Fatalf("expected all 5 order fields missing, got %#v", s.Record.Missing())
	}
}

func TestMarkFinalizedIsTerminal(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)
	s := NewSession(recordx.LeadSchema(), now)

	if err := s.MarkFinalized("leads_db.json", now.Add(time.Minute)); err != nil {
		t.Fatalf("MarkFinalized() error = %v", err)
	}
	if !s.Finalized() {
		t.Fatal("expected finalized session")
	}
	if s.Location != "leads_db.json" {
		t.Fatalf("Location = %q", s.Location)
	}

	err := s.MarkFinalized("again", now.Add(2*time.Minute))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if s.Location != "leads_db.json" {
		t.Fatalf("second finalize must not change location, got %q", s.Location)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	t.Parallel()

	if _, err := Transition(Status("paused"), EventFinalize); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestNilSession(t *testing.T) {
	t.Parallel()

	var s *Session
	if s.Finalized() {
		t.Fatal("nil session is not finalized")
	}
	if err := s.MarkFinalized("x", time.Now()); !errors.Is(err, ErrNilSession) {
		t.Fatalf("expected ErrNilSession, got %v", err)
	}
}
