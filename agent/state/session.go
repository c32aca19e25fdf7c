package state

import (
	"errors"
	"fmt"
	"time"

	recordx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/record"
)

// SessionIDLayout formats the session identifier and the persisted document key.
const SessionIDLayout = "20060102_150405"

type Status string

const (
	StatusOpen      Status = "open"
	StatusFinalized Status = "finalized"
)

type Event string

const (
	EventFinalize Event = "finalize"
)

var (
	ErrNilSession        = errors.New("session is nil")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Transition is the session lifecycle: open --(finalize)--> finalized. Finalized is terminal.
func Transition(current Status, event Event) (Status, error) {
	switch current {
	case StatusOpen:
		switch event {
		case EventFinalize:
			return StatusFinalized, nil
		}
	case StatusFinalized:
	default:
		return current, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, current)
	}
	return current, fmt.Errorf("%w: %s --(%s)--> ?", ErrInvalidTransition, current, event)
}

// Session is owned by exactly one conversation and is never persisted itself.
// Tool calls against one session are applied sequentially by the orchestrator.
type Session struct {
	ID        string
	StartedAt time.Time
	Record    *recordx.Record

	Status      Status
	FinalizedAt time.Time
	Location    string // where the finalized record was persisted
}

func NewSession(schema *recordx.Schema, now time.Time) *Session {
	return &Session{
		ID:        now.Format(SessionIDLayout),
		StartedAt: now,
		Record:    schema.New(),
		Status:    StatusOpen,
	}
}

func (s *Session) Finalized() bool {
	return s != nil && s.Status == StatusFinalized
}

func (s *Session) MarkFinalized(location string, now time.Time) error {
	if s == nil {
		return ErrNilSession
	}
	next, err := Transition(s.Status, EventFinalize)
	if err != nil {
		return err
	}
	s.Status = next
	s.FinalizedAt = now
	s.Location = location
	return nil
}
