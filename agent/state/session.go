package state

import (
	"errors"
	"fmt"
	"time"
)

// DialogueStatus is the persisted status of one call session. Weather
// enrichment and the commit attempt are transient within a turn and never
// stored.
type DialogueStatus string

const (
	StatusCollecting           DialogueStatus = "collecting"
	StatusAwaitingConfirmation DialogueStatus = "awaiting_confirmation"
	StatusConfirmed            DialogueStatus = "confirmed"
	StatusCommitted            DialogueStatus = "committed"
	StatusAbandoned            DialogueStatus = "abandoned"
)

func (s DialogueStatus) Terminal() bool {
	return s == StatusCommitted || s == StatusAbandoned
}

var (
	ErrInvalidSession    = errors.New("session id is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// SessionState is the per-call source of truth: the draft plus the
// bookkeeping the policy needs across turns. Exactly one writer exists per
// session; the turn loop serializes mutation.
type SessionState struct {
	SessionID   string `json:"session_id"`
	ChannelType string `json:"channel_type,omitempty"`
	Version     int    `json:"version"`

	Status DialogueStatus `json:"status"`
	Draft  BookingDraft   `json:"draft"`

	// Location is the most recent location mention, set by the extractor.
	// Together with a present bookingDate it arms the weather lookup.
	Location string `json:"location,omitempty"`
	// WeatherDone latches after the single advisory lookup, success or not.
	WeatherDone bool `json:"weather_done,omitempty"`
	// CommitFailures counts consecutive failed persistence attempts.
	// The policy allows one re-confirmation; the second failure ends the
	// session.
	CommitFailures int `json:"commit_failures,omitempty"`

	BookingID string `json:"booking_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID, channelType string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:   sessionID,
		ChannelType: channelType,
		Version:     1,
		Status:      StatusCollecting,
		UpdatedAt:   now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// SetStatus enforces the legal status edges:
// collecting -> awaiting_confirmation -> confirmed -> committed, with
// awaiting_confirmation <-> collecting for corrections, confirmed back to
// awaiting_confirmation after a failed commit, and abandoned reachable from
// any non-terminal status.
func (s *SessionState) SetStatus(next DialogueStatus) error {
	if s.Status == next {
		return nil
	}
	if s.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	if next == StatusAbandoned {
		s.Status = next
		return nil
	}
	ok := false
	switch s.Status {
	case StatusCollecting:
		ok = next == StatusAwaitingConfirmation && s.Draft.IsComplete()
	case StatusAwaitingConfirmation:
		ok = next == StatusConfirmed || next == StatusCollecting
	case StatusConfirmed:
		ok = next == StatusCommitted || next == StatusAwaitingConfirmation
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	s.Status = next
	return nil
}

func (s *SessionState) Validate() error {
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	switch s.Status {
	case StatusCollecting, StatusAbandoned:
	case StatusAwaitingConfirmation, StatusConfirmed, StatusCommitted:
		if !s.Draft.IsComplete() {
			return fmt.Errorf("status %s requires a complete draft", s.Status)
		}
	default:
		return fmt.Errorf("unknown status %q", s.Status)
	}
	if s.Status == StatusCommitted && s.BookingID == "" {
		return errors.New("committed session must carry a booking id")
	}
	return nil
}
