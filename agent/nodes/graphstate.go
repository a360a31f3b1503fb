package hostnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

var (
	ErrInvalidUtterance = errors.New("utterance is empty")
	ErrInvalidSession   = errors.New("session id is empty")
)

// Reply intents. The composer uses them to pick a register; the recap and
// terminal messages are never rewritten.
const (
	IntentAsk          = "ask"
	IntentReask        = "reask"
	IntentRecap        = "recap"
	IntentBooked       = "booked"
	IntentRetryCommit  = "retry_commit"
	IntentCommitFailed = "commit_failed"
	IntentClarify      = "clarify"
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply  string
	Status statex.DialogueStatus
}

// GraphState is threaded through one turn of the pipeline.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.SessionState

	// Collecting path scratch.
	Pending       statex.Field
	Extracted     contractx.ExtractResponse
	ExtractFailed bool
	Invalid       *statex.ValidationError

	// Reply under construction.
	Intent   string
	Canned   string
	Verbatim bool
	Reply    string
}

func ValidateTurn(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidUtterance
	}
	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
