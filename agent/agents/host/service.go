// Package host runs the booking dialogue: one Host per process, one
// serialized turn loop per session. The Host owns the compiled turn graph
// and the collaborator handles; all dialogue control flow lives in the
// graph nodes, never in the language model.
package host

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	hostnode "github.com/vaiulabs/bistro-host/agent/nodes"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

var (
	ErrInvalidUtterance = hostnode.ErrInvalidUtterance
	ErrInvalidSession   = hostnode.ErrInvalidSession
)

type Config struct {
	ChannelType string
}

type Host struct {
	store    statex.Store
	models   contractx.Registry
	weather  contractx.WeatherAdvisory
	bookings contractx.BookingPersister

	graphRunner compose.Runnable[hostnode.GraphInput, hostnode.GraphOutput]

	channelType string

	now func() time.Time
}

func New(
	store statex.Store,
	models contractx.Registry,
	weather contractx.WeatherAdvisory,
	bookings contractx.BookingPersister,
	cfg Config,
) (*Host, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if weather == nil {
		return nil, errors.New("weather advisory is required")
	}
	if bookings == nil {
		return nil, errors.New("booking persister is required")
	}

	channelType := strings.TrimSpace(cfg.ChannelType)
	if channelType == "" {
		channelType = "voice"
	}

	h := &Host{
		store:       store,
		models:      models,
		weather:     weather,
		bookings:    bookings,
		channelType: channelType,
		now:         time.Now,
	}

	graphRunner, err := h.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	h.graphRunner = graphRunner

	return h, nil
}

// HandleTurn processes one caller utterance and returns the host's reply.
// The runtime delivering utterances guarantees at most one in-flight turn
// per session.
func (h *Host) HandleTurn(ctx context.Context, sessionID, text string) (string, statex.DialogueStatus, error) {
	out, err := h.graphRunner.Invoke(ctx, hostnode.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", "", err
	}
	return out.Reply, out.Status, nil
}

// EndSession handles hangup or cancel: the session becomes abandoned and
// the draft is discarded without any persistence call. Ending an unknown
// or already-terminal session is a no-op.
func (h *Host) EndSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	st, err := h.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return nil
		}
		return err
	}
	if st.Status.Terminal() {
		return nil
	}

	log.Info().Str("session_id", sessionID).Str("status", string(st.Status)).Msg("session abandoned")
	return h.store.Delete(ctx, sessionID)
}
