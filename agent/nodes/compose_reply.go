package hostnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
)

// ComposeReply lets the composer rephrase the canned line. The recap and
// terminal messages are verbatim; composer failure falls back to the
// canned text so wording problems never break a turn.
func ComposeReply(
	ctx context.Context,
	in *GraphState,
	composer contractx.ReplyComposer,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Canned) == "" {
		return nil, fmt.Errorf("%w: turn produced no reply", contractx.ErrValidation)
	}

	if in.Verbatim || composer == nil {
		in.Reply = in.Canned
		return in, nil
	}

	msg, err := composer.Compose(ctx, contractx.ComposeRequest{
		Intent:       in.Intent,
		CannedText:   in.Canned,
		DraftSummary: in.Session.Draft.Summary(),
	})
	if err != nil || strings.TrimSpace(msg) == "" {
		log.Debug().Err(err).Str("session_id", in.SessionID).Msg("composer unavailable, using canned reply")
		in.Reply = in.Canned
		return in, nil
	}

	in.Reply = strings.TrimSpace(msg)
	return in, nil
}
