package hostnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	policyx "github.com/vaiulabs/bistro-host/agent/policy"
)

// ExtractSlots runs the LLM slot extractor over the utterance. Extractor
// failure is degraded, not fatal: the turn falls through to a re-ask of
// the pending field.
func ExtractSlots(
	ctx context.Context,
	in *GraphState,
	extractor contractx.SlotExtractor,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if field, _, ok := policyx.NextAsk(in.Session.Draft); ok {
		in.Pending = field
	}

	resp, err := extractor.Extract(ctx, contractx.ExtractRequest{
		Utterance:    in.Text,
		PendingField: in.Pending,
		DraftSummary: in.Session.Draft.Summary(),
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("slot extraction failed, re-asking")
		in.ExtractFailed = true
		return in, nil
	}

	in.Extracted = resp
	return in, nil
}
