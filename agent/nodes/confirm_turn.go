package hostnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	confirmx "github.com/vaiulabs/bistro-host/agent/confirm"
	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	policyx "github.com/vaiulabs/bistro-host/agent/policy"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

// HandleConfirmation processes a turn while awaiting confirmation.
// Affirmative triggers the single commit attempt for this confirmation;
// negative with a named field returns to collecting at that field;
// anything ambiguous re-emits the recap verbatim.
func HandleConfirmation(
	ctx context.Context,
	in *GraphState,
	classifier contractx.Classifier,
	persister contractx.BookingPersister,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	recap := confirmx.Recap(st.Draft)

	resp, err := classifier.Classify(ctx, contractx.ClassifyRequest{
		Utterance: in.Text,
		Recap:     recap,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("confirmation classify failed, treating as ambiguous")
		resp = contractx.ClassifyResponse{Verdict: contractx.VerdictAmbiguous}
	}

	switch resp.Verdict {
	case contractx.VerdictAffirmative:
		return commitBooking(ctx, in, persister)

	case contractx.VerdictNegative:
		if question, ok := policyx.QuestionFor(resp.CorrectedField); ok {
			if err := st.SetStatus(statex.StatusCollecting); err != nil {
				return nil, err
			}
			st.Draft.Clear(resp.CorrectedField)
			in.Pending = resp.CorrectedField
			in.Intent = IntentAsk
			in.Canned = "No problem, let's fix that. " + question
			return in, nil
		}
		in.Intent = IntentClarify
		in.Canned = "Which detail should I change?"
		return in, nil

	default:
		in.Intent = IntentRecap
		in.Canned = recap
		in.Verbatim = true
		return in, nil
	}
}

func commitBooking(
	ctx context.Context,
	in *GraphState,
	persister contractx.BookingPersister,
) (*GraphState, error) {
	st := in.Session
	if err := st.SetStatus(statex.StatusConfirmed); err != nil {
		return nil, err
	}

	id, err := persister.Create(ctx, st.Draft)

	// A persistence result that resolves after session cancellation is
	// discarded, never applied to the draft.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil {
		st.CommitFailures++
		log.Error().Err(err).
			Str("session_id", in.SessionID).
			Int("commit_failures", st.CommitFailures).
			Msg("booking persistence failed")

		if st.CommitFailures >= 2 {
			if err := st.SetStatus(statex.StatusAbandoned); err != nil {
				return nil, err
			}
			in.Intent = IntentCommitFailed
			in.Canned = "I'm sorry, I couldn't save your booking. Please call us back and we'll sort it out."
			in.Verbatim = true
			return in, nil
		}

		if err := st.SetStatus(statex.StatusAwaitingConfirmation); err != nil {
			return nil, err
		}
		in.Intent = IntentRetryCommit
		in.Canned = "I couldn't save your booking just now. Shall I try once more?"
		return in, nil
	}

	st.CommitFailures = 0
	st.BookingID = id
	if err := st.SetStatus(statex.StatusCommitted); err != nil {
		return nil, err
	}
	in.Intent = IntentBooked
	in.Canned = "Booked! See you then."
	in.Verbatim = true
	return in, nil
}
