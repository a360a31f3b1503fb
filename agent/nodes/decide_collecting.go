package hostnode

import (
	"fmt"

	confirmx "github.com/vaiulabs/bistro-host/agent/confirm"
	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	policyx "github.com/vaiulabs/bistro-host/agent/policy"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

// DecideCollecting picks the one outward action for a collecting turn:
// re-ask the rejected field, ask the first missing field, or, once the
// draft is complete, emit the recap and move to awaiting confirmation.
func DecideCollecting(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session

	if in.Invalid != nil {
		question, _ := policyx.QuestionFor(in.Invalid.Field)
		in.Intent = IntentReask
		in.Canned = fmt.Sprintf("Sorry, %s. %s", in.Invalid.Reason, question)
		return in, nil
	}

	if field, question, ok := policyx.NextAsk(st.Draft); ok {
		in.Pending = field
		in.Intent = IntentAsk
		in.Canned = question
		if in.ExtractFailed {
			in.Intent = IntentReask
			in.Canned = "Sorry, I didn't catch that. " + question
		}
		return in, nil
	}

	if err := st.SetStatus(statex.StatusAwaitingConfirmation); err != nil {
		return nil, err
	}
	in.Intent = IntentRecap
	in.Canned = confirmx.Recap(st.Draft)
	in.Verbatim = true
	return in, nil
}
