package hostnode

import (
	"context"
	"fmt"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

// SaveSession persists the turn's outcome. Terminal sessions are removed:
// the draft is discarded on abandonment and, once committed, the durable
// record lives in the booking backend, not here.
func SaveSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if in.Session.Status.Terminal() {
		if err := store.Delete(ctx, in.SessionID); err != nil {
			return nil, err
		}
		return in, nil
	}

	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}
