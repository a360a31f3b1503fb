package hostnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

func LoadOrCreateSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	channelType string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			return nil, err
		}
		st = statex.NewSessionState(in.SessionID, channelType, in.Now)
	}
	if st.Status.Terminal() {
		return nil, fmt.Errorf("%w: session=%s status=%s", contractx.ErrSessionEnded, in.SessionID, st.Status)
	}

	in.Session = st
	return in, nil
}
