package hostnode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

// ApplySlots walks the extracted patch in required-field order and applies
// each value through draft validation. An invalid value for the field
// currently being asked triggers a re-ask; invalid values volunteered for
// other fields are dropped. A location mention is recorded on the session
// for the weather trigger.
func ApplySlots(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	if loc := strings.TrimSpace(in.Extracted.Location); loc != "" {
		st.Location = loc
	}

	for _, field := range statex.RequiredFields {
		value, ok := in.Extracted.Slots[string(field)]
		if !ok {
			continue
		}
		if err := st.Draft.Set(field, value); err != nil {
			var ve *statex.ValidationError
			if errors.As(err, &ve) && field == in.Pending {
				in.Invalid = ve
				continue
			}
			log.Debug().Err(err).
				Str("session_id", in.SessionID).
				Str("field", string(field)).
				Msg("dropping invalid volunteered slot")
		}
	}
	return in, nil
}
