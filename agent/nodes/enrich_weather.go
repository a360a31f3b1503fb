package hostnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	policyx "github.com/vaiulabs/bistro-host/agent/policy"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

// EnrichWeather fires the single advisory lookup once a date and a
// location mention are both known. WeatherDone latches either way, so
// repeated location mentions never cause a second call.
func EnrichWeather(
	ctx context.Context,
	in *GraphState,
	weather contractx.WeatherAdvisory,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	if !policyx.ShouldEnrichWeather(st) {
		return in, nil
	}

	advisory := weather.Lookup(ctx, st.Location)
	st.WeatherDone = true

	if advisory == "" || advisory == contractx.AdvisoryUnavailable {
		log.Info().Str("session_id", in.SessionID).Msg("weather advisory unavailable, continuing without seating suggestion")
		return in, nil
	}

	if err := st.Draft.Set(statex.FieldWeatherInfo, advisory); err != nil {
		return nil, err
	}
	if seating := policyx.SeatingFor(advisory); seating != "" {
		if err := st.Draft.Set(statex.FieldSeatingPreference, seating); err != nil {
			return nil, err
		}
	}
	return in, nil
}
