package contract

import (
	"context"

	statex "github.com/vaiulabs/bistro-host/agent/state"
)

type SlotExtractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error)
}

type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (ClassifyResponse, error)
}

type ReplyComposer interface {
	Compose(ctx context.Context, req ComposeRequest) (string, error)
}

type Registry interface {
	Extractor() SlotExtractor
	Classifier() Classifier
	Composer() ReplyComposer
}

// AdvisoryUnavailable is the degraded weather result. The dialogue
// continues without a seating suggestion when it comes back.
const AdvisoryUnavailable = "Weather unavailable."

// WeatherAdvisory never fails outward: any lookup problem degrades to
// AdvisoryUnavailable so the dialogue continues unaffected.
type WeatherAdvisory interface {
	Lookup(ctx context.Context, location string) string
}

// BookingPersister makes exactly one persistence attempt per call.
// Retry policy lives in the dialogue policy, not here.
type BookingPersister interface {
	Create(ctx context.Context, draft statex.BookingDraft) (string, error)
}
