package contract

import (
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

// ModelRole selects which LLM collaborator a chat model is built for.
type ModelRole string

const (
	RoleExtractor  ModelRole = "extractor"
	RoleClassifier ModelRole = "classifier"
	RoleComposer   ModelRole = "composer"
)

// Verdict is the three-way classification of a confirmation reply.
// Ambiguous is the safe default: it always leads to a re-ask, never to a
// silent assumption.
type Verdict string

const (
	VerdictAffirmative Verdict = "affirmative"
	VerdictNegative    Verdict = "negative"
	VerdictAmbiguous   Verdict = "ambiguous"
)

type ExtractRequest struct {
	Utterance    string         `json:"utterance"`
	PendingField statex.Field   `json:"pending_field"`
	DraftSummary map[string]any `json:"draft_summary,omitempty"`
}

// ExtractResponse carries whatever the extractor could read out of one
// utterance. Slots keys are draft field names; values are raw and still go
// through draft validation. Location is the opaque location-mention
// classifier output used by the weather enrichment trigger.
type ExtractResponse struct {
	Slots    map[string]any `json:"slots,omitempty"`
	Location string         `json:"location,omitempty"`
}

type ClassifyRequest struct {
	Utterance string `json:"utterance"`
	Recap     string `json:"recap"`
}

type ClassifyResponse struct {
	Verdict Verdict `json:"verdict"`
	// CorrectedField is set when a negative reply names the detail the
	// caller wants changed, e.g. "no, the time is wrong".
	CorrectedField statex.Field `json:"corrected_field,omitempty"`
}

// ComposeRequest asks the composer to phrase CannedText naturally. Intent
// names what kind of turn this is (ask, reask, booked, ...) so the prompt
// can pick a register; the composer never changes the facts.
type ComposeRequest struct {
	Intent       string         `json:"intent"`
	CannedText   string         `json:"canned_text"`
	DraftSummary map[string]any `json:"draft_summary,omitempty"`
}
