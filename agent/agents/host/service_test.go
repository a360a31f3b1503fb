package host

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

// scriptedExtractor pops one response per turn.
type scriptedExtractor struct {
	script []contractx.ExtractResponse
	errs   []error
}

func (s *scriptedExtractor) Extract(_ context.Context, _ contractx.ExtractRequest) (contractx.ExtractResponse, error) {
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return contractx.ExtractResponse{}, err
		}
	}
	if len(s.script) == 0 {
		return contractx.ExtractResponse{}, nil
	}
	resp := s.script[0]
	s.script = s.script[1:]
	return resp, nil
}

type scriptedClassifier struct {
	script []contractx.ClassifyResponse
}

func (s *scriptedClassifier) Classify(_ context.Context, _ contractx.ClassifyRequest) (contractx.ClassifyResponse, error) {
	if len(s.script) == 0 {
		return contractx.ClassifyResponse{Verdict: contractx.VerdictAmbiguous}, nil
	}
	resp := s.script[0]
	s.script = s.script[1:]
	return resp, nil
}

// silentComposer always defers to the canned text, keeping replies
// deterministic for assertions.
type silentComposer struct{}

func (silentComposer) Compose(_ context.Context, _ contractx.ComposeRequest) (string, error) {
	return "", nil
}

type fakeRegistry struct {
	extractor  contractx.SlotExtractor
	classifier contractx.Classifier
}

func (f *fakeRegistry) Extractor() contractx.SlotExtractor { return f.extractor }
func (f *fakeRegistry) Classifier() contractx.Classifier   { return f.classifier }
func (f *fakeRegistry) Composer() contractx.ReplyComposer  { return silentComposer{} }

type fakeWeather struct {
	advisory string
	calls    int
}

func (f *fakeWeather) Lookup(_ context.Context, _ string) string {
	f.calls++
	return f.advisory
}

type fakePersister struct {
	id     string
	errs   []error
	drafts []statex.BookingDraft
}

func (f *fakePersister) Create(_ context.Context, draft statex.BookingDraft) (string, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	f.drafts = append(f.drafts, draft)
	return f.id, nil
}

func slots(pairs map[string]any) contractx.ExtractResponse {
	return contractx.ExtractResponse{Slots: pairs}
}

func newTestHost(t *testing.T, store statex.Store, registry contractx.Registry, weather contractx.WeatherAdvisory, persister contractx.BookingPersister) *Host {
	t.Helper()
	h, err := New(store, registry, weather, persister, Config{ChannelType: "voice"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

func TestHappyPathBooking(t *testing.T) {
	t.Parallel()

	extractor := &scriptedExtractor{script: []contractx.ExtractResponse{
		{Slots: map[string]any{"customerName": "Alice"}},
		{
			Slots:    map[string]any{"bookingDate": "next Friday", "numberOfGuests": 4},
			Location: "Copenhagen",
		},
		slots(map[string]any{"bookingTime": "7pm"}),
		slots(map[string]any{"cuisinePreference": "italian"}),
		slots(map[string]any{"specialRequests": "window seat"}),
	}}
	classifier := &scriptedClassifier{script: []contractx.ClassifyResponse{
		{Verdict: contractx.VerdictAffirmative},
	}}
	weather := &fakeWeather{advisory: "Weather in Copenhagen: light rain, 12.0°C."}
	persister := &fakePersister{id: "b-1"}
	store := statex.NewMemoryStore()

	h := newTestHost(t, store, &fakeRegistry{extractor: extractor, classifier: classifier}, weather, persister)
	ctx := context.Background()

	turns := []struct {
		text      string
		wantIn    string
		wantState statex.DialogueStatus
	}{
		{"hi, I'm Alice", "date", statex.StatusCollecting},
		{"next Friday in Copenhagen, four of us", "time", statex.StatusCollecting},
		{"7pm", "cuisine", statex.StatusCollecting},
		{"italian", "special requests", statex.StatusCollecting},
		{"a window seat please", "Is this correct?", statex.StatusAwaitingConfirmation},
		{"yes", "Booked", statex.StatusCommitted},
	}
	for i, turn := range turns {
		reply, status, err := h.HandleTurn(ctx, "call-1", turn.text)
		if err != nil {
			t.Fatalf("turn %d error = %v", i, err)
		}
		if !strings.Contains(reply, turn.wantIn) {
			t.Fatalf("turn %d reply = %q, want substring %q", i, reply, turn.wantIn)
		}
		if status != turn.wantState {
			t.Fatalf("turn %d status = %s, want %s", i, status, turn.wantState)
		}
	}

	if weather.calls != 1 {
		t.Errorf("weather called %d times, want 1", weather.calls)
	}
	if len(persister.drafts) != 1 {
		t.Fatalf("persisted %d bookings, want 1", len(persister.drafts))
	}
	booked := persister.drafts[0]
	if booked.SeatingPreference != "Indoor" {
		t.Errorf("seating = %q, want Indoor for rain", booked.SeatingPreference)
	}
	if booked.WeatherInfo == "" {
		t.Error("weather advisory missing from booked draft")
	}

	// Terminal sessions leave nothing in the store.
	if _, err := store.Load(ctx, "call-1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Errorf("Load() after commit error = %v, want ErrStateNotFound", err)
	}

	// And a later turn on the same id starts a fresh session.
	reply, status, err := h.HandleTurn(ctx, "call-1", "hello again")
	if err != nil {
		t.Fatalf("post-commit turn error = %v", err)
	}
	if status != statex.StatusCollecting {
		t.Errorf("post-commit status = %s, want collecting", status)
	}
	if !strings.Contains(reply, "name") {
		t.Errorf("post-commit reply = %q, want the name question", reply)
	}
}

func TestInvalidGuestCountReasks(t *testing.T) {
	t.Parallel()

	extractor := &scriptedExtractor{script: []contractx.ExtractResponse{
		slots(map[string]any{
			"customerName": "Bob",
			"bookingDate":  "tomorrow",
			"bookingTime":  "6pm",
		}),
		slots(map[string]any{"numberOfGuests": 0}),
		slots(map[string]any{"numberOfGuests": 2}),
	}}
	store := statex.NewMemoryStore()
	h := newTestHost(t, store, &fakeRegistry{extractor: extractor, classifier: &scriptedClassifier{}}, &fakeWeather{}, &fakePersister{id: "b-2"})
	ctx := context.Background()

	if _, _, err := h.HandleTurn(ctx, "call-2", "Bob, tomorrow at 6pm"); err != nil {
		t.Fatal(err)
	}

	reply, status, err := h.HandleTurn(ctx, "call-2", "zero people")
	if err != nil {
		t.Fatalf("invalid turn error = %v", err)
	}
	if status != statex.StatusCollecting {
		t.Errorf("status = %s, want collecting", status)
	}
	if !strings.Contains(reply, "Sorry") || !strings.Contains(reply, "guests") {
		t.Errorf("reply = %q, want a guests re-ask", reply)
	}

	st, err := store.Load(ctx, "call-2")
	if err != nil {
		t.Fatal(err)
	}
	if st.Draft.Has(statex.FieldNumberOfGuests) {
		t.Error("invalid guest count reached the draft")
	}

	reply, _, err = h.HandleTurn(ctx, "call-2", "two people")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "cuisine") {
		t.Errorf("reply = %q, want the next question", reply)
	}
}

func TestExtractorFailureReasksSameField(t *testing.T) {
	t.Parallel()

	extractor := &scriptedExtractor{
		errs: []error{errors.New("model timeout")},
		script: []contractx.ExtractResponse{
			slots(map[string]any{"customerName": "Carol"}),
		},
	}
	store := statex.NewMemoryStore()
	h := newTestHost(t, store, &fakeRegistry{extractor: extractor, classifier: &scriptedClassifier{}}, &fakeWeather{}, &fakePersister{})
	ctx := context.Background()

	reply, status, err := h.HandleTurn(ctx, "call-3", "mumble")
	if err != nil {
		t.Fatalf("degraded turn error = %v", err)
	}
	if status != statex.StatusCollecting {
		t.Errorf("status = %s, want collecting", status)
	}
	if !strings.Contains(reply, "didn't catch that") || !strings.Contains(reply, "name") {
		t.Errorf("reply = %q, want apology plus the name question", reply)
	}

	// The next turn recovers normally.
	reply, _, err = h.HandleTurn(ctx, "call-3", "Carol")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "date") {
		t.Errorf("reply = %q, want the date question", reply)
	}
}

func completeInOneTurn() []contractx.ExtractResponse {
	return []contractx.ExtractResponse{slots(map[string]any{
		"customerName":      "Dave",
		"bookingDate":       "June 12",
		"bookingTime":       "8pm",
		"numberOfGuests":    2,
		"cuisinePreference": "thai",
		"specialRequests":   "anniversary",
	})}
}

func TestCommitFailureThenRetrySucceeds(t *testing.T) {
	t.Parallel()

	classifier := &scriptedClassifier{script: []contractx.ClassifyResponse{
		{Verdict: contractx.VerdictAffirmative},
		{Verdict: contractx.VerdictAffirmative},
	}}
	persister := &fakePersister{id: "b-3", errs: []error{errors.New("backend down")}}
	store := statex.NewMemoryStore()
	h := newTestHost(t, store, &fakeRegistry{extractor: &scriptedExtractor{script: completeInOneTurn()}, classifier: classifier}, &fakeWeather{}, persister)
	ctx := context.Background()

	if _, status, err := h.HandleTurn(ctx, "call-4", "everything at once"); err != nil || status != statex.StatusAwaitingConfirmation {
		t.Fatalf("setup turn status = %s err = %v", status, err)
	}

	reply, status, err := h.HandleTurn(ctx, "call-4", "yes")
	if err != nil {
		t.Fatalf("failed commit turn error = %v", err)
	}
	if status != statex.StatusAwaitingConfirmation {
		t.Errorf("status = %s, want awaiting_confirmation", status)
	}
	if !strings.Contains(reply, "try once more") {
		t.Errorf("reply = %q, want retry offer", reply)
	}

	reply, status, err = h.HandleTurn(ctx, "call-4", "yes please")
	if err != nil {
		t.Fatalf("retry turn error = %v", err)
	}
	if status != statex.StatusCommitted {
		t.Errorf("status = %s, want committed", status)
	}
	if !strings.Contains(reply, "Booked") {
		t.Errorf("reply = %q", reply)
	}
	if len(persister.drafts) != 1 {
		t.Errorf("persisted %d bookings, want 1", len(persister.drafts))
	}
}

func TestSecondCommitFailureAbandonsSession(t *testing.T) {
	t.Parallel()

	classifier := &scriptedClassifier{script: []contractx.ClassifyResponse{
		{Verdict: contractx.VerdictAffirmative},
		{Verdict: contractx.VerdictAffirmative},
	}}
	persister := &fakePersister{errs: []error{
		errors.New("backend down"),
		errors.New("backend still down"),
	}}
	store := statex.NewMemoryStore()
	h := newTestHost(t, store, &fakeRegistry{extractor: &scriptedExtractor{script: completeInOneTurn()}, classifier: classifier}, &fakeWeather{}, persister)
	ctx := context.Background()

	if _, _, err := h.HandleTurn(ctx, "call-5", "everything at once"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := h.HandleTurn(ctx, "call-5", "yes"); err != nil {
		t.Fatal(err)
	}

	reply, status, err := h.HandleTurn(ctx, "call-5", "yes try again")
	if err != nil {
		t.Fatalf("second failure turn error = %v", err)
	}
	if status != statex.StatusAbandoned {
		t.Errorf("status = %s, want abandoned", status)
	}
	if !strings.Contains(reply, "call us back") {
		t.Errorf("reply = %q, want the give-up message", reply)
	}
	if len(persister.drafts) != 0 {
		t.Errorf("persisted %d bookings, want 0", len(persister.drafts))
	}
	if _, err := store.Load(ctx, "call-5"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Errorf("Load() after abandonment error = %v, want ErrStateNotFound", err)
	}
}

func TestAmbiguousConfirmationRepeatsRecapVerbatim(t *testing.T) {
	t.Parallel()

	classifier := &scriptedClassifier{script: []contractx.ClassifyResponse{
		{Verdict: contractx.VerdictAmbiguous},
		{Verdict: contractx.VerdictAmbiguous},
	}}
	store := statex.NewMemoryStore()
	h := newTestHost(t, store, &fakeRegistry{extractor: &scriptedExtractor{script: completeInOneTurn()}, classifier: classifier}, &fakeWeather{}, &fakePersister{})
	ctx := context.Background()

	recap, _, err := h.HandleTurn(ctx, "call-6", "everything at once")
	if err != nil {
		t.Fatal(err)
	}

	first, status, err := h.HandleTurn(ctx, "call-6", "hmm what")
	if err != nil {
		t.Fatal(err)
	}
	if status != statex.StatusAwaitingConfirmation {
		t.Errorf("status = %s, want awaiting_confirmation", status)
	}
	if first != recap {
		t.Errorf("ambiguous reply = %q, want the recap %q", first, recap)
	}

	second, _, err := h.HandleTurn(ctx, "call-6", "sorry?")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("recap drifted between ambiguous turns: %q vs %q", first, second)
	}
}

func TestRejectedRecapCorrectsOneField(t *testing.T) {
	t.Parallel()

	extractor := &scriptedExtractor{script: append(completeInOneTurn(),
		slots(map[string]any{"bookingTime": "9pm"}),
	)}
	classifier := &scriptedClassifier{script: []contractx.ClassifyResponse{
		{Verdict: contractx.VerdictNegative, CorrectedField: statex.FieldBookingTime},
		{Verdict: contractx.VerdictAffirmative},
	}}
	persister := &fakePersister{id: "b-6"}
	store := statex.NewMemoryStore()
	h := newTestHost(t, store, &fakeRegistry{extractor: extractor, classifier: classifier}, &fakeWeather{}, persister)
	ctx := context.Background()

	if _, _, err := h.HandleTurn(ctx, "call-7", "everything at once"); err != nil {
		t.Fatal(err)
	}

	reply, status, err := h.HandleTurn(ctx, "call-7", "no, the time is wrong")
	if err != nil {
		t.Fatal(err)
	}
	if status != statex.StatusCollecting {
		t.Errorf("status = %s, want collecting", status)
	}
	if !strings.Contains(reply, "What time") {
		t.Errorf("reply = %q, want the time question", reply)
	}

	reply, status, err = h.HandleTurn(ctx, "call-7", "make it 9pm")
	if err != nil {
		t.Fatal(err)
	}
	if status != statex.StatusAwaitingConfirmation {
		t.Errorf("status = %s, want awaiting_confirmation", status)
	}
	if !strings.Contains(reply, "9pm") {
		t.Errorf("recap = %q, want the corrected time", reply)
	}

	if _, status, err = h.HandleTurn(ctx, "call-7", "yes"); err != nil || status != statex.StatusCommitted {
		t.Fatalf("final turn status = %s err = %v", status, err)
	}
	if len(persister.drafts) != 1 || persister.drafts[0].BookingTime != "9pm" {
		t.Errorf("persisted = %+v, want one booking at 9pm", persister.drafts)
	}
}

func TestHandleTurnRejectsBlankInput(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	h := newTestHost(t, store, &fakeRegistry{extractor: &scriptedExtractor{}, classifier: &scriptedClassifier{}}, &fakeWeather{}, &fakePersister{})
	ctx := context.Background()

	if _, _, err := h.HandleTurn(ctx, "", "hi"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("blank session error = %v, want ErrInvalidSession", err)
	}
	if _, _, err := h.HandleTurn(ctx, "call-8", "   "); !errors.Is(err, ErrInvalidUtterance) {
		t.Errorf("blank utterance error = %v, want ErrInvalidUtterance", err)
	}
}

func TestEndSessionDiscardsDraft(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	persister := &fakePersister{}
	h := newTestHost(t, store, &fakeRegistry{extractor: &scriptedExtractor{script: []contractx.ExtractResponse{
		slots(map[string]any{"customerName": "Eve"}),
	}}, classifier: &scriptedClassifier{}}, &fakeWeather{}, persister)
	ctx := context.Background()

	if _, _, err := h.HandleTurn(ctx, "call-9", "Eve here"); err != nil {
		t.Fatal(err)
	}

	if err := h.EndSession(ctx, "call-9"); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if _, err := store.Load(ctx, "call-9"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Errorf("Load() after hangup error = %v, want ErrStateNotFound", err)
	}
	if len(persister.drafts) != 0 {
		t.Errorf("persisted %d bookings on hangup, want 0", len(persister.drafts))
	}

	// Ending an unknown session is a no-op.
	if err := h.EndSession(ctx, "never-seen"); err != nil {
		t.Errorf("EndSession(unknown) error = %v", err)
	}
}
