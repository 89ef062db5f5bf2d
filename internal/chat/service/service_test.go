package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	catalogrepo "fitment_chat_backend/internal/catalog/repository"
	catalog "fitment_chat_backend/internal/catalog/service"
	"fitment_chat_backend/internal/chat/session"
	"fitment_chat_backend/platform/ai/openai"
	"fitment_chat_backend/platform/apperr"
	"fitment_chat_backend/platform/logger"
)

type stubCatalog struct {
	carModelID int64
	carErr     error
	versionID  int64
	versionErr error
	wheel      catalog.WheelSelection
	wheelErr   error
	fitment    catalog.Fitment
	fitmentErr error
	overview   catalog.FamilyOverview
	info       catalogrepo.WheelInfoRow
	infoErr    error
	families   []catalogrepo.CarFamilyRow

	resolveFamilyCalls int
	overviewCalls      int
}

func (s *stubCatalog) ResolveCarFamily(_ context.Context, _, _ string) (int64, error) {
	s.resolveFamilyCalls++
	return s.carModelID, s.carErr
}

func (s *stubCatalog) ResolveCarVersion(_ context.Context, _ int64, _ string) (int64, error) {
	return s.versionID, s.versionErr
}

func (s *stubCatalog) ResolveWheel(_ context.Context, _, _ string) (catalog.WheelSelection, error) {
	return s.wheel, s.wheelErr
}

func (s *stubCatalog) ExactFitment(_ context.Context, _, _ int64) (catalog.Fitment, error) {
	return s.fitment, s.fitmentErr
}

func (s *stubCatalog) FamilyOverview(_ context.Context, _ int64, _ bool) (catalog.FamilyOverview, error) {
	s.overviewCalls++
	return s.overview, nil
}

func (s *stubCatalog) WheelInfo(_ context.Context, _ string) (catalogrepo.WheelInfoRow, error) {
	return s.info, s.infoErr
}

func (s *stubCatalog) CarsForWheel(_ context.Context, _, _ string) ([]catalogrepo.CarFamilyRow, error) {
	return s.families, nil
}

type stubClassifier struct {
	queue  []Extraction
	err    error
	inputs []string
}

func (s *stubClassifier) Classify(_ context.Context, text string) (Extraction, error) {
	s.inputs = append(s.inputs, text)
	if s.err != nil {
		return Extraction{}, s.err
	}
	next := s.queue[0]
	if len(s.queue) > 1 {
		s.queue = s.queue[1:]
	}
	return next, nil
}

type stubGenerator struct {
	reply    string
	err      error
	messages []openai.Message
}

func (s *stubGenerator) Generate(_ context.Context, messages []openai.Message) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type chatCfg struct {
	maxExchanges int
	strict       bool
}

func (c chatCfg) GetHistoryMaxExchanges() int    { return c.maxExchanges }
func (c chatCfg) GetStrictNegativeFitment() bool { return c.strict }

func systemContent(messages []openai.Message) string {
	var parts []string
	for _, m := range messages {
		if m.Role == openai.RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n---\n")
}

func newTurnService(cat Catalog, classifier Classifier, generator Generator, cfg chatCfg) (*Service, *session.MemoryStore) {
	store := session.NewMemoryStore()
	svc := New(cat, store, classifier, generator, "persona", cfg, logger.New("development"))
	return svc, store
}

var completeCarWheelExtraction = Extraction{
	Intent: IntentFitmentByCar,
	Slots: session.Slots{
		Brand: "Audi", Model: "A4", Version: "2.0 TDI",
		Wheel: "Makhai", Diameter: "19",
	},
}

func TestTurn_EmptyMessageIsRejected(t *testing.T) {
	svc, _ := newTurnService(&stubCatalog{}, &stubClassifier{}, &stubGenerator{}, chatCfg{maxExchanges: 10})

	_, err := svc.Turn(context.Background(), "u1", "   ")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected BadRequest for empty message, got %v", err)
	}
}

func TestTurn_ExactFitmentGroundsReply(t *testing.T) {
	cat := &stubCatalog{
		carModelID: 5,
		versionID:  50,
		wheel:      catalog.WheelSelection{WheelID: 42, Diameter: 19},
		fitment: catalog.Fitment{
			FitmentType:   "OK",
			PlugPlay:      true,
			Homologations: []catalog.Homologation{{Scheme: "ECE", Code: "E-99"}},
		},
	}
	classifier := &stubClassifier{queue: []Extraction{completeCarWheelExtraction}}
	generator := &stubGenerator{reply: "Yes, it fits."}
	svc, store := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10, strict: true})

	result, err := svc.Turn(context.Background(), "u1", "does the Makhai 19 fit my Audi A4 2.0 TDI?")
	if err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	if result.Reply != "Yes, it fits." {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if !result.FitmentUsed {
		t.Fatal("expected FitmentUsed to be set")
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "exact fitment found") {
		t.Fatalf("exact fitment block missing from prompt:\n%s", facts)
	}
	if !strings.Contains(facts, "ECE: E-99") {
		t.Fatalf("homologation missing from prompt:\n%s", facts)
	}

	saved, _ := store.Get(context.Background(), "u1")
	if len(saved.History) != 2 || saved.History[1].Content != "Yes, it fits." {
		t.Fatalf("exchange not recorded: %+v", saved.History)
	}
}

func TestTurn_ResolvedPairWithoutRecordIsBindingNegative(t *testing.T) {
	cat := &stubCatalog{
		carModelID: 5,
		versionID:  50,
		wheel:      catalog.WheelSelection{WheelID: 42},
		fitmentErr: apperr.NotFound("no fitment for this combination"),
	}
	classifier := &stubClassifier{queue: []Extraction{completeCarWheelExtraction}}
	generator := &stubGenerator{reply: "No."}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10, strict: true})

	result, err := svc.Turn(context.Background(), "u1", "does it fit?")
	if err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	if !result.FitmentUsed {
		t.Fatal("a definitive negative still counts as fitment data")
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "no fitment record exists") {
		t.Fatalf("negative block missing from prompt:\n%s", facts)
	}
	if !strings.Contains(facts, "not approved") {
		t.Fatalf("strict wording missing from prompt:\n%s", facts)
	}
	if cat.overviewCalls != 0 {
		t.Fatal("binding negative must not fall back to family data")
	}
}

func TestTurn_LenientNegativeSoftensWording(t *testing.T) {
	cat := &stubCatalog{
		carModelID: 5,
		versionID:  50,
		wheel:      catalog.WheelSelection{WheelID: 42},
		fitmentErr: apperr.NotFound("no fitment for this combination"),
	}
	classifier := &stubClassifier{queue: []Extraction{completeCarWheelExtraction}}
	generator := &stubGenerator{reply: "Not in the catalog."}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10, strict: false})

	if _, err := svc.Turn(context.Background(), "u1", "does it fit?"); err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "official dealer") {
		t.Fatalf("lenient wording missing from prompt:\n%s", facts)
	}
}

func TestTurn_UnresolvedVersionFallsBackToFamily(t *testing.T) {
	cat := &stubCatalog{
		carModelID: 5,
		versionErr: apperr.NotFound("car version not found"),
		overview: catalog.FamilyOverview{
			WheelOptions: []catalogrepo.WheelModelOption{{ModelName: "Istar", MaxDiameter: 20}},
		},
	}
	classifier := &stubClassifier{queue: []Extraction{completeCarWheelExtraction}}
	generator := &stubGenerator{reply: "Here are some options."}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10, strict: true})

	result, err := svc.Turn(context.Background(), "u1", "does it fit?")
	if err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	if result.FitmentUsed {
		t.Fatal("no exact check happened, FitmentUsed must stay false")
	}
	if !result.CarWheelOptionsUsed {
		t.Fatal("expected family options to ground the reply")
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "Istar") {
		t.Fatalf("family options missing from prompt:\n%s", facts)
	}
}

func TestTurn_IncompleteCarDataAsksForMissingFields(t *testing.T) {
	cat := &stubCatalog{}
	classifier := &stubClassifier{queue: []Extraction{{
		Intent: IntentFitmentByCar,
		Slots:  session.Slots{Brand: "Audi"},
	}}}
	generator := &stubGenerator{reply: "Which model?"}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10})

	if _, err := svc.Turn(context.Background(), "u1", "do you have wheels for my Audi?"); err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "Missing: model, year or version") {
		t.Fatalf("missing-data block wrong:\n%s", facts)
	}
	if cat.resolveFamilyCalls != 0 {
		t.Fatal("no resolution may run before the car data is complete")
	}
}

func TestTurn_SlotsAccumulateAcrossTurns(t *testing.T) {
	cat := &stubCatalog{
		carModelID: 5,
		versionID:  50,
		wheel:      catalog.WheelSelection{WheelID: 42},
		fitment:    catalog.Fitment{FitmentType: "OK"},
	}
	classifier := &stubClassifier{queue: []Extraction{
		{Intent: IntentFitmentByCar, Slots: session.Slots{Brand: "Audi", Model: "A4"}},
		{Intent: IntentFitmentByCar, Slots: session.Slots{Version: "2.0 TDI", Wheel: "Makhai", Diameter: "19"}},
	}}
	generator := &stubGenerator{reply: "ok"}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10, strict: true})

	if _, err := svc.Turn(context.Background(), "u1", "wheels for an Audi A4?"); err != nil {
		t.Fatalf("first turn error: %v", err)
	}
	result, err := svc.Turn(context.Background(), "u1", "the 2.0 TDI, with a Makhai 19")
	if err != nil {
		t.Fatalf("second turn error: %v", err)
	}
	if !result.FitmentUsed {
		t.Fatal("merged slots from both turns should enable the exact check")
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "Audi A4 2.0 TDI") {
		t.Fatalf("car label must combine slots from both turns:\n%s", facts)
	}
}

func TestTurn_ShortFollowUpAnalyzedWithPreviousQuestion(t *testing.T) {
	cat := &stubCatalog{carModelID: 5}
	classifier := &stubClassifier{queue: []Extraction{
		{Intent: IntentFitmentByCar, Slots: session.Slots{Brand: "Audi", Model: "A4"}},
		{Intent: IntentFitmentByCar, Slots: session.Slots{Year: 2021}},
	}}
	generator := &stubGenerator{reply: "ok"}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10})

	if _, err := svc.Turn(context.Background(), "u1", "wheels for an Audi A4?"); err != nil {
		t.Fatalf("first turn error: %v", err)
	}
	if _, err := svc.Turn(context.Background(), "u1", "2021"); err != nil {
		t.Fatalf("second turn error: %v", err)
	}

	if len(classifier.inputs) != 2 {
		t.Fatalf("expected 2 analysis calls, got %d", len(classifier.inputs))
	}
	if classifier.inputs[1] != "wheels for an Audi A4? 2021" {
		t.Fatalf("short follow-up not concatenated: %q", classifier.inputs[1])
	}
}

func TestTurn_WheelInfoIntent(t *testing.T) {
	cat := &stubCatalog{info: catalogrepo.WheelInfoRow{
		ModelName: "Istar",
		Diameters: "18,19,20",
		Finishes:  "glossy black,matt titanium",
	}}
	classifier := &stubClassifier{queue: []Extraction{{
		Intent: IntentWheelInfo,
		Slots:  session.Slots{Wheel: "Istar"},
	}}}
	generator := &stubGenerator{reply: "The Istar comes in..."}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10})

	result, err := svc.Turn(context.Background(), "u1", "what sizes does the Istar come in?")
	if err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	if !result.WheelInfoUsed {
		t.Fatal("expected WheelInfoUsed to be set")
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "18,19,20") {
		t.Fatalf("wheel info missing from prompt:\n%s", facts)
	}
}

func TestTurn_FitmentByWheelIntent(t *testing.T) {
	cat := &stubCatalog{families: []catalogrepo.CarFamilyRow{
		{ManufacturerName: "Audi", ModelName: "A4"},
		{ManufacturerName: "BMW", ModelName: "3 Series"},
	}}
	classifier := &stubClassifier{queue: []Extraction{{
		Intent: IntentFitmentByWheel,
		Slots:  session.Slots{Wheel: "Makhai", Diameter: "19"},
	}}}
	generator := &stubGenerator{reply: "It fits these cars."}
	svc, _ := newTurnService(cat, classifier, generator, chatCfg{maxExchanges: 10})

	result, err := svc.Turn(context.Background(), "u1", "which cars take the Makhai 19?")
	if err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	if !result.WheelFitmentUsed {
		t.Fatal("expected WheelFitmentUsed to be set")
	}
	facts := systemContent(generator.messages)
	if !strings.Contains(facts, "BMW 3 Series") {
		t.Fatalf("applications missing from prompt:\n%s", facts)
	}
}

func TestTurn_ClassifierFailureDegradesToOther(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("model timeout")}
	generator := &stubGenerator{reply: "How can I help?"}
	svc, _ := newTurnService(&stubCatalog{}, classifier, generator, chatCfg{maxExchanges: 10})

	result, err := svc.Turn(context.Background(), "u1", "hello there")
	if err != nil {
		t.Fatalf("Turn returned error: %v", err)
	}
	if result.Intent != IntentOther {
		t.Fatalf("expected intent other, got %q", result.Intent)
	}
	if result.Reply != "How can I help?" {
		t.Fatalf("reply must still be generated: %q", result.Reply)
	}
}

func TestTurn_GeneratorFailureAbortsTurn(t *testing.T) {
	classifier := &stubClassifier{queue: []Extraction{{Intent: IntentGeneralInfo}}}
	generator := &stubGenerator{err: errors.New("api down")}
	svc, store := newTurnService(&stubCatalog{}, classifier, generator, chatCfg{maxExchanges: 10})

	_, err := svc.Turn(context.Background(), "u1", "hello")
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected Internal error, got %v", err)
	}

	saved, _ := store.Get(context.Background(), "u1")
	if len(saved.History) != 0 {
		t.Fatal("failed turn must not be recorded in history")
	}
}

func TestTurn_HistoryPassedToGenerator(t *testing.T) {
	classifier := &stubClassifier{queue: []Extraction{{Intent: IntentGeneralInfo}}}
	generator := &stubGenerator{reply: "reply"}
	svc, _ := newTurnService(&stubCatalog{}, classifier, generator, chatCfg{maxExchanges: 10})

	if _, err := svc.Turn(context.Background(), "u1", "first question"); err != nil {
		t.Fatalf("first turn error: %v", err)
	}
	if _, err := svc.Turn(context.Background(), "u1", "second question"); err != nil {
		t.Fatalf("second turn error: %v", err)
	}

	var sawFirst bool
	for _, m := range generator.messages {
		if m.Role == openai.RoleUser && m.Content == "first question" {
			sawFirst = true
		}
	}
	if !sawFirst {
		t.Fatal("prior exchange missing from generator input")
	}
	last := generator.messages[len(generator.messages)-1]
	if last.Role != openai.RoleUser || last.Content != "second question" {
		t.Fatalf("current message must come last, got %+v", last)
	}
}
