// Package service orchestrates one conversation turn: analyze the message,
// merge slots into the session, fetch grounding data from the catalog,
// generate the reply and update the history window.
package service

import (
	"context"
	"strings"

	catalogrepo "fitment_chat_backend/internal/catalog/repository"
	catalog "fitment_chat_backend/internal/catalog/service"
	"fitment_chat_backend/internal/chat/session"
	"fitment_chat_backend/platform/ai/openai"
	"fitment_chat_backend/platform/apperr"
	"fitment_chat_backend/platform/config"
	"fitment_chat_backend/platform/logger"
)

// Catalog is the slice of the catalog service a conversation turn needs.
type Catalog interface {
	ResolveCarFamily(ctx context.Context, brand, model string) (int64, error)
	ResolveCarVersion(ctx context.Context, carModelID int64, label string) (int64, error)
	ResolveWheel(ctx context.Context, wheelName, rawDiameter string) (catalog.WheelSelection, error)
	ExactFitment(ctx context.Context, carVersionID, wheelID int64) (catalog.Fitment, error)
	FamilyOverview(ctx context.Context, carModelID int64, includeHomologations bool) (catalog.FamilyOverview, error)
	WheelInfo(ctx context.Context, wheelName string) (catalogrepo.WheelInfoRow, error)
	CarsForWheel(ctx context.Context, wheelName, rawDiameter string) ([]catalogrepo.CarFamilyRow, error)
}

// TurnResult is the outcome of one completed turn. The usage flags tell the
// frontend which data classes grounded the reply.
type TurnResult struct {
	Reply                string
	Intent               string
	FitmentUsed          bool
	WheelInfoUsed        bool
	CarWheelOptionsUsed  bool
	WheelFitmentUsed     bool
	CarHomologationsUsed bool
}

// Service runs conversation turns.
type Service struct {
	catalog    Catalog
	store      session.Store
	classifier Classifier
	generator  Generator
	persona    string
	cfg        config.ChatConfig
	log        *logger.Logger
}

// New creates the chat service.
func New(cat Catalog, store session.Store, classifier Classifier, generator Generator, persona string, cfg config.ChatConfig, log *logger.Logger) *Service {
	return &Service{
		catalog:    cat,
		store:      store,
		classifier: classifier,
		generator:  generator,
		persona:    persona,
		cfg:        cfg,
		log:        log,
	}
}

// Turn processes one user message end to end. Only an empty message or a
// failed reply generation aborts the turn; every other failure degrades to a
// less grounded answer.
func (s *Service) Turn(ctx context.Context, userID, message string) (TurnResult, error) {
	if strings.TrimSpace(message) == "" {
		return TurnResult{}, apperr.BadRequest("message is required")
	}

	sessionCtx, err := s.store.Get(ctx, userID)
	if err != nil {
		s.log.Error("session_load_failed", "user_id", userID, "error", err.Error())
		sessionCtx = session.NewContext(userID)
	}

	// A bare "19" or "2021" is an answer to our previous question, not a new
	// request. Analyze it together with the question it answers.
	analysisInput := message
	if session.IsShortFollowUp(message) {
		if previous := sessionCtx.LastUserMessage(); previous != "" {
			analysisInput = previous + " " + message
		}
	}

	extraction, err := s.classifier.Classify(ctx, analysisInput)
	if err != nil {
		s.log.Error("analysis_failed", "user_id", userID, "error", err.Error())
		extraction = Extraction{Intent: IntentOther}
	}
	sessionCtx.Merge(extraction.Slots)

	result := TurnResult{Intent: extraction.Intent}
	facts := s.collectFacts(ctx, extraction.Intent, &sessionCtx, &result)
	if extraction.Extra != "" {
		facts = append(facts, "The user also mentioned: "+extraction.Extra+". Address it only if the verified data covers it.")
	}

	messages := make([]openai.Message, 0, len(facts)+len(sessionCtx.History)+2)
	messages = append(messages, openai.Message{Role: openai.RoleSystem, Content: s.persona})
	for _, fact := range facts {
		messages = append(messages, openai.Message{Role: openai.RoleSystem, Content: fact})
	}
	for _, entry := range sessionCtx.History {
		messages = append(messages, openai.Message{Role: entry.Role, Content: entry.Content})
	}
	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: message})

	reply, err := s.generator.Generate(ctx, messages)
	if err != nil {
		return TurnResult{}, apperr.Wrap(apperr.KindInternal, "reply generation failed", err).WithOp("chat.turn")
	}
	result.Reply = reply

	sessionCtx.AppendExchange(message, reply, s.cfg.GetHistoryMaxExchanges())
	if err := s.store.Put(ctx, userID, sessionCtx); err != nil {
		s.log.Error("session_save_failed", "user_id", userID, "error", err.Error())
	}

	s.log.ChatTurn(userID, result.Intent, result.FitmentUsed, len(sessionCtx.History))
	return result, nil
}

// collectFacts routes the intent to the catalog and returns the grounding
// blocks for the reply call. General questions get no blocks; the persona
// carries them.
func (s *Service) collectFacts(ctx context.Context, intent string, sessionCtx *session.Context, result *TurnResult) []string {
	slots := sessionCtx.Slots

	switch intent {
	case IntentWheelInfo:
		if slots.Wheel == "" {
			return []string{missingWheelDataBlock(slots)}
		}
		info, err := s.catalog.WheelInfo(ctx, slots.Wheel)
		if err != nil {
			return []string{wheelNotFoundBlock(slots)}
		}
		result.WheelInfoUsed = true
		return []string{wheelInfoBlock(info)}

	case IntentFitmentByWheel:
		if !sessionCtx.WheelDataComplete() {
			return []string{missingWheelDataBlock(slots)}
		}
		families, err := s.catalog.CarsForWheel(ctx, slots.Wheel, slots.Diameter)
		if err != nil {
			return []string{wheelNotFoundBlock(slots)}
		}
		result.WheelFitmentUsed = len(families) > 0
		return []string{wheelApplicationsBlock(slots, families)}

	case IntentFitmentByCar, IntentRecommendationByCar, IntentOmologationByCar:
		return s.carFacts(ctx, intent, sessionCtx, result)
	}

	return nil
}

// carFacts handles the car-side intents: exact check when the version text
// and the wheel are both known, family-level fallback otherwise.
func (s *Service) carFacts(ctx context.Context, intent string, sessionCtx *session.Context, result *TurnResult) []string {
	slots := sessionCtx.Slots
	if !sessionCtx.CarDataComplete() {
		return []string{missingCarDataBlock(slots)}
	}

	carModelID, err := s.catalog.ResolveCarFamily(ctx, slots.Brand, slots.Model)
	if err != nil {
		return []string{carNotFoundBlock(slots)}
	}

	// Exact path requires version label text; a bare year never narrows the
	// family down to one trim.
	if slots.Version != "" && sessionCtx.WheelDataComplete() {
		if facts, ok := s.exactFacts(ctx, carModelID, slots, result); ok {
			return facts
		}
	}

	includeHomologations := intent == IntentOmologationByCar
	overview, _ := s.catalog.FamilyOverview(ctx, carModelID, includeHomologations)

	facts := []string{familyOptionsBlock(slots, overview.WheelOptions)}
	result.CarWheelOptionsUsed = len(overview.WheelOptions) > 0
	if intent == IntentRecommendationByCar && result.CarWheelOptionsUsed {
		facts = append(facts, commercialBlock())
	}
	if includeHomologations {
		facts = append(facts, familyHomologationsBlock(slots, overview.Homologations))
		result.CarHomologationsUsed = len(overview.Homologations) > 0
	}

	if slots.Version == "" {
		facts = append(facts, versionNeededBlock())
	}
	if intent == IntentFitmentByCar && !sessionCtx.WheelDataComplete() {
		facts = append(facts, missingWheelDataBlock(slots))
	}
	return facts
}

// exactFacts attempts the binding (car version, wheel) check. It reports
// ok=false when either side fails to resolve, in which case the caller falls
// back to family-level data. A resolved pair with no applications row is a
// definitive negative, not a fallback.
func (s *Service) exactFacts(ctx context.Context, carModelID int64, slots session.Slots, result *TurnResult) ([]string, bool) {
	versionID, err := s.catalog.ResolveCarVersion(ctx, carModelID, slots.Version)
	if err != nil {
		return nil, false
	}

	wheel, err := s.catalog.ResolveWheel(ctx, slots.Wheel, slots.Diameter)
	if err != nil {
		return nil, false
	}

	fitment, err := s.catalog.ExactFitment(ctx, versionID, wheel.WheelID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			result.FitmentUsed = true
			return []string{negativeFitmentBlock(slots, s.cfg.GetStrictNegativeFitment())}, true
		}
		return nil, false
	}

	result.FitmentUsed = true
	return []string{exactFitmentBlock(slots, fitment)}, true
}
