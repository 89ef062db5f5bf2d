package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"fitment_chat_backend/internal/chat/prompt"
	"fitment_chat_backend/internal/chat/session"
	"fitment_chat_backend/platform/ai/openai"
)

// Known intents. Anything the analysis model invents is mapped to IntentOther.
const (
	IntentFitmentByCar        = "fitment_by_car"
	IntentRecommendationByCar = "recommendation_by_car"
	IntentOmologationByCar    = "omologation_by_car"
	IntentFitmentByWheel      = "fitment_by_wheel"
	IntentWheelInfo           = "wheel_info"
	IntentGeneralInfo         = "general_info"
	IntentOther               = "other"
)

var knownIntents = map[string]bool{
	IntentFitmentByCar:        true,
	IntentRecommendationByCar: true,
	IntentOmologationByCar:    true,
	IntentFitmentByWheel:      true,
	IntentWheelInfo:           true,
	IntentGeneralInfo:         true,
	IntentOther:               true,
}

// Extraction is the structured result of analyzing one user message.
// Extra carries free text the model could not place in a slot, such as a
// finish or color preference; it only informs the reply, never a lookup.
type Extraction struct {
	Intent string
	Slots  session.Slots
	Extra  string
}

// Classifier turns free text into an Extraction.
type Classifier interface {
	Classify(ctx context.Context, text string) (Extraction, error)
}

// OpenAIClassifier runs the analysis prompt against a chat-completions model
// and parses its JSON answer.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
	system string
	style  prompt.Style
}

// NewOpenAIClassifier creates a classifier from the prompt spec.
func NewOpenAIClassifier(client *openai.Client, model string, spec prompt.Spec) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: client,
		model:  model,
		system: spec.Analysis.System,
		style:  spec.Analysis.Style,
	}
}

// Classify analyzes one message. Callers treat any error as "no extraction"
// and fall back to IntentOther; a flaky analysis model must not take the
// whole turn down.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Extraction, error) {
	raw, err := c.client.Complete(ctx, []openai.Message{
		{Role: openai.RoleSystem, Content: c.system},
		{Role: openai.RoleUser, Content: text},
	}, openai.CompleteOptions{
		Model:       c.model,
		Temperature: c.style.Temperature,
		MaxTokens:   c.style.MaxTokens,
	})
	if err != nil {
		return Extraction{}, err
	}
	return ParseExtraction(raw), nil
}

// rawExtraction tolerates the model emitting numbers or nulls where the
// schema says string.
type rawExtraction struct {
	Intent   string          `json:"intent"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Year     json.RawMessage `json:"year"`
	Version  string          `json:"version"`
	Wheel    string          `json:"wheel"`
	Diameter json.RawMessage `json:"diameter"`
	Extra    string          `json:"extra"`
}

// ParseExtraction parses the analysis model output. Models wrap JSON in
// markdown fences or lead-in prose often enough that we cut to the outermost
// brace pair before decoding. Unparseable output degrades to IntentOther.
func ParseExtraction(raw string) Extraction {
	fallback := Extraction{Intent: IntentOther}

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return fallback
	}
	cleaned = cleaned[start : end+1]

	var parsed rawExtraction
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return fallback
	}

	intent := strings.TrimSpace(parsed.Intent)
	if !knownIntents[intent] {
		intent = IntentOther
	}

	return Extraction{
		Intent: intent,
		Extra:  strings.TrimSpace(parsed.Extra),
		Slots: session.Slots{
			Brand:    strings.TrimSpace(parsed.Brand),
			Model:    strings.TrimSpace(parsed.Model),
			Year:     normalizeYear(rawString(parsed.Year)),
			Version:  strings.TrimSpace(parsed.Version),
			Wheel:    strings.TrimSpace(parsed.Wheel),
			Diameter: strings.TrimSpace(rawString(parsed.Diameter)),
		},
	}
}

// rawString decodes a JSON value that may be a string, a number or null.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}

var yearPattern = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// normalizeYear pulls a plausible four digit model year out of free text.
// Anything outside 1950..2100 is discarded.
func normalizeYear(raw string) int {
	match := yearPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0
	}
	year, err := strconv.Atoi(match[1])
	if err != nil || year < 1950 || year > 2100 {
		return 0
	}
	return year
}
