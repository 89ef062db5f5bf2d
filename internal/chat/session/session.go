// Package session holds the per-user conversation state: accumulated slot
// values and the message history window.
package session

import (
	"strings"
	"unicode"
)

// Message roles, mirroring the chat-completions wire format.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one history entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Slots are the structured facts extracted from free text. Zero values mean
// "not provided this turn".
type Slots struct {
	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model,omitempty"`
	Year     int    `json:"year,omitempty"`
	Version  string `json:"version,omitempty"`
	Wheel    string `json:"wheel,omitempty"`
	Diameter string `json:"diameter,omitempty"`
}

// Context is the process-lifetime state for one user. Created on first
// message, updated every turn, never persisted beyond the configured store.
type Context struct {
	UserID  string    `json:"userId"`
	Slots   Slots     `json:"slots"`
	History []Message `json:"history,omitempty"`
}

// NewContext creates an empty context for a user.
func NewContext(userID string) Context {
	return Context{UserID: userID}
}

// Merge overwrites stored slots with newly extracted ones, but only where the
// new value is present. Fields absent from the extraction keep their prior
// value, which is what lets multi-turn dialogs accumulate facts.
func (c *Context) Merge(incoming Slots) {
	if incoming.Brand != "" {
		c.Slots.Brand = incoming.Brand
	}
	if incoming.Model != "" {
		c.Slots.Model = incoming.Model
	}
	if incoming.Year != 0 {
		c.Slots.Year = incoming.Year
	}
	if incoming.Version != "" {
		c.Slots.Version = incoming.Version
	}
	if incoming.Wheel != "" {
		c.Slots.Wheel = incoming.Wheel
	}
	if incoming.Diameter != "" {
		c.Slots.Diameter = incoming.Diameter
	}
}

// CarDataComplete reports whether the car side can identify a vehicle: brand
// and model plus at least one of year or version. Only the version label text
// participates in the exact trim lookup; a bare year keeps results at family
// level.
func (c *Context) CarDataComplete() bool {
	return c.Slots.Brand != "" && c.Slots.Model != "" &&
		(c.Slots.Year != 0 || c.Slots.Version != "")
}

// WheelDataComplete reports whether the wheel side is fully specified.
func (c *Context) WheelDataComplete() bool {
	return c.Slots.Wheel != "" && c.Slots.Diameter != ""
}

// AppendExchange records one user/assistant exchange and trims the history
// to at most maxExchanges exchanges, dropping the oldest first.
func (c *Context) AppendExchange(userMessage, assistantReply string, maxExchanges int) {
	c.History = append(c.History,
		Message{Role: RoleUser, Content: userMessage},
		Message{Role: RoleAssistant, Content: assistantReply},
	)
	if maxExchanges > 0 && len(c.History) > maxExchanges*2 {
		c.History = c.History[len(c.History)-maxExchanges*2:]
	}
}

// LastUserMessage returns the most recent user entry, or "" when none exists.
func (c *Context) LastUserMessage() string {
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Role == RoleUser {
			return c.History[i].Content
		}
	}
	return ""
}

// IsShortFollowUp reports whether a message is too low-information to analyze
// on its own: very short with no letters, like a bare year or "2x".
// Such messages are concatenated to the previous substantive question so the
// extractor updates slots instead of resetting the intent.
func IsShortFollowUp(message string) bool {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) == 0 || len(trimmed) >= 6 {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
