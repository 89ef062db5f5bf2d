// Package transport defines the chat HTTP DTOs.
package transport

import "fitment_chat_backend/internal/chat/service"

// ChatRequest is one user message. UserID keys the conversation context;
// anonymous widgets omit it and share the "default" session.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	UserID  string `json:"userId"`
}

// ChatResponse is the reply plus flags telling the frontend which data
// classes grounded it.
type ChatResponse struct {
	Reply                string `json:"reply"`
	Intent               string `json:"intent"`
	FitmentUsed          bool   `json:"fitmentUsed"`
	WheelInfoUsed        bool   `json:"wheelInfoUsed"`
	CarWheelOptionsUsed  bool   `json:"carWheelOptionsUsed"`
	WheelFitmentUsed     bool   `json:"wheelFitmentUsed"`
	CarHomologationsUsed bool   `json:"carHomologationsUsed"`
}

// NewChatResponse maps a turn result to its wire form.
func NewChatResponse(result service.TurnResult) ChatResponse {
	return ChatResponse{
		Reply:                result.Reply,
		Intent:               result.Intent,
		FitmentUsed:          result.FitmentUsed,
		WheelInfoUsed:        result.WheelInfoUsed,
		CarWheelOptionsUsed:  result.CarWheelOptionsUsed,
		WheelFitmentUsed:     result.WheelFitmentUsed,
		CarHomologationsUsed: result.CarHomologationsUsed,
	}
}
