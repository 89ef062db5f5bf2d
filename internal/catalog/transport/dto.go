// Package transport defines the catalog HTTP DTOs.
package transport

import "fitment_chat_backend/internal/catalog/service"

// FitmentRequest asks for the exact record of one combination.
type FitmentRequest struct {
	CarID   int64 `json:"carId" validate:"required,gt=0"`
	WheelID int64 `json:"wheelId" validate:"required,gt=0"`
}

// FitmentView is the display subset of a fitment record.
type FitmentView struct {
	Type                string `json:"type"`
	Advice              string `json:"advice"`
	Limitation          string `json:"limitation"`
	LimitationLocalized string `json:"limitationLocalized"`
	PlugAndPlay         bool   `json:"plugAndPlay"`
	Channel             string `json:"channel,omitempty"`
}

// FitmentResponse is the /fitment reply. OK is false when no row exists for
// the pair; that absence is an answer, not an error.
type FitmentResponse struct {
	OK            bool                   `json:"ok"`
	CarID         int64                  `json:"carId"`
	WheelID       int64                  `json:"wheelId"`
	Fitment       *FitmentView           `json:"fitment,omitempty"`
	Homologations []service.Homologation `json:"homologations,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// FitmentDebugResponse additionally echoes the raw catalog row.
type FitmentDebugResponse struct {
	FitmentResponse
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// NewFitmentView maps a resolved fitment to its display form.
func NewFitmentView(fitment service.Fitment) *FitmentView {
	return &FitmentView{
		Type:                fitment.FitmentType,
		Advice:              fitment.FitmentAdvice,
		Limitation:          fitment.Limitation,
		LimitationLocalized: fitment.LimitationLocalized,
		PlugAndPlay:         fitment.PlugPlay,
		Channel:             fitment.Channel,
	}
}
