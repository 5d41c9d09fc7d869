package api

import (
	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/session"
)

// SessionView is everything a client needs to render a session.
type SessionView struct {
	State   session.State        `json:"state"`
	Splits  []models.PersonSplit `json:"splits"`
	Summary calculator.Summary   `json:"summary"`
	// Charges is only populated during the editing phase.
	Charges []session.ChargeView `json:"charges,omitempty"`
	Warning string               `json:"warning,omitempty"`
}

type CreateSessionRequest struct {
	Receipt *models.Receipt `json:"receipt"`
}

type CreateSessionResponse struct {
	SessionID string      `json:"sessionId"`
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
	View      SessionView `json:"view"`
}

type GetSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type GetSessionResponse struct {
	ExpiresAt int64       `json:"expiresAt"`
	View      SessionView `json:"view"`
}

type DispatchRequest struct {
	SessionID string         `json:"sessionId"`
	Action    session.Action `json:"action"`
}

type DispatchResponse struct {
	ExpiresAt int64       `json:"expiresAt"`
	View      SessionView `json:"view"`
}

type CalculateSplitsRequest struct {
	Receipt *models.Receipt `json:"receipt"`
	People  []models.Person `json:"people"`
}

type CalculateSplitsResponse struct {
	Splits  []models.PersonSplit `json:"splits"`
	Summary calculator.Summary   `json:"summary"`
	Warning string               `json:"warning,omitempty"`
}

type DistributeRequest struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type DistributeResponse struct {
	Amounts []float64 `json:"amounts"`
}

type RoundToMatchRequest struct {
	Amounts []float64 `json:"amounts"`
	Target  float64   `json:"target"`
}

type RoundToMatchResponse struct {
	Amounts []float64 `json:"amounts"`
}

// LogAttrs names the dispatched action in RPC logs.
func (r *DispatchRequest) LogAttrs() []any {
	return []any{"action", string(r.Action.Type)}
}
