package dto

import (
	"time"

	"github.com/spec-kit/support-tickets/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.Status `json:"status" validate:"required"`
}

// ChangePriorityRequest payload.
type ChangePriorityRequest struct {
	Priority      domain.Priority `json:"priority" validate:"required"`
	Justification string          `json:"justification"`
}

// CreateResponseRequest payload.
type CreateResponseRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// TicketSummary response.
type TicketSummary struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Status    domain.Status   `json:"status"`
	Priority  domain.Priority `json:"priority"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID                    int64              `json:"id"`
	Title                 string             `json:"title"`
	Description           string             `json:"description"`
	Status                domain.Status      `json:"status"`
	Priority              domain.Priority    `json:"priority"`
	PriorityJustification string             `json:"priority_justification"`
	UserID                string             `json:"user_id"`
	Responses             []ResponseResponse `json:"responses"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// ResponseResponse represents one admin response.
type ResponseResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AdminID   string    `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SideEffectsResponse reports the persist/publish pair outcome so callers
// can observe partial success deterministically.
type SideEffectsResponse struct {
	Persisted bool `json:"persisted"`
	Published bool `json:"published"`
}
