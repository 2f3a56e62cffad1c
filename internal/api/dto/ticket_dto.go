package dto

import (
	"github.com/southcentralhub/supportdesk/internal/domain"
)

// CreateTicketRequest payload. Server-assigned fields (id, ticketNumber,
// status, createdAt) have no place here and are dropped during decoding even
// when a client sends them.
type CreateTicketRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// UpdateTicketRequest payload for PATCH. Status and claimedBy are the only
// updatable fields; the claim action sends both, the close action status
// only.
type UpdateTicketRequest struct {
	Status    *domain.TicketStatus `json:"status" validate:"omitempty,oneof=open claimed closed"`
	ClaimedBy *string              `json:"claimedBy"`
}

// CreateMessageRequest payload. The ticket id comes from the route, never
// the body.
type CreateMessageRequest struct {
	Content string        `json:"content" validate:"required"`
	Sender  domain.Sender `json:"sender" validate:"required,oneof=user staff"`
}
