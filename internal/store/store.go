package store

import (
	"context"
	"errors"

	"github.com/southcentralhub/supportdesk/internal/domain"
)

// ErrNotFound signals that the referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// TicketPatch carries the mutable ticket fields for a partial update. Nil
// fields are left untouched; set fields win last-write-wins with no
// versioning.
type TicketPatch struct {
	Status    *domain.TicketStatus
	ClaimedBy *string
}

// TicketStore encapsulates ticket persistence for the process lifetime.
type TicketStore interface {
	CreateTicket(ctx context.Context, subject, message string) (*domain.Ticket, error)
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	// ListTickets returns all tickets ordered by createdAt descending,
	// stable under ties by insertion order.
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error)
	// MutateTicket applies fn to the ticket under the store lock. The write
	// happens only when fn returns nil, so a check inside fn is atomic with
	// the update.
	MutateTicket(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) (bool, error)
}

// MessageStore encapsulates message persistence.
type MessageStore interface {
	CreateMessage(ctx context.Context, ticketID, content string, sender domain.Sender) (*domain.Message, error)
	// ListMessages returns the ticket's messages ordered by timestamp
	// ascending (chat order), stable under ties by insertion order.
	ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error)
}
