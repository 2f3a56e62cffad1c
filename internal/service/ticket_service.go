package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/southcentralhub/supportdesk/internal/domain"
	"github.com/southcentralhub/supportdesk/internal/events"
	"github.com/southcentralhub/supportdesk/internal/store"
	apperrors "github.com/southcentralhub/supportdesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows and enforces the status state
// machine: open -> claimed -> closed, with closed terminal and close also
// reachable directly from open.
type TicketService struct {
	tickets    store.TicketStore
	messages   store.MessageStore
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketStore  store.TicketStore
	MessageStore store.MessageStore
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject string
	Message string
}

// TicketUpdateInput carries the fields a PATCH may touch. Only status and
// claimedBy are updatable; everything else on a ticket is immutable.
type TicketUpdateInput struct {
	Status    *domain.TicketStatus
	ClaimedBy *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketStore,
		messages:   deps.MessageStore,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket files a new ticket. Identity, ticket number, status and
// creation time are server-assigned; client-supplied values for them are
// never consulted.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)
	if subject == "" || message == "" {
		return nil, apperrors.NewValidationError("subject and message required", nil)
	}

	ticket, err := s.tickets.CreateTicket(ctx, subject, message)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Subject:      ticket.Subject,
		},
	})
	return ticket, nil
}

// ListTickets returns the full collection, createdAt descending.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.ListTickets(ctx)
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	return ticket, nil
}

// UpdateTicket applies a partial update. Status transitions route through
// Claim and Close; any other combination of fields is rejected.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.Status == nil {
		if input.ClaimedBy != nil {
			return nil, apperrors.NewValidationError("claimedBy can only be set while claiming", nil)
		}
		return nil, apperrors.NewValidationError("no updatable fields in payload", nil)
	}
	switch *input.Status {
	case domain.TicketStatusClaimed:
		if input.ClaimedBy == nil || strings.TrimSpace(*input.ClaimedBy) == "" {
			return nil, apperrors.NewValidationError("claimedBy required to claim a ticket", nil)
		}
		return s.Claim(ctx, id, strings.TrimSpace(*input.ClaimedBy))
	case domain.TicketStatusClosed:
		if input.ClaimedBy != nil {
			return nil, apperrors.NewValidationError("claimedBy can only be set while claiming", nil)
		}
		return s.Close(ctx, id)
	case domain.TicketStatusOpen:
		return nil, apperrors.NewConflict("tickets cannot be reopened", nil)
	default:
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
	}
}

// Claim transitions an open ticket to claimed and records the claimer. The
// check runs inside the store mutation, so of two concurrent claims exactly
// one wins and the other observes a conflict.
func (s *TicketService) Claim(ctx context.Context, id, claimedBy string) (*domain.Ticket, error) {
	ticket, err := s.tickets.MutateTicket(ctx, id, func(t *domain.Ticket) error {
		if t.Status != domain.TicketStatusOpen {
			return apperrors.NewConflict("ticket is not open", map[string]any{"status": t.Status})
		}
		t.Status = domain.TicketStatusClaimed
		t.ClaimedBy = &claimedBy
		return nil
	})
	if err != nil {
		return nil, mapTicketErr(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClaimed,
		TicketID: ticket.ID,
		Payload:  events.TicketClaimedPayload{ClaimedBy: claimedBy},
	})
	return ticket, nil
}

// Close transitions an open or claimed ticket to closed. Closed is terminal;
// closing again is a conflict. ClaimedBy is intentionally left in place.
func (s *TicketService) Close(ctx context.Context, id string) (*domain.Ticket, error) {
	var previous domain.TicketStatus
	ticket, err := s.tickets.MutateTicket(ctx, id, func(t *domain.Ticket) error {
		if t.Status == domain.TicketStatusClosed {
			return apperrors.NewConflict("ticket already closed", nil)
		}
		previous = t.Status
		t.Status = domain.TicketStatusClosed
		return nil
	})
	if err != nil {
		return nil, mapTicketErr(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Payload: events.TicketClosedPayload{
			PreviousStatus: previous,
			ClaimedBy:      ticket.ClaimedBy,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket. Its messages are not cascaded; they become
// orphans, matching the reference behavior.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	ticket, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		return mapTicketErr(err)
	}
	ok, err := s.tickets.DeleteTicket(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Payload:  events.TicketDeletedPayload{TicketNumber: ticket.TicketNumber},
	})
	return nil
}

// AddMessage appends a message to an existing ticket. Either party may post.
// Closed tickets still accept messages; the reference server never guarded
// this and the panel only hides the input box.
func (s *TicketService) AddMessage(ctx context.Context, ticketID, content string, sender domain.Sender) (*domain.Message, error) {
	if !sender.Valid() {
		return nil, apperrors.NewValidationError("sender must be user or staff", map[string]any{"sender": sender})
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if _, err := s.tickets.GetTicket(ctx, ticketID); err != nil {
		return nil, mapTicketErr(err)
	}

	msg, err := s.messages.CreateMessage(ctx, ticketID, content, sender)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticketID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			Sender:      msg.Sender,
			BodyPreview: stringPreview(msg.Content, 120),
		},
	})
	return msg, nil
}

// ListMessages returns the ticket's thread oldest first. Existence of the
// ticket is not checked: a missing or deleted ticket yields an empty (or
// orphaned) thread, exactly as the reference list endpoint does.
func (s *TicketService) ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	return s.messages.ListMessages(ctx, ticketID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapTicketErr(err error) error {
	if err == store.ErrNotFound {
		return apperrors.NewNotFound("ticket", nil)
	}
	return err
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
