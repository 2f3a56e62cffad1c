package store

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/southcentralhub/supportdesk/internal/domain"
)

// MemStore keeps tickets and messages in process memory. All operations are
// guarded by a single RWMutex so no read observes a partially-written entity.
// Nothing survives a restart.
type MemStore struct {
	mu sync.RWMutex

	tickets     map[string]*domain.Ticket
	ticketOrder []string

	messages     map[string]*domain.Message
	messageOrder []string

	now func() time.Time
}

// NewMemStore constructs an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		tickets:  make(map[string]*domain.Ticket),
		messages: make(map[string]*domain.Message),
		now:      time.Now,
	}
}

// CreateTicket assigns identity, ticket number and creation time, forces
// status to open and makes the ticket visible to subsequent list reads.
func (s *MemStore) CreateTicket(ctx context.Context, subject, message string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		TicketNumber: newTicketNumber(),
		Subject:      subject,
		Message:      message,
		Status:       domain.TicketStatusOpen,
		CreatedAt:    s.now().UnixMilli(),
	}
	s.tickets[ticket.ID] = ticket
	s.ticketOrder = append(s.ticketOrder, ticket.ID)

	out := *ticket
	return &out, nil
}

// GetTicket returns the ticket or ErrNotFound.
func (s *MemStore) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *ticket
	return &out, nil
}

// ListTickets returns all tickets newest first. Ties on createdAt keep
// insertion order, so repeated polls of an unchanged store compare equal.
func (s *MemStore) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Ticket, 0, len(s.ticketOrder))
	for _, id := range s.ticketOrder {
		result = append(result, *s.tickets[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})
	return result, nil
}

// UpdateTicket merges the patch onto the ticket, last-write-wins per field.
func (s *MemStore) UpdateTicket(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	return s.MutateTicket(ctx, id, func(t *domain.Ticket) error {
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.ClaimedBy != nil {
			claimedBy := *patch.ClaimedBy
			t.ClaimedBy = &claimedBy
		}
		return nil
	})
}

// MutateTicket runs fn against a copy of the ticket under the write lock and
// commits the copy when fn returns nil. fn errors pass through unchanged.
func (s *MemStore) MutateTicket(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := *ticket
	if err := fn(&updated); err != nil {
		return nil, err
	}
	s.tickets[id] = &updated

	out := updated
	return &out, nil
}

// DeleteTicket removes the ticket and reports whether it existed. Messages
// belonging to the ticket are left in place (no cascade).
func (s *MemStore) DeleteTicket(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return false, nil
	}
	delete(s.tickets, id)
	for i, tid := range s.ticketOrder {
		if tid == id {
			s.ticketOrder = append(s.ticketOrder[:i], s.ticketOrder[i+1:]...)
			break
		}
	}
	return true, nil
}

// CreateMessage assigns identity and timestamp and stores the message. The
// ticket reference is not checked here; that is the service's concern.
func (s *MemStore) CreateMessage(ctx context.Context, ticketID, content string, sender domain.Sender) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &domain.Message{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		Content:   content,
		Sender:    sender,
		Timestamp: s.now().UnixMilli(),
	}
	s.messages[msg.ID] = msg
	s.messageOrder = append(s.messageOrder, msg.ID)

	out := *msg
	return &out, nil
}

// ListMessages returns the ticket's messages oldest first.
func (s *MemStore) ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Message, 0)
	for _, id := range s.messageOrder {
		if msg := s.messages[id]; msg.TicketID == ticketID {
			result = append(result, *msg)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}

// Counts reports the number of stored tickets and messages.
func (s *MemStore) Counts() (tickets, messages int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets), len(s.messages)
}

// newTicketNumber draws a uniform random 5-digit number. Collisions with
// existing tickets are possible and deliberately not checked.
func newTicketNumber() string {
	return strconv.Itoa(10000 + rand.Intn(90000))
}
