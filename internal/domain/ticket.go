package domain

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusClaimed TicketStatus = "claimed"
	TicketStatusClosed  TicketStatus = "closed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusClaimed, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// Timestamps are milliseconds since epoch to match the wire protocol the
// staff panel polls against. ClaimedBy is set when the ticket is claimed and
// never cleared afterwards, including on close.
type Ticket struct {
	ID           string       `json:"id"`
	TicketNumber string       `json:"ticketNumber"`
	Subject      string       `json:"subject"`
	Message      string       `json:"message"`
	Status       TicketStatus `json:"status"`
	ClaimedBy    *string      `json:"claimedBy,omitempty"`
	CreatedAt    int64        `json:"createdAt"`
}
