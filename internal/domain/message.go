package domain

// Sender indicates which side of the conversation authored a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderStaff Sender = "staff"
)

// Valid reports whether the sender is a known party.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderStaff
}

// Message is one chat entry within a ticket's conversation thread. Messages
// are immutable after creation and are owned by their ticket.
type Message struct {
	ID        string `json:"id"`
	TicketID  string `json:"ticketId"`
	Content   string `json:"content"`
	Sender    Sender `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}
