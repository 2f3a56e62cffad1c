package poll

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/southcentralhub/supportdesk/internal/domain"
)

const (
	// DefaultInterval is the polling cadence of the reference staff panel.
	DefaultInterval = 2 * time.Second
	// DefaultRecentWindow bounds how old an open ticket may be to still
	// count as "just arrived" for the notification heuristic.
	DefaultRecentWindow = 5 * time.Second
)

// PollerConfig tunes the poller. Zero values fall back to the reference
// defaults.
type PollerConfig struct {
	Interval     time.Duration
	RecentWindow time.Duration
	// OnNewTicket fires when a poll suggests new tickets arrived. It is a
	// best-effort trigger: two tickets inside one window may fire once, a
	// delayed poll may miss the window entirely.
	OnNewTicket func(recent []domain.Ticket)
}

// Poller keeps a local snapshot of the ticket list, and of one watched
// ticket's message thread, by periodic full re-fetch. Each successful fetch
// replaces the previous snapshot wholesale; there is no delta protocol.
type Poller struct {
	client *Client
	logger *zap.Logger
	cfg    PollerConfig

	mu        sync.Mutex
	tickets   []domain.Ticket
	messages  []domain.Message
	watched   string
	prevCount int
	polled    bool

	kick chan struct{}
	now  func() time.Time
}

// NewPoller constructs a poller around the given client.
func NewPoller(client *Client, cfg PollerConfig, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = DefaultRecentWindow
	}
	return &Poller{
		client: client,
		logger: logger,
		cfg:    cfg,
		kick:   make(chan struct{}, 1),
		now:    time.Now,
	}
}

// Run polls until ctx is cancelled. The first fetch happens immediately;
// afterwards one per interval, plus immediate re-fetches after local
// mutations. Failed polls keep the previous snapshot and are retried on the
// next tick.
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		case <-p.kick:
			p.Refresh(ctx)
		}
	}
}

// Refresh performs one full fetch cycle: the ticket collection, then the
// watched ticket's messages.
func (p *Poller) Refresh(ctx context.Context) {
	tickets, err := p.client.Tickets(ctx)
	if err != nil {
		p.logger.Debug("ticket poll failed", zap.Error(err))
	} else {
		p.applyTickets(tickets)
	}

	watched := p.WatchedTicket()
	if watched == "" {
		return
	}
	messages, err := p.client.Messages(ctx, watched)
	if err != nil {
		p.logger.Debug("message poll failed", zap.Error(err))
		return
	}
	p.mu.Lock()
	if p.watched == watched {
		p.messages = messages
	}
	p.mu.Unlock()
}

// applyTickets replaces the snapshot and evaluates the new-ticket trigger:
// the total count grew since the previous poll AND at least one open ticket
// was created within the recent window. The first poll never fires.
func (p *Poller) applyTickets(tickets []domain.Ticket) {
	cutoff := p.now().UnixMilli() - p.cfg.RecentWindow.Milliseconds()

	p.mu.Lock()
	grown := p.polled && p.prevCount > 0 && len(tickets) > p.prevCount
	p.tickets = tickets
	p.prevCount = len(tickets)
	p.polled = true
	p.mu.Unlock()

	if !grown || p.cfg.OnNewTicket == nil {
		return
	}
	recent := lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return t.Status == domain.TicketStatusOpen && t.CreatedAt > cutoff
	})
	if len(recent) > 0 {
		p.cfg.OnNewTicket(recent)
	}
}

// Watch selects the ticket whose message thread should be polled and kicks
// an immediate re-fetch. Pass the empty string to stop watching.
func (p *Poller) Watch(ticketID string) {
	p.mu.Lock()
	if p.watched != ticketID {
		p.watched = ticketID
		p.messages = nil
	}
	p.mu.Unlock()
	p.requestRefresh()
}

// WatchedTicket returns the currently watched ticket id.
func (p *Poller) WatchedTicket() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watched
}

// Tickets returns the current ticket snapshot in server order.
func (p *Poller) Tickets() []domain.Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Ticket(nil), p.tickets...)
}

// Messages returns the watched ticket's thread snapshot in server order.
func (p *Poller) Messages() []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Message(nil), p.messages...)
}

// OpenCount reports how many tickets in the snapshot are not closed, the
// figure the panel shows next to the list.
func (p *Poller) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.CountBy(p.tickets, func(t domain.Ticket) bool {
		return t.Status != domain.TicketStatusClosed
	})
}

// Claim claims a ticket and, on success, re-fetches immediately instead of
// waiting for the next tick.
func (p *Poller) Claim(ctx context.Context, ticketID, claimedBy string) (*domain.Ticket, error) {
	ticket, err := p.client.ClaimTicket(ctx, ticketID, claimedBy)
	if err != nil {
		return nil, err
	}
	p.Refresh(ctx)
	return ticket, nil
}

// Close closes a ticket and re-fetches immediately.
func (p *Poller) Close(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := p.client.CloseTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	p.Refresh(ctx)
	return ticket, nil
}

// Send posts a staff message on the watched ticket and re-fetches the thread
// immediately.
func (p *Poller) Send(ctx context.Context, ticketID, content string) (*domain.Message, error) {
	msg, err := p.client.SendMessage(ctx, ticketID, content, domain.SenderStaff)
	if err != nil {
		return nil, err
	}
	p.Refresh(ctx)
	return msg, nil
}

func (p *Poller) requestRefresh() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}
