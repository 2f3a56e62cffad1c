// Package poll implements the staff panel's synchronization protocol: a
// REST client plus a fixed-interval poller that keeps a local snapshot of
// the ticket list and one watched message thread eventually consistent with
// the server, without any push channel.
package poll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/southcentralhub/supportdesk/internal/domain"
)

// APIError carries the server's error status for a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Client is a thin HTTP client for the support desk API.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient constructs a client for the given base URL (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken installs a staff session token sent as a bearer header on
// subsequent requests. Only needed against servers that enforce it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Tickets fetches the full ticket collection, server-ordered newest first.
func (c *Client) Tickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Ticket fetches a single ticket.
func (c *Client) Ticket(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/"+id, nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket files a new ticket.
func (c *Client) CreateTicket(ctx context.Context, subject, message string) (*domain.Ticket, error) {
	body := map[string]string{"subject": subject, "message": message}
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets", body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ClaimTicket claims an open ticket for the given staff identity.
func (c *Client) ClaimTicket(ctx context.Context, id, claimedBy string) (*domain.Ticket, error) {
	body := map[string]string{"status": string(domain.TicketStatusClaimed), "claimedBy": claimedBy}
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPatch, "/tickets/"+id, body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CloseTicket closes a ticket.
func (c *Client) CloseTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	body := map[string]string{"status": string(domain.TicketStatusClosed)}
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPatch, "/tickets/"+id, body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tickets/"+id, nil, nil)
}

// Messages fetches a ticket's thread, server-ordered oldest first.
func (c *Client) Messages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	var messages []domain.Message
	if err := c.do(ctx, http.MethodGet, "/tickets/"+ticketID+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage appends a message to a ticket's thread.
func (c *Client) SendMessage(ctx context.Context, ticketID, content string, sender domain.Sender) (*domain.Message, error) {
	body := map[string]string{"content": content, "sender": string(sender)}
	var msg domain.Message
	if err := c.do(ctx, http.MethodPost, "/tickets/"+ticketID+"/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AuthenticateAdmin checks the staff password. On success any issued session
// token is installed on the client for subsequent requests.
func (c *Client) AuthenticateAdmin(ctx context.Context, password string) (bool, error) {
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/admin", map[string]string{"password": password}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}
	if resp.Token != "" {
		c.SetToken(resp.Token)
	}
	return resp.Success, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readErrorMessage(body io.Reader) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}
