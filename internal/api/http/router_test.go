package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/southcentralhub/supportdesk/internal/api/http"
	"github.com/southcentralhub/supportdesk/internal/api/http/handlers"
	"github.com/southcentralhub/supportdesk/internal/auth"
	"github.com/southcentralhub/supportdesk/internal/config"
	"github.com/southcentralhub/supportdesk/internal/domain"
	"github.com/southcentralhub/supportdesk/internal/events"
	"github.com/southcentralhub/supportdesk/internal/service"
	"github.com/southcentralhub/supportdesk/internal/store"
)

const testStaffPassword = "hub-staff-pass"

func newTestApp(t *testing.T, requireToken bool) *fiber.App {
	t.Helper()

	memStore := store.NewMemStore()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketStore:  memStore,
		MessageStore: memStore,
		Dispatcher:   events.NewInMemoryDispatcher(),
	})

	authCfg := config.AuthConfig{
		StaffPassword:     testStaffPassword,
		JWTSecret:         "test-secret",
		SessionTTLMinutes: 10,
		RequireStaffToken: requireToken,
	}
	tokens := auth.NewTokenManager(authCfg.JWTSecret, authCfg.SessionTTLMinutes)
	logger := zap.NewNop()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, nil, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler("support-desk", "test", memStore),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Auth:      handlers.NewAuthHandler(auth.NewPasswordVerifier(authCfg), tokens, logger),
		StaffAuth: auth.NewStaffMiddleware(tokens, requireToken),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createTicket(t *testing.T, app *fiber.App, subject, message string) domain.Ticket {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/tickets", map[string]string{
		"subject": subject,
		"message": message,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[domain.Ticket](t, resp)
}

func TestCreateAndFetchTicket(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	ticket := createTicket(t, app, "Cannot join server", "Help")
	req.Equal(domain.TicketStatusOpen, ticket.Status)
	req.Len(ticket.TicketNumber, 5)
	req.Nil(ticket.ClaimedBy)

	resp := doJSON(t, app, http.MethodGet, "/tickets/"+ticket.ID, nil, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	fetched := decode[domain.Ticket](t, resp)
	req.Equal(ticket, fetched)

	resp = doJSON(t, app, http.MethodGet, "/tickets/missing", nil, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestCreateTicketValidationAndServerAssignedFields(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	resp := doJSON(t, app, http.MethodPost, "/tickets", map[string]string{"subject": "S"}, nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/tickets", map[string]string{"subject": "", "message": "M"}, nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// client-supplied server fields are ignored, not honored
	resp = doJSON(t, app, http.MethodPost, "/tickets", map[string]any{
		"subject":      "S",
		"message":      "M",
		"id":           "forged-id",
		"ticketNumber": "00001",
		"status":       "closed",
		"createdAt":    1,
	}, nil)
	req.Equal(http.StatusCreated, resp.StatusCode)
	ticket := decode[domain.Ticket](t, resp)
	req.NotEqual("forged-id", ticket.ID)
	req.NotEqual("00001", ticket.TicketNumber)
	req.Equal(domain.TicketStatusOpen, ticket.Status)
	req.NotEqual(int64(1), ticket.CreatedAt)
}

func TestListTicketsNewestFirst(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	first := createTicket(t, app, "first", "m")
	second := createTicket(t, app, "second", "m")

	resp := doJSON(t, app, http.MethodGet, "/tickets", nil, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	tickets := decode[[]domain.Ticket](t, resp)
	req.Len(tickets, 2)
	req.True(tickets[0].CreatedAt >= tickets[1].CreatedAt)
	ids := []string{tickets[0].ID, tickets[1].ID}
	req.Contains(ids, first.ID)
	req.Contains(ids, second.ID)
}

func TestClaimAndCloseOverPatch(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	ticket := createTicket(t, app, "S", "M")

	resp := doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{
		"status":    "claimed",
		"claimedBy": "Staff1",
	}, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	claimed := decode[domain.Ticket](t, resp)
	req.Equal(domain.TicketStatusClaimed, claimed.Status)
	req.Equal("Staff1", *claimed.ClaimedBy)

	// second claim conflicts
	resp = doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{
		"status":    "claimed",
		"claimedBy": "Staff2",
	}, nil)
	req.Equal(http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{"status": "closed"}, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	closed := decode[domain.Ticket](t, resp)
	req.Equal(domain.TicketStatusClosed, closed.Status)
	req.Equal("Staff1", *closed.ClaimedBy)

	resp = doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{"status": "closed"}, nil)
	req.Equal(http.StatusConflict, resp.StatusCode)
}

func TestPatchRejectsUnsupportedFields(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	ticket := createTicket(t, app, "S", "M")

	// subject edits are not a thing
	resp := doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{"subject": "new"}, nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{"status": "archived"}, nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/tickets/missing", map[string]string{"status": "closed"}, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTicket(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	ticket := createTicket(t, app, "S", "M")
	resp := doJSON(t, app, http.MethodPost, "/tickets/"+ticket.ID+"/messages", map[string]string{
		"content": "hello",
		"sender":  "user",
	}, nil)
	req.Equal(http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/tickets/"+ticket.ID, nil, nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/tickets/"+ticket.ID, nil, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)

	// messages are not cascaded and the list endpoint still serves them
	resp = doJSON(t, app, http.MethodGet, "/tickets/"+ticket.ID+"/messages", nil, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	messages := decode[[]domain.Message](t, resp)
	req.Len(messages, 1)
}

func TestMessageEndpoints(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	resp := doJSON(t, app, http.MethodPost, "/tickets/missing/messages", map[string]string{
		"content": "hi",
		"sender":  "user",
	}, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)

	ticket := createTicket(t, app, "S", "M")

	resp = doJSON(t, app, http.MethodPost, "/tickets/"+ticket.ID+"/messages", map[string]string{
		"content": "hi",
		"sender":  "bot",
	}, nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/tickets/"+ticket.ID+"/messages", map[string]string{
		"content": "",
		"sender":  "user",
	}, nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	for i, sender := range []string{"user", "staff"} {
		resp = doJSON(t, app, http.MethodPost, "/tickets/"+ticket.ID+"/messages", map[string]string{
			"content": fmt.Sprintf("message %d", i),
			"sender":  sender,
		}, nil)
		req.Equal(http.StatusCreated, resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/tickets/"+ticket.ID+"/messages", nil, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	messages := decode[[]domain.Message](t, resp)
	req.Len(messages, 2)
	req.True(messages[0].Timestamp <= messages[1].Timestamp)
	req.Equal(domain.SenderUser, messages[0].Sender)
	req.Equal(domain.SenderStaff, messages[1].Sender)
}

func TestAdminLogin(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	resp := doJSON(t, app, http.MethodPost, "/auth/admin", map[string]string{"password": "wrong"}, nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	failure := decode[map[string]any](t, resp)
	req.Equal(false, failure["success"])

	resp = doJSON(t, app, http.MethodPost, "/auth/admin", map[string]string{"password": testStaffPassword}, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	success := decode[map[string]any](t, resp)
	req.Equal(true, success["success"])
	req.NotEmpty(success["token"])
}

func TestStaffTokenEnforcement(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, true)

	ticket := createTicket(t, app, "S", "M")

	resp := doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{
		"status":    "claimed",
		"claimedBy": "Staff1",
	}, nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/auth/admin", map[string]string{"password": testStaffPassword}, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	login := decode[map[string]any](t, resp)
	token, _ := login["token"].(string)
	req.NotEmpty(token)

	resp = doJSON(t, app, http.MethodPatch, "/tickets/"+ticket.ID, map[string]string{
		"status":    "claimed",
		"claimedBy": "Staff1",
	}, map[string]string{"Authorization": "Bearer " + token})
	req.Equal(http.StatusOK, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t, false)

	resp := doJSON(t, app, http.MethodGet, "/health/live", nil, nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	createTicket(t, app, "S", "M")
	resp = doJSON(t, app, http.MethodGet, "/health/ready", nil, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	ready := decode[map[string]any](t, resp)
	req.Equal("ready", ready["status"])
}
