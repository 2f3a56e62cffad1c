package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/southcentralhub/supportdesk/internal/store"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	store       *store.MemStore
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, memStore *store.MemStore) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, store: memStore}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness. The store is in-process memory, so
// readiness reduces to reporting its contents.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	tickets, messages := h.store.Counts()
	return c.JSON(fiber.Map{
		"status": "ready",
		"store": fiber.Map{
			"tickets":  tickets,
			"messages": messages,
		},
	})
}
