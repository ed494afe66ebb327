package handlers

import (
	"github.com/gofiber/fiber/v2"

	"floryn/internal/services"
)

// DashboardHandler serves the admin dashboard figures.
type DashboardHandler struct {
	service *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes registers the dashboard routes behind authRequired and adminOnly.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	router.Get("/dashboard/stats", authRequired, adminOnly, h.HandleStats)
}

// HandleStats returns store totals and the latest orders.
func (h *DashboardHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
