// Package web provides HTTP handlers and REST API endpoints for campaign management.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/campaigner/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// UserIDHeader carries the id of the authenticated caller, set by the gateway
// in front of the API.
const UserIDHeader = "X-User-ID"

type APIHandlers struct {
	campaigns *services.Campaigns
	segments  *services.Segments
	lifecycle *services.Lifecycle
	health    *services.Health
	validator *validator.Validate
}

func NewAPIHandlers(
	campaigns *services.Campaigns,
	segments *services.Segments,
	lifecycle *services.Lifecycle,
	health *services.Health,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		campaigns: campaigns,
		segments:  segments,
		lifecycle: lifecycle,
		health:    health,
		validator: validator,
	}
}

// Register mounts every campaign and segment route on app.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	s := app.Group("/segments", h.RequireUser)
	s.Post("/", h.CreateSegment)
	s.Get("/", h.GetSegments)
	s.Get("/:id", h.GetSegment)

	c := app.Group("/campaigns", h.RequireUser)
	c.Post("/", h.CreateCampaign)
	c.Get("/", h.GetCampaigns)
	c.Get("/statistics", h.GetStatistics)
	c.Get("/:id", h.GetCampaign)
	c.Put("/:id", h.UpdateCampaign)
	c.Delete("/:id", h.DeleteCampaign)
	c.Patch("/:id/status", h.UpdateStatus)
	c.Post("/:id/flow", h.SaveFlow)
	c.Get("/:id/flow", h.GetFlow)
	c.Post("/:id/flow/validate", h.ValidateFlow)
	c.Post("/:id/deploy", h.DeployFlow)
	c.Post("/:id/trigger", h.TriggerCampaign)
	c.Get("/:id/execution-status", h.ExecutionStatus)
}

// RequireUser rejects requests without a positive numeric user id header.
func (h *APIHandlers) RequireUser(c fiber.Ctx) error {
	raw := c.Get(UserIDHeader)
	if raw == "" {
		return unauthorized(c, UserIDHeader+" header is required")
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return unauthorized(c, UserIDHeader+" header must be a positive integer")
	}

	c.Locals(UserIDHeader, userID)

	return c.Next()
}

func userID(c fiber.Ctx) int64 {
	id, _ := c.Locals(UserIDHeader).(int64)

	return id
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	report := h.health.Check(c.Context())

	status := "unhealthy"
	message := "Campaigner API is unhealthy"
	httpStatus := http.StatusServiceUnavailable

	if report.Healthy {
		status = "healthy"
		message = "Campaigner API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"persistence": report.Persistence,
			"cache":       report.Cache,
			"n8n":         report.N8n,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) CreateSegment(c fiber.Ctx) error {
	var req CreateSegmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	segment, err := h.segments.Create(c.Context(), userID(c), req.input())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(segment)
}

func (h *APIHandlers) GetSegments(c fiber.Ctx) error {
	segments, err := h.segments.List(c.Context(), userID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(segments)
}

func (h *APIHandlers) GetSegment(c fiber.Ctx) error {
	segment, err := h.segments.Get(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(segment)
}

func (h *APIHandlers) CreateCampaign(c fiber.Ctx) error {
	var req CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	campaign, err := h.campaigns.Create(c.Context(), userID(c), req.input())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(campaign)
}

func (h *APIHandlers) GetCampaigns(c fiber.Ctx) error {
	campaigns, err := h.campaigns.FindAll(c.Context(), userID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(campaigns)
}

func (h *APIHandlers) GetStatistics(c fiber.Ctx) error {
	stats, err := h.campaigns.Statistics(c.Context(), userID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

func (h *APIHandlers) GetCampaign(c fiber.Ctx) error {
	campaign, err := h.campaigns.FindOne(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(campaign)
}

func (h *APIHandlers) UpdateCampaign(c fiber.Ctx) error {
	var req UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	campaign, err := h.campaigns.Update(c.Context(), c.Params("id"), userID(c), req.input())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(campaign)
}

func (h *APIHandlers) DeleteCampaign(c fiber.Ctx) error {
	if err := h.campaigns.Delete(c.Context(), c.Params("id"), userID(c)); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MessageResponse{Message: "Campaign deleted successfully"})
}

func (h *APIHandlers) UpdateStatus(c fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	id, err := h.authorize(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.lifecycle.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) SaveFlow(c fiber.Ctx) error {
	var req SaveFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	campaign, err := h.campaigns.SaveFlow(c.Context(), c.Params("id"), userID(c), req.FlowData)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(campaign)
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	flow, err := h.campaigns.GetFlow(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(FlowResponse{FlowData: flow})
}

func (h *APIHandlers) ValidateFlow(c fiber.Ctx) error {
	id, err := h.authorize(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.lifecycle.ValidateFlow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) DeployFlow(c fiber.Ctx) error {
	id, err := h.authorize(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.lifecycle.DeployFlow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) TriggerCampaign(c fiber.Ctx) error {
	var req TriggerRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	id, err := h.authorize(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.lifecycle.TriggerCampaign(c.Context(), id, req.Payload)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) ExecutionStatus(c fiber.Ctx) error {
	id, err := h.authorize(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	report, err := h.lifecycle.ExecutionStatus(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

// authorize checks that the caller owns the campaign in the path.
func (h *APIHandlers) authorize(c fiber.Ctx) (string, error) {
	id := c.Params("id")

	if _, err := h.campaigns.FindOne(c.Context(), id, userID(c)); err != nil {
		return "", err
	}

	return id, nil
}
