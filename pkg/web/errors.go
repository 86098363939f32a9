package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/campaigner/pkg/n8n"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/dukex/campaigner/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func problem(c fiber.Ctx, status int, problemType, detail string) error {
	p := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(status).JSON(p)
}

func badRequest(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusBadRequest, "validation_error", detail)
}

func unauthorized(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusUnauthorized, "unauthorized", detail)
}

func internalError(c fiber.Ctx, err error) error {
	p := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(p)
}

const webhookHint = "Either activate the workflow in n8n (toggle switch ON), " +
	`or open the workflow in the n8n editor and click "Listen for Test Event".`

// handleServiceError maps service, persistence and remote errors to problems.
func handleServiceError(c fiber.Ctx, err error) error {
	var transitionErr *services.InvalidTransitionError

	switch {
	case errors.As(err, &transitionErr):
		return badRequest(c, transitionDetail(transitionErr))

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsForbidden(err):
		return problem(c, fiber.StatusForbidden, "forbidden", err.Error())

	case persistence.IsCampaignNotFound(err):
		return problem(c, fiber.StatusNotFound, "campaign_not_found", "campaign not found")

	case persistence.IsSegmentNotFound(err):
		return problem(c, fiber.StatusNotFound, "segment_not_found", "segment not found")

	case services.IsRemoteAuthError(err):
		return problem(c, fiber.StatusBadGateway, "remote_auth_failed", err.Error()+". Check the n8n API key.")

	case services.IsRemoteError(err) && errors.Is(err, n8n.ErrWebhookNotAvailable):
		return problem(c, fiber.StatusBadGateway, "webhook_not_available", err.Error()+". "+webhookHint)

	case services.IsRemoteError(err):
		return problem(c, fiber.StatusBadGateway, "remote_error", remoteDetail(err))

	default:
		return internalError(c, err)
	}
}

func transitionDetail(err *services.InvalidTransitionError) string {
	allowed := services.AllowedTransitions(err.From)
	if len(allowed) == 0 {
		return fmt.Sprintf("%s: %s is a final status", err.Error(), err.From)
	}

	names := make([]string, 0, len(allowed))
	for _, status := range allowed {
		names = append(names, string(status))
	}

	return fmt.Sprintf("%s: allowed from %s: %s", err.Error(), err.From, strings.Join(names, ", "))
}

func remoteDetail(err error) string {
	if code := n8n.StatusCode(err); code != 0 {
		return fmt.Sprintf("%s (n8n status %d)", err.Error(), code)
	}

	return err.Error()
}
