package server

import (
	"crypto/subtle"
	"encoding/json"
	"strings"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/observability"
	"github.com/blendi-remade/reve-studio/internal/provider"
	"github.com/blendi-remade/reve-studio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FalWebhook handles POST /api/fal/webhook
// @Summary Provider completion callback
// @Description Applies a generation result to its comment. Duplicate and late deliveries are acknowledged without effect. Once the comment is found the delivery is always acknowledged, with outcome error when the result could not be stored.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param token query string false "Shared webhook secret"
// @Param comment_id query int false "Comment the job was submitted for"
// @Param payload body provider.WebhookPayload true "Callback payload"
// @Success 200 {object} object{success=bool,outcome=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /fal/webhook [post]
func (s *Server) FalWebhook(c *fiber.Ctx) error {
	if !s.webhookTokenValid(c.Query("token")) {
		observability.CallbackOutcomes.WithLabelValues(observability.CallbackRejected).Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid webhook token"))
	}

	var payload provider.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid callback payload"))
	}
	payload.RequestID = strings.TrimSpace(payload.RequestID)
	if payload.RequestID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("request_id is required"))
	}

	commentID := c.QueryInt(provider.CorrelationParam, 0)
	if commentID < 0 {
		commentID = 0
	}

	// Only a failed lookup answers non-2xx; a found comment is always acked.
	outcome, err := s.generationService.OnCallback(c.UserContext(), service.CallbackInput{
		CommentID: uint(commentID),
		Payload:   payload,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"outcome": outcome,
	})
}

// webhookTokenValid compares in constant time. An empty secret disables the check.
func (s *Server) webhookTokenValid(token string) bool {
	secret := s.config.FalWebhookSecret
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
