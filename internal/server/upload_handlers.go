package server

import (
	"errors"

	"github.com/blendi-remade/reve-studio/internal/middleware"
	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type uploadURLRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,max=100"`
}

// CreateUploadURL handles POST /api/storage/upload-url
// @Summary Issue a signed upload URL for a post image
// @Description Returns a V4 signed PUT URL valid for 30 minutes. The client uploads the image directly to the bucket and then creates the post with public_url.
// @Tags storage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body uploadURLRequest true "File metadata"
// @Success 200 {object} storage.UploadTarget
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /storage/upload-url [post]
func (s *Server) CreateUploadURL(c *fiber.Ctx) error {
	if s.uploads == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable, storage.ErrNotConfigured)
	}

	var req uploadURLRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	target, err := s.uploads.IssueUploadURL(req.FileName, req.ContentType)
	switch {
	case errors.Is(err, storage.ErrInvalidContentType), errors.Is(err, storage.ErrMissingFileName):
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(capitalize(err.Error())))
	case errors.Is(err, storage.ErrNotConfigured):
		return models.RespondWithError(c, fiber.StatusServiceUnavailable, err)
	case err != nil:
		middleware.Logger.ErrorContext(c.UserContext(), "failed to sign upload url", "error", err)
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(target)
}
