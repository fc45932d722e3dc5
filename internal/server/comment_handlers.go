package server

import (
	"github.com/blendi-remade/reve-studio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Prompt   string `json:"prompt" validate:"required,max=2000"`
	ParentID *uint  `json:"parent_id" validate:"omitempty,gt=0"`
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Create a remix comment
// @Description Submits an image edit prompt. The comment is returned in its post-submit status (pending, generating, or failed); poll the listing for the result.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body createCommentRequest true "Prompt and optional parent comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req createCommentRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := s.generationService.Submit(c.UserContext(), service.SubmitCommentInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		ParentID: req.ParentID,
		Prompt:   req.Prompt,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List a post's comments as a remix tree
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.CommentListing
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	listing, err := s.commentService.ListTree(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listing)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment and its replies
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string,removed=int}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	removed, err := s.generationService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: id,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Comment deleted",
		"removed": removed,
	})
}
