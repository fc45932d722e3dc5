package server

import (
	"github.com/blendi-remade/reve-studio/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) toggleLike(c *fiber.Ctx, subject models.LikeSubject) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.likeService.Toggle(c.UserContext(), subject, id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (s *Server) hasLiked(c *fiber.Ctx, subject models.LikeSubject) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.likeService.HasLiked(c.UserContext(), subject, id, s.optionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// TogglePostLike handles POST /api/posts/:id/like
// @Summary Toggle the caller's like on a post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.LikeResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeSubjectPost)
}

// GetPostLiked handles GET /api/posts/:id/liked. Anonymous callers get false.
func (s *Server) GetPostLiked(c *fiber.Ctx) error {
	return s.hasLiked(c, models.LikeSubjectPost)
}

// ToggleCommentLike handles POST /api/comments/:id/like
// @Summary Toggle the caller's like on a comment
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.LikeResult
// @Router /comments/{id}/like [post]
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeSubjectComment)
}

// GetCommentLiked handles GET /api/comments/:id/liked
func (s *Server) GetCommentLiked(c *fiber.Ctx) error {
	return s.hasLiked(c, models.LikeSubjectComment)
}
