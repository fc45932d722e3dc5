package service

import (
	"context"
	"time"

	"github.com/blendi-remade/reve-studio/internal/commenttree"
	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/polling"
	"github.com/blendi-remade/reve-studio/internal/repository"
)

// CommentService serves the read side of the remix tree.
type CommentService struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	pollInterval time.Duration
}

// CommentListing is a post's comments as a forest plus its pre-order
// linearization. The polling hint tells clients whether to refetch.
type CommentListing struct {
	Comments  []*commenttree.Node `json:"comments"`
	Flattened []*commenttree.Node `json:"flattened"`
	Total     int                 `json:"total"`
	polling.Hint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	pollInterval time.Duration,
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		pollInterval: pollInterval,
	}
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return comment, nil
}

// ListTree returns the post's comments. Every call reads the store afresh.
func (s *CommentService) ListTree(ctx context.Context, postID uint) (*CommentListing, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post", postID)
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	forest := commenttree.BuildTree(comments)
	return &CommentListing{
		Comments:  forest,
		Flattened: commenttree.Flatten(forest),
		Total:     len(comments),
		Hint:      polling.HintFor(comments, s.pollInterval),
	}, nil
}
