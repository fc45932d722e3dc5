package service

import (
	"context"

	"github.com/blendi-remade/reve-studio/internal/featureflags"
	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/repository"
)

// SourceResolver picks the base image a new comment edits: the post's root
// image for root comments, the parent's generated image for replies.
type SourceResolver struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	flags       *featureflags.Set
}

func NewSourceResolver(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	flags *featureflags.Set,
) *SourceResolver {
	return &SourceResolver{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		flags:       flags,
	}
}

// Resolve returns the source image URL for a comment userID is writing on
// postID.
//
// A parent that has not produced an image yet is rejected with CONFLICT,
// unless the allow_incomplete_parent flag is enabled for userID, in which
// case its empty URL is returned as is.
func (r *SourceResolver) Resolve(ctx context.Context, postID uint, parentID *uint, userID uint) (string, error) {
	if parentID == nil {
		url, err := r.postRepo.GetSourceImage(ctx, postID)
		if err != nil {
			return "", notFoundOr(err, "Post", postID)
		}
		return url, nil
	}

	parent, err := r.commentRepo.GetByID(ctx, *parentID)
	if err != nil {
		return "", notFoundOr(err, "Comment", *parentID)
	}
	if parent.PostID != postID {
		return "", models.NewValidationError("Parent comment belongs to a different post")
	}
	if parent.ImageURL != "" || r.flags.Enabled(featureflags.AllowIncompleteParent, userID) {
		return parent.ImageURL, nil
	}

	if parent.Status == models.StatusFailed {
		return "", models.NewConflictError("Parent comment failed to generate and cannot be remixed")
	}
	return "", models.NewConflictError("Parent comment is still generating")
}
