package service

import (
	"context"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/observability"
	"github.com/blendi-remade/reve-studio/internal/repository"
)

// LikeService is the like ledger: at most one like per (user, subject).
type LikeService struct {
	likeRepo repository.LikeRepository
}

func NewLikeService(likeRepo repository.LikeRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo}
}

func subjectResource(subject models.LikeSubject) string {
	if subject == models.LikeSubjectComment {
		return "Comment"
	}
	return "Post"
}

// Toggle flips the user's like on a subject. The returned count is read
// after the write and may already reflect other users' toggles.
func (s *LikeService) Toggle(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (*models.LikeResult, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.likeRepo.Count(ctx, subject, subjectID); err != nil {
		return nil, notFoundOr(err, subjectResource(subject), subjectID)
	}

	liked, err := s.likeRepo.Exists(ctx, subject, subjectID, userID)
	if err != nil {
		return nil, err
	}
	if liked {
		_, err = s.likeRepo.Remove(ctx, subject, subjectID, userID)
	} else {
		_, err = s.likeRepo.Add(ctx, subject, subjectID, userID)
	}
	if err != nil {
		return nil, err
	}
	liked = !liked

	count, err := s.likeRepo.Count(ctx, subject, subjectID)
	if err != nil {
		return nil, notFoundOr(err, subjectResource(subject), subjectID)
	}
	observability.RecordLikeToggle(string(subject), liked)
	return &models.LikeResult{Liked: liked, LikesCount: count}, nil
}

// HasLiked reports whether userID likes the subject. Anonymous users never do.
func (s *LikeService) HasLiked(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.likeRepo.Exists(ctx, subject, subjectID, userID)
}
